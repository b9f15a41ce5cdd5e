package core

import "fmt"

// ToolRegistry keeps tool executors in registration order so the schemas
// sent to the model are stable between calls.
type ToolRegistry struct {
	tools map[string]ToolExecutor
	order []string
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]ToolExecutor)}
}

func (tr *ToolRegistry) RegisterTool(executor ToolExecutor) error {
	name := executor.GetName()
	if _, exists := tr.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	tr.tools[name] = executor
	tr.order = append(tr.order, name)
	return nil
}

func (tr *ToolRegistry) GetTool(name string) ToolExecutor {
	return tr.tools[name]
}

func (tr *ToolRegistry) ListToolDescriptors() []ToolDescriptor {
	list := make([]ToolDescriptor, 0, len(tr.order))
	for _, name := range tr.order {
		list = append(list, tr.tools[name].GetToolDescriptor())
	}
	return list
}
