package core

import (
	"context"
	"encoding/json"
	"fmt"
)

type ToolExecutor interface {
	GetName() string
	GetDescription() string
	GetToolDescriptor() ToolDescriptor
	Execute(ctx context.Context, args map[string]any) (CallResult, error)
}

// NewInbuiltToolExecutor wraps handler as a tool whose parameter schema is
// reflected from In.
func NewInbuiltToolExecutor[In any](name string, description string, handler func(context.Context, In) (CallResult, error)) (ToolExecutor, error) {
	b, err := StructToJSONSchema(new(In))
	if err != nil {
		return nil, fmt.Errorf("schema for tool %s: %w", name, err)
	}
	return &InbuiltToolExecutor[In]{
		toolDescriptor: ToolDescriptor{
			Name:        name,
			Description: description,
			Parameters:  json.RawMessage(b),
		},
		handler: handler,
	}, nil
}

type InbuiltToolExecutor[In any] struct {
	toolDescriptor ToolDescriptor
	handler        func(context.Context, In) (CallResult, error)
}

func (i *InbuiltToolExecutor[In]) GetName() string {
	return i.toolDescriptor.Name
}

func (i *InbuiltToolExecutor[In]) GetDescription() string {
	return i.toolDescriptor.Description
}

func (i *InbuiltToolExecutor[In]) GetToolDescriptor() ToolDescriptor {
	return i.toolDescriptor
}

// Execute decodes the loosely typed argument bag into In and calls the
// handler. Arguments whose JSON type does not match In fail decoding.
func (i *InbuiltToolExecutor[In]) Execute(ctx context.Context, args map[string]any) (CallResult, error) {
	var input In
	if len(args) > 0 {
		b, err := json.Marshal(args)
		if err != nil {
			return CallResult{}, fmt.Errorf("failed to marshal arguments: %w", err)
		}
		if err := json.Unmarshal(b, &input); err != nil {
			return CallResult{}, fmt.Errorf("failed to unmarshal arguments: %w", err)
		}
	}
	return i.handler(ctx, input)
}
