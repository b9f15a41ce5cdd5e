package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"polycode/task-agent-app/lib"
	"polycode/task-agent-app/logging"
	"polycode/task-agent-app/tools"
)

const (
	GetTaskDataFunction = "get_task_data"
	UpdateTaskFunction  = "update_task_or_create_new"
)

const (
	tasksFoundText    = "Here are the tasks matching your criteria:"
	tasksNotFoundText = "I couldn't find any tasks matching your criteria."
	missingTaskIdText = "Cannot update or create a task: task_id is required."
)

// RegisterValidations adds the task_status and task_agent tags to v.
func RegisterValidations(v *validator.Validate) error {
	if err := lib.RegisterEnum(v, "task_status", func(s string) bool {
		_, ok := ParseStatus(s)
		return ok
	}); err != nil {
		return err
	}
	return lib.RegisterEnum(v, "task_agent", func(s string) bool {
		_, ok := ParseAssignee(s)
		return ok
	})
}

// NewValidator returns the shared validator with the task tags registered.
func NewValidator() *validator.Validate {
	v := lib.NewValidator()
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}

// Interpreter applies model function calls to a TaskStore.
type Interpreter struct {
	store    *TaskStore
	registry *ToolRegistry
	validate *validator.Validate
	logger   *zap.Logger
}

// NewInterpreter expects validate to come from NewValidator.
func NewInterpreter(store *TaskStore, validate *validator.Validate, logger *zap.Logger) (*Interpreter, error) {
	i := &Interpreter{
		store:    store,
		registry: NewToolRegistry(),
		validate: validate,
		logger:   logging.OrNop(logger),
	}

	getTool, err := NewInbuiltToolExecutor(GetTaskDataFunction, tools.GetTaskDataDescription, i.GetTaskData)
	if err != nil {
		return nil, err
	}
	updateTool, err := NewInbuiltToolExecutor(UpdateTaskFunction, tools.UpdateTaskDescription, i.UpdateTaskOrCreateNew)
	if err != nil {
		return nil, err
	}
	for _, tool := range []ToolExecutor{getTool, updateTool} {
		if err := i.registry.RegisterTool(tool); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// Tools returns the function schemas the interpreter understands.
func (i *Interpreter) Tools() []ToolDescriptor {
	return i.registry.ListToolDescriptors()
}

// Interpret executes call. It never fails: unknown functions, undecodable
// arguments and a missing task_id all come back as a System message with
// Applied unset.
func (i *Interpreter) Interpret(ctx context.Context, call FunctionCall) CallResult {
	executor := i.registry.GetTool(call.Name)
	if executor == nil {
		i.logger.Warn("Unsupported function call", zap.Error(fmt.Errorf("%w: %s", ErrUnknownFunction, call.Name)))
		return systemResult(fmt.Sprintf("Unsupported function call: %s.", call.Name))
	}

	result, err := executor.Execute(ctx, call.Args)
	switch {
	case errors.Is(err, ErrMissingTaskID):
		i.logger.Warn("Function call without task_id", zap.String("call", call.Name))
		return systemResult(missingTaskIdText)
	case err != nil:
		i.logger.Warn("Function call failed", zap.String("call", call.Name), zap.Error(err))
		return systemResult(fmt.Sprintf("Could not process %s: %v", call.Name, err))
	}
	return result
}

func systemResult(text string) CallResult {
	return CallResult{Message: ChatMessage{Sender: SenderSystem, Text: text}}
}

// GetTaskData filters the task list by the provided arguments. Absent
// filters match every task; a filter naming no known status or agent
// matches none.
func (i *Interpreter) GetTaskData(_ context.Context, in tools.GetTaskDataInput) (CallResult, error) {
	var match []func(Task) bool

	if id := strings.TrimSpace(in.TaskId); id != "" {
		match = append(match, func(t Task) bool { return strings.EqualFold(t.Id, id) })
	}
	if filter := strings.TrimSpace(in.StatusFilter); filter != "" {
		status, ok := ParseStatus(filter)
		match = append(match, func(t Task) bool { return ok && t.Status == status })
	}
	if filter := strings.TrimSpace(in.AssignedAgent); filter != "" {
		agent, ok := ParseAssignee(filter)
		match = append(match, func(t Task) bool { return ok && t.Agent == agent })
	}

	found := []Task{}
	for _, t := range i.store.List() {
		keep := true
		for _, m := range match {
			if !m(t) {
				keep = false
				break
			}
		}
		if keep {
			found = append(found, t)
		}
	}

	text := tasksFoundText
	if len(found) == 0 {
		text = tasksNotFoundText
	}
	i.logger.Info("Applied function call",
		zap.String("call", GetTaskDataFunction),
		zap.Int("matches", len(found)))

	return CallResult{
		Message: ChatMessage{Sender: SenderAgent, Text: text, Tasks: found},
		Applied: true,
	}, nil
}

// UpdateTaskOrCreateNew upserts the task named by in.TaskId. Status or
// agent values outside the closed enums are dropped from the patch and
// reported in the confirmation.
func (i *Interpreter) UpdateTaskOrCreateNew(_ context.Context, in tools.UpdateTaskInput) (CallResult, error) {
	in.TaskId = strings.TrimSpace(in.TaskId)
	in.Status = strings.TrimSpace(in.Status)
	in.AssignedAgent = strings.TrimSpace(in.AssignedAgent)

	var ignored []string
	if err := i.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return CallResult{}, err
		}
		for _, fe := range verrs {
			switch fe.Field() {
			case "task_id":
				return CallResult{}, ErrMissingTaskID
			case "status":
				ignored = append(ignored, fmt.Sprintf("status %q", in.Status))
				in.Status = ""
			case "assigned_agent":
				ignored = append(ignored, fmt.Sprintf("assigned agent %q", in.AssignedAgent))
				in.AssignedAgent = ""
			default:
				return CallResult{}, fmt.Errorf("invalid %s", fe.Field())
			}
		}
	}

	task, created, err := i.store.Upsert(in.TaskId, patchFromInput(in))
	if err != nil {
		return CallResult{}, err
	}

	var text string
	if created {
		text = fmt.Sprintf("New task %s has been created successfully.", task.Id)
	} else {
		text = fmt.Sprintf("Task %s has been updated successfully.", task.Id)
	}
	if len(ignored) > 0 {
		text += " Ignored invalid " + strings.Join(ignored, " and ") + "."
	}

	i.logger.Info("Applied function call",
		zap.String("call", UpdateTaskFunction),
		zap.String("task_id", task.Id),
		zap.Bool("created", created),
		zap.Strings("ignored", ignored))

	return CallResult{
		Message: ChatMessage{Sender: SenderSystem, Text: text},
		Task:    &task,
		Created: created,
		Applied: true,
	}, nil
}

func patchFromInput(in tools.UpdateTaskInput) TaskPatch {
	var patch TaskPatch
	if in.Title != "" {
		patch.Title = &in.Title
	}
	if in.Description != "" {
		patch.Description = &in.Description
	}
	if status, ok := ParseStatus(in.Status); ok {
		patch.Status = &status
	}
	if agent, ok := ParseAssignee(in.AssignedAgent); ok {
		patch.Agent = &agent
	}
	return patch
}
