package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"polycode/task-agent-app/logging"
)

var systemAgentContext = `You are the Task Manager Agent (TMA). Your role is to oversee a task management system, process requests from the Human Manager, and delegate work to specialized AI Sub-Agents (QwenDev, ClaudeDesigner).
Analyze the Human Manager's request and determine the single best action:
1. Retrieve Task Data: If the user asks about the status of a task or needs a list of tasks, use the get_task_data function.
2. Assign or Update a Task: If the user is creating a new task, changing a status, or re-assigning, use the update_task_or_create_new function.
3. Generate a Conversational Response: If the request is a general question, a greeting, or a request for a summary (which can be compiled from task data), respond directly and concisely.

GUIDELINES:
- Always use the provided functions when the request involves listing, retrieving, or modifying task data.
- When using a function, DO NOT invent data in your final response. Just execute the function call and wait for the result.
- If the user asks to "Assign a new task," use the next available task ID ({{next_task_id}}) and one of the available agents (QwenDev or ClaudeDesigner) if not specified.
- Valid statuses are Backlog, In Progress, Blocked and Completed.
- Maintain a professional, efficient, and technical tone. Always confirm successful actions.`

var activeTaskContext = `

IMPORTANT: The user is currently focused on a specific task. All subsequent commands or questions should be interpreted in the context of this task unless they explicitly mention another task ID or a general query. Resolve "it", "this" and "this task" to this task.
- Task ID: {{task_id}}
- Title: "{{title}}"
- Description: "{{description}}"
- Current Status: {{status}}
- Assigned Agent: {{agent}}
For example, if the user says "mark it as complete", you should call ` + "`update_task_or_create_new`" + ` with ` + "`task_id: \"{{task_id}}\"`" + ` and ` + "`status: \"Completed\"`" + `.`

// Agent sends one utterance at a time to the model service, offering the
// task function schemas. It performs no retries.
type Agent struct {
	Name    string
	LLM     LLM
	Tools   []ToolDescriptor
	Timeout time.Duration
	logger  *zap.Logger
}

func NewAgent(llm LLM, tools []ToolDescriptor, timeout time.Duration, logger *zap.Logger) *Agent {
	return &Agent{
		Name:    "Task Manager Agent",
		LLM:     llm,
		Tools:   tools,
		Timeout: timeout,
		logger:  logging.OrNop(logger),
	}
}

// SystemInstruction composes the instruction for one request. nextId is
// the id the store would allocate next; activeTask adds the focus block.
func (agent *Agent) SystemInstruction(nextId string, activeTask *Task) string {
	instruction := ReplaceLabels(systemAgentContext, map[string]string{"next_task_id": nextId})
	if activeTask == nil {
		return instruction
	}
	return instruction + ReplaceLabels(activeTaskContext, map[string]string{
		"task_id":     activeTask.Id,
		"title":       activeTask.Title,
		"description": activeTask.Description,
		"status":      string(activeTask.Status),
		"agent":       string(activeTask.Agent),
	})
}

// Run performs one model request. The returned output carries either a
// single function call or text.
func (agent *Agent) Run(ctx context.Context, sessionKey string, utterance string, nextId string, activeTask *Task) (LLMOutput, error) {
	if agent.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, agent.Timeout)
		defer cancel()
	}

	fields := []zap.Field{
		zap.String("session", sessionKey),
		zap.Int("utterance_len", len(utterance)),
	}
	if activeTask != nil {
		fields = append(fields, zap.String("active_task", activeTask.Id))
	}
	agent.logger.Debug("Sending request to model", fields...)

	out, err := agent.LLM.Generate(ctx, agent.SystemInstruction(nextId, activeTask), LLMInput{
		SessionKey: sessionKey,
		Text:       utterance,
	}, agent.Tools)
	if err != nil {
		agent.logger.Warn("Model request failed", append(fields, zap.Error(err))...)
		return LLMOutput{}, err
	}

	kind := "text"
	if out.FunctionCall != nil {
		kind = "call:" + out.FunctionCall.Name
	}
	agent.logger.Info("Model replied",
		zap.String("session", sessionKey),
		zap.String("kind", kind),
		zap.Int32("input_tokens", out.Stats.InputTokenCount),
		zap.Int32("output_tokens", out.Stats.OutputTokenCount),
		zap.Int32("total_tokens", out.Stats.TotalTokenCount))
	return out, nil
}
