package core

import (
	"errors"
	"strings"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrMissingTaskID   = errors.New("task_id is required")
	ErrUnknownFunction = errors.New("unknown function")
	ErrSurfaceBusy     = errors.New("chat surface is busy")
	ErrSurfaceClosed   = errors.New("chat surface is closed")
)

// Assignee is one of the workers a task can be assigned to.
type Assignee string

const (
	AssigneeQwenDev        Assignee = "QwenDev"
	AssigneeClaudeDesigner Assignee = "ClaudeDesigner"
	AssigneeUnassigned     Assignee = "Unassigned"
)

var assignees = []Assignee{AssigneeQwenDev, AssigneeClaudeDesigner, AssigneeUnassigned}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusBacklog    Status = "Backlog"
	StatusInProgress Status = "In Progress"
	StatusBlocked    Status = "Blocked"
	StatusCompleted  Status = "Completed"
)

var statuses = []Status{StatusBacklog, StatusInProgress, StatusBlocked, StatusCompleted}

// ParseStatus maps free text onto a Status. Matching ignores case, spaces,
// underscores and hyphens, so "in_progress" and "InProgress" both parse.
func ParseStatus(s string) (Status, bool) {
	key := enumKey(s)
	for _, st := range statuses {
		if enumKey(string(st)) == key {
			return st, true
		}
	}
	return "", false
}

// ParseAssignee maps free text onto an Assignee the same way ParseStatus does.
func ParseAssignee(s string) (Assignee, bool) {
	key := enumKey(s)
	for _, a := range assignees {
		if enumKey(string(a)) == key {
			return a, true
		}
	}
	return "", false
}

func enumKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

// Task is a unit of work tracked by the dashboard.
type Task struct {
	Id          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Agent       Assignee `json:"agent"`
	Status      Status   `json:"status"`
	Pinned      bool     `json:"pinned"`
	Archived    bool     `json:"archived"`
}

// TaskPatch is a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Agent       *Assignee
	Status      *Status
}

func (p TaskPatch) apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Agent != nil {
		t.Agent = *p.Agent
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

// Sender identifies who produced a chat message.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderAgent  Sender = "agent"
	SenderSystem Sender = "system"
)

// ChatMessage is one entry of a conversation log. Tasks is a snapshot taken
// when the message was produced.
type ChatMessage struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
	Tasks  []Task `json:"tasks,omitempty"`
}

// FunctionCall is a structured action requested by the model service.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// CallResult is the outcome of interpreting one FunctionCall.
type CallResult struct {
	Message ChatMessage
	// Task is the written task for update calls that were applied.
	Task    *Task
	Created bool
	Applied bool
}
