package tools

// UpdateTaskInput represents the arguments of the update_task_or_create_new
// function. TaskId selects the task; the remaining fields form a partial
// patch where an empty value leaves the stored field untouched.
type UpdateTaskInput struct {
	TaskId        string `json:"task_id" validate:"required" jsonschema_description:"The unique ID of the task to update (e.g., \"TSK-001\"). If creating a new task, this must be a new, unused ID."`
	Title         string `json:"title,omitempty" jsonschema_description:"The short title of the task. Required for new tasks."`
	Description   string `json:"description,omitempty" jsonschema_description:"The detailed description of the task. Required for new tasks."`
	Status        string `json:"status,omitempty" validate:"omitempty,task_status" jsonschema_description:"The new status for the task (e.g., \"In Progress\", \"Completed\", \"Blocked\")."`
	AssignedAgent string `json:"assigned_agent,omitempty" validate:"omitempty,task_agent" jsonschema_description:"The agent the task should be assigned to (e.g., \"QwenDev\", \"ClaudeDesigner\")."`
}

const UpdateTaskDescription = "Creates a new task or updates an existing task's attributes (title, status, assigned agent, description). The task_id is mandatory. Use this for all write operations."
