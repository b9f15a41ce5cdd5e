package tools

// GetTaskDataInput represents the arguments of the get_task_data function.
// Every filter is optional; an absent filter matches all tasks.
type GetTaskDataInput struct {
	// TaskId narrows the result to a single task.
	//
	// example: "TSK-001"
	TaskId string `json:"task_id,omitempty" jsonschema_description:"Optional. The specific task ID to retrieve (e.g., \"TSK-001\")."`

	// StatusFilter keeps tasks whose status matches, ignoring case.
	//
	// example: "In Progress"
	StatusFilter string `json:"status_filter,omitempty" jsonschema_description:"Optional. Filter tasks by status (e.g., \"In Progress\", \"Backlog\", \"Completed\")."`

	// AssignedAgent keeps tasks assigned to the named agent, ignoring case.
	//
	// example: "QwenDev"
	AssignedAgent string `json:"assigned_agent,omitempty" jsonschema_description:"Optional. Filter tasks by the assigned agent's name (e.g., \"QwenDev\")."`
}

const GetTaskDataDescription = "Retrieves task data from the database. Use this function for all read and view operations, including filtering by status or agent. Returns a list of matching task objects."
