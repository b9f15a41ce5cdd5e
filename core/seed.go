package core

// DemoTasks is the workspace a fresh dashboard session starts with.
func DemoTasks() []Task {
	return []Task{
		{
			Id:          "TSK-001",
			Title:       "Fix Cloudflare DNS 1014 error",
			Description: "Investigate and fix the intermittent DNS 1014 CNAME cross-user banned error affecting production.",
			Agent:       AssigneeQwenDev,
			Status:      StatusInProgress,
			Pinned:      true,
		},
		{
			Id:          "TSK-002",
			Title:       "Design mobile onboarding flow",
			Description: "Create high-fidelity mockups for the new user dashboard, focusing on data visualization and usability.",
			Agent:       AssigneeClaudeDesigner,
			Status:      StatusInProgress,
		},
		{
			Id:          "TSK-003",
			Title:       "Design mobile flow",
			Description: "Low-fidelity wireframes for the new mobile checkout experience.",
			Agent:       AssigneeClaudeDesigner,
			Status:      StatusBacklog,
		},
		{
			Id:          "TSK-004",
			Title:       "Database migration to Supabase",
			Description: "Plan and execute the migration of the user database from Heroku Postgres to Supabase.",
			Agent:       AssigneeQwenDev,
			Status:      StatusBlocked,
		},
	}
}
