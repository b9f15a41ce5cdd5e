package core

import "context"

type LLMInput struct {
	SessionKey string
	Text       string
}

// LLMOutput carries either free text or exactly one function call.
type LLMOutput struct {
	Text         string
	FunctionCall *FunctionCall
	Stats        Stats
}

type Stats struct {
	InputTokenCount  int32 `json:"input_token_count,omitempty"`
	OutputTokenCount int32 `json:"output_token_count,omitempty"`
	TotalTokenCount  int32 `json:"total_token_count,omitempty"`
}

type LLM interface {
	Generate(ctx context.Context, systemContext string, input LLMInput, tools []ToolDescriptor) (LLMOutput, error)
}
