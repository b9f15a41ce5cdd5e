package gemini

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"polycode/task-agent-app/core"
)

func TestGenerateConfig_Tools(t *testing.T) {
	tools := []core.ToolDescriptor{{
		Name:        "get_task_data",
		Description: "reads tasks",
		Parameters:  json.RawMessage(`{"type":"object"}`),
	}}

	config := generateConfig("be brief", tools)
	require.NotNil(t, config.SystemInstruction)
	assert.Equal(t, "be brief", config.SystemInstruction.Parts[0].Text)
	require.Len(t, config.Tools, 1)
	require.Len(t, config.Tools[0].FunctionDeclarations, 1)

	decl := config.Tools[0].FunctionDeclarations[0]
	assert.Equal(t, "get_task_data", decl.Name)
	assert.Equal(t, "reads tasks", decl.Description)
	assert.Equal(t, json.RawMessage(`{"type":"object"}`), decl.ParametersJsonSchema)
}

func TestGenerateConfig_NoTools(t *testing.T) {
	config := generateConfig("", nil)
	assert.Nil(t, config.SystemInstruction)
	assert.Empty(t, config.Tools)
}

func TestOutputFromResponse_FunctionCall(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{
					{FunctionCall: &genai.FunctionCall{Name: "update_task_or_create_new", Args: map[string]any{"task_id": "TSK-001"}}},
					{FunctionCall: &genai.FunctionCall{Name: "get_task_data"}},
				},
			},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 4,
			TotalTokenCount:      14,
		},
	}

	out := outputFromResponse(resp)
	require.NotNil(t, out.FunctionCall)
	assert.Equal(t, "update_task_or_create_new", out.FunctionCall.Name)
	assert.Equal(t, "TSK-001", out.FunctionCall.Args["task_id"])
	assert.Equal(t, core.Stats{InputTokenCount: 10, OutputTokenCount: 4, TotalTokenCount: 14}, out.Stats)
	assert.Empty(t, out.Text)
}

func TestOutputFromResponse_Text(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{Text: "Hello, manager."}},
			},
		}},
	}

	out := outputFromResponse(resp)
	assert.Nil(t, out.FunctionCall)
	assert.Equal(t, "Hello, manager.", out.Text)
	assert.Zero(t, out.Stats)
}

func TestOutputFromResponse_NilArgs(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{FunctionCall: &genai.FunctionCall{Name: "get_task_data"}}}},
		}},
	}

	out := outputFromResponse(resp)
	require.NotNil(t, out.FunctionCall)
	assert.NotNil(t, out.FunctionCall.Args)
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(t.Context(), "", "gemini-2.5-flash")
	assert.Error(t, err)
}
