package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"polycode/task-agent-app/core"
)

type Gemini struct {
	ModelName string
	client    *genai.Client
}

func NewGemini(ctx context.Context, apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{
		ModelName: modelName,
		client:    client,
	}, nil
}

// Generate sends one user turn with the given system instruction and
// function declarations. When the model answers with function calls only
// the first one is returned.
func (g *Gemini) Generate(ctx context.Context, systemContext string, input core.LLMInput, tools []core.ToolDescriptor) (core.LLMOutput, error) {
	contents := []*genai.Content{genai.NewContentFromText(input.Text, genai.RoleUser)}

	result, err := g.client.Models.GenerateContent(ctx,
		g.ModelName,
		contents,
		generateConfig(systemContext, tools),
	)
	if err != nil {
		return core.LLMOutput{}, fmt.Errorf("gemini generate: %w", err)
	}
	return outputFromResponse(result), nil
}

func generateConfig(systemContext string, tools []core.ToolDescriptor) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}
	if systemContext != "" {
		config.SystemInstruction = genai.NewContentFromText(systemContext, genai.RoleUser)
	}
	if len(tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(tools))
		for _, tool := range tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:                 tool.Name,
				Description:          tool.Description,
				ParametersJsonSchema: tool.Parameters,
			})
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return config
}

func outputFromResponse(result *genai.GenerateContentResponse) core.LLMOutput {
	var out core.LLMOutput
	if result == nil {
		return out
	}

	if usage := result.UsageMetadata; usage != nil {
		out.Stats = core.Stats{
			InputTokenCount:  usage.PromptTokenCount,
			OutputTokenCount: usage.CandidatesTokenCount,
			TotalTokenCount:  usage.TotalTokenCount,
		}
	}

	if calls := result.FunctionCalls(); len(calls) > 0 && calls[0] != nil {
		args := calls[0].Args
		if args == nil {
			args = map[string]any{}
		}
		out.FunctionCall = &core.FunctionCall{Name: calls[0].Name, Args: args}
		return out
	}

	out.Text = result.Text()
	return out
}
