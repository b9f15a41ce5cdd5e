package core

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type llmRequest struct {
	SystemContext string
	Input         LLMInput
	Tools         []ToolDescriptor
	HasDeadline   bool
}

// fakeLLM records every request and answers through reply.
type fakeLLM struct {
	mu       sync.Mutex
	requests []llmRequest
	reply    func(ctx context.Context, req llmRequest) (LLMOutput, error)
}

func (f *fakeLLM) Generate(ctx context.Context, systemContext string, input LLMInput, tools []ToolDescriptor) (LLMOutput, error) {
	_, hasDeadline := ctx.Deadline()
	req := llmRequest{SystemContext: systemContext, Input: input, Tools: tools, HasDeadline: hasDeadline}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	reply := f.reply
	f.mu.Unlock()

	if reply == nil {
		return LLMOutput{Text: "ok"}, nil
	}
	return reply(ctx, req)
}

func (f *fakeLLM) Requests() []llmRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llmRequest(nil), f.requests...)
}

func replyText(text string) func(context.Context, llmRequest) (LLMOutput, error) {
	return func(context.Context, llmRequest) (LLMOutput, error) {
		return LLMOutput{Text: text}, nil
	}
}

func replyCall(name string, args map[string]any) func(context.Context, llmRequest) (LLMOutput, error) {
	return func(context.Context, llmRequest) (LLMOutput, error) {
		return LLMOutput{FunctionCall: &FunctionCall{Name: name, Args: args}}, nil
	}
}

func newTestSession(t *testing.T, llm LLM) *Session {
	t.Helper()
	s, err := NewSession(llm, NewValidator(), SessionOptions{SeedDemoTasks: true})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func newTestInterpreter(t *testing.T, seed ...Task) (*Interpreter, *TaskStore) {
	t.Helper()
	store := NewTaskStore(seed...)
	i, err := NewInterpreter(store, NewValidator(), nil)
	require.NoError(t, err)
	return i, store
}

func strPtr(s string) *string { return &s }
