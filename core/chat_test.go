package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainChat_StartsWithGreeting(t *testing.T) {
	s := newTestSession(t, &fakeLLM{})
	assert.Equal(t, []ChatMessage{{Sender: SenderAgent, Text: greetingText}}, s.Main().Messages())
	_, ok := s.Main().ActiveTask()
	assert.False(t, ok)
}

func TestSend_TextReply(t *testing.T) {
	s := newTestSession(t, &fakeLLM{reply: replyText("Hello, manager.")})

	turn, err := s.Main().Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, []ChatMessage{
		{Sender: SenderUser, Text: "hi"},
		{Sender: SenderAgent, Text: "Hello, manager."},
	}, turn.Messages)
	assert.Len(t, s.Main().Messages(), 3)
	assert.Equal(t, DemoTasks(), s.Store.List())
}

func TestSend_PassesNextIdAndTools(t *testing.T) {
	llm := &fakeLLM{}
	s := newTestSession(t, llm)

	_, err := s.Main().Send(context.Background(), "assign a new task")
	require.NoError(t, err)

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].SystemContext, "(TSK-005)")
	assert.NotContains(t, reqs[0].SystemContext, "currently focused")
	require.Len(t, reqs[0].Tools, 2)
	assert.Equal(t, "assign a new task", reqs[0].Input.Text)
}

func TestSend_GetTaskDataCall(t *testing.T) {
	s := newTestSession(t, &fakeLLM{reply: replyCall(GetTaskDataFunction, map[string]any{"status_filter": "Blocked"})})

	turn, err := s.Main().Send(context.Background(), "what is blocked?")
	require.NoError(t, err)
	require.Len(t, turn.Messages, 2)

	reply := turn.Messages[1]
	assert.Equal(t, SenderAgent, reply.Sender)
	assert.Equal(t, tasksFoundText, reply.Text)
	assert.Equal(t, []string{"TSK-004"}, taskIds(reply.Tasks))
}

func TestSend_UpdateCall(t *testing.T) {
	s := newTestSession(t, &fakeLLM{reply: replyCall(UpdateTaskFunction, map[string]any{"task_id": "TSK-001", "status": "Completed"})})

	turn, err := s.Main().Send(context.Background(), "close TSK-001")
	require.NoError(t, err)
	assert.Equal(t, ChatMessage{Sender: SenderSystem, Text: "Task TSK-001 has been updated successfully."}, turn.Messages[1])
	assert.False(t, turn.Closed)

	task, _ := s.Store.Get("TSK-001")
	assert.Equal(t, StatusCompleted, task.Status)
}

func TestSend_TransportFailureBecomesSystemMessage(t *testing.T) {
	s := newTestSession(t, &fakeLLM{reply: func(context.Context, llmRequest) (LLMOutput, error) {
		return LLMOutput{}, errors.New("503 service unavailable")
	}})

	turn, err := s.Main().Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, ChatMessage{Sender: SenderSystem, Text: transportFailureText}, turn.Messages[1])
	assert.Equal(t, DemoTasks(), s.Store.List())

	msgs := s.Main().Messages()
	assert.Equal(t, transportFailureText, msgs[len(msgs)-1].Text)
}

func TestSend_BusySurfaceRejectsSecondTurn(t *testing.T) {
	release := make(chan struct{})
	llm := &fakeLLM{reply: func(context.Context, llmRequest) (LLMOutput, error) {
		<-release
		return LLMOutput{Text: "done"}, nil
	}}
	s := newTestSession(t, llm)

	done := make(chan error, 1)
	go func() {
		_, err := s.Main().Send(context.Background(), "first")
		done <- err
	}()
	require.Eventually(t, func() bool { return len(llm.Requests()) == 1 }, time.Second, time.Millisecond)

	_, err := s.Main().Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrSurfaceBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, llm.Requests(), 1)

	_, err = s.Main().Send(context.Background(), "third")
	assert.NoError(t, err)
}

func TestFocus(t *testing.T) {
	llm := &fakeLLM{}
	s := newTestSession(t, llm)
	main := s.Main()
	_, err := main.Send(context.Background(), "hello")
	require.NoError(t, err)

	task, err := main.Focus("tsk-003")
	require.NoError(t, err)
	assert.Equal(t, "TSK-003", task.Id)
	assert.Equal(t, []ChatMessage{{
		Sender: SenderAgent,
		Text:   `Now focused on task TSK-003: "Design mobile flow". How can I assist with this task?`,
	}}, main.Messages())

	_, err = main.Send(context.Background(), "mark it as complete")
	require.NoError(t, err)
	reqs := llm.Requests()
	assert.Contains(t, reqs[len(reqs)-1].SystemContext, "Task ID: TSK-003")

	main.ClearFocus()
	assert.Equal(t, []ChatMessage{{Sender: SenderAgent, Text: greetingText}}, main.Messages())
	_, ok := main.ActiveTask()
	assert.False(t, ok)
}

func TestFocus_UnknownTask(t *testing.T) {
	s := newTestSession(t, &fakeLLM{})
	_, err := s.Main().Focus("TSK-404")
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.Equal(t, []ChatMessage{{Sender: SenderAgent, Text: greetingText}}, s.Main().Messages())
}

func TestFocus_ActiveTaskReflectsStore(t *testing.T) {
	s := newTestSession(t, &fakeLLM{})
	_, err := s.Main().Focus("TSK-002")
	require.NoError(t, err)

	_, err = s.Store.SetArchived("TSK-002", true)
	require.NoError(t, err)
	_, err = s.Store.Update("TSK-002", TaskPatch{Title: strPtr("Renamed")})
	require.NoError(t, err)

	task, ok := s.Main().ActiveTask()
	require.True(t, ok)
	assert.True(t, task.Archived)
	assert.Equal(t, "Renamed", task.Title)
}

func TestTaskChat_UpdateClosesSurface(t *testing.T) {
	llm := &fakeLLM{reply: replyCall(UpdateTaskFunction, map[string]any{"task_id": "TSK-004", "status": "In Progress"})}
	s := newTestSession(t, llm)

	chat, err := s.OpenTaskChat("TSK-004")
	require.NoError(t, err)
	assert.Equal(t, TaskSurface, chat.Kind)
	assert.Equal(t, []ChatMessage{{Sender: SenderAgent, Text: "What can I do for task TSK-004?"}}, chat.Messages())

	turn, err := chat.Send(context.Background(), "unblock it")
	require.NoError(t, err)
	assert.True(t, turn.Closed)
	assert.True(t, chat.Closed())
	assert.Contains(t, llm.Requests()[0].SystemContext, "Task ID: TSK-004")

	task, _ := s.Store.Get("TSK-004")
	assert.Equal(t, StatusInProgress, task.Status)

	_, err = chat.Send(context.Background(), "again")
	assert.ErrorIs(t, err, ErrSurfaceClosed)
	assert.Len(t, llm.Requests(), 1)
}

func TestTaskChat_RejectsReads(t *testing.T) {
	s := newTestSession(t, &fakeLLM{reply: replyCall(GetTaskDataFunction, nil)})
	chat, err := s.OpenTaskChat("TSK-001")
	require.NoError(t, err)

	turn, err := chat.Send(context.Background(), "list everything")
	require.NoError(t, err)
	assert.Equal(t, ChatMessage{Sender: SenderAgent, Text: taskChatOnlyText}, turn.Messages[1])
	assert.False(t, chat.Closed())
}

func TestTaskChat_TextReplyKeepsSurfaceOpen(t *testing.T) {
	s := newTestSession(t, &fakeLLM{reply: replyText("Which status?")})
	chat, err := s.OpenTaskChat("TSK-001")
	require.NoError(t, err)

	_, err = chat.Send(context.Background(), "change it")
	require.NoError(t, err)
	assert.False(t, chat.Closed())
}

func TestTaskChat_ReplyAfterCloseIsDiscarded(t *testing.T) {
	var s *Session
	var chatId string
	llm := &fakeLLM{reply: func(context.Context, llmRequest) (LLMOutput, error) {
		s.CloseTaskChat(chatId)
		return LLMOutput{FunctionCall: &FunctionCall{Name: UpdateTaskFunction, Args: map[string]any{"task_id": "TSK-001", "title": "late"}}}, nil
	}}
	s = newTestSession(t, llm)
	chat, err := s.OpenTaskChat("TSK-001")
	require.NoError(t, err)
	chatId = chat.Id

	turn, err := chat.Send(context.Background(), "rename it")
	require.NoError(t, err)
	assert.True(t, turn.Discarded)
	assert.Len(t, turn.Messages, 1)
	assert.Equal(t, DemoTasks(), s.Store.List())

	_, ok := s.TaskChat(chatId)
	assert.False(t, ok)
}

func TestOpenTaskChat_UnknownTask(t *testing.T) {
	s := newTestSession(t, &fakeLLM{})
	_, err := s.OpenTaskChat("TSK-404")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestSession_CloseClosesTaskChats(t *testing.T) {
	s, err := NewSession(&fakeLLM{}, NewValidator(), SessionOptions{})
	require.NoError(t, err)
	assert.Zero(t, s.Store.Len())

	task, _, err := s.Store.Upsert("TSK-001", TaskPatch{})
	require.NoError(t, err)
	surface, err := s.OpenTaskChat(task.Id)
	require.NoError(t, err)

	s.Close()
	assert.True(t, surface.Closed())
	_, ok := s.TaskChat(surface.Id)
	assert.False(t, ok)
}
