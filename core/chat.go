package core

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	greetingText         = "I am the Task Manager Agent (TMA). How can I assist you with your tasks today?"
	transportFailureText = "Sorry, an error occurred while processing your request."
	taskChatOnlyText     = "This action is not supported in task chat. Please use the main chat window."
)

type SurfaceKind string

const (
	// MainSurface is the dashboard chat panel. Its focus can move between tasks.
	MainSurface SurfaceKind = "main"
	// TaskSurface is a chat bound to one task. It only accepts updates
	// and closes itself after the first applied one.
	TaskSurface SurfaceKind = "task"
)

// Turn is what one Send produced.
type Turn struct {
	// Messages holds the entries appended by this turn, starting with the
	// user message.
	Messages []ChatMessage `json:"messages"`
	Stats    Stats         `json:"stats"`
	// Discarded is set when the surface was closed while the model call
	// was in flight; nothing after the user message was appended.
	Discarded bool `json:"discarded,omitempty"`
	// Closed is set when this turn closed a task surface.
	Closed bool `json:"closed,omitempty"`
}

// ChatSurface is one chat window. A surface has at most one turn in flight;
// a second Send while busy fails with ErrSurfaceBusy.
type ChatSurface struct {
	Id   string
	Kind SurfaceKind

	session *Session
	log     *Conversation
	busy    *semaphore.Weighted

	mu           sync.Mutex
	activeTaskId string
	closed       bool
}

func newChatSurface(id string, kind SurfaceKind, session *Session, first ChatMessage) *ChatSurface {
	return &ChatSurface{
		Id:      id,
		Kind:    kind,
		session: session,
		log:     NewConversation(first),
		busy:    semaphore.NewWeighted(1),
	}
}

func (c *ChatSurface) Messages() []ChatMessage {
	return c.log.Messages()
}

func (c *ChatSurface) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *ChatSurface) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// ActiveTask returns the current state of the focused task, if any.
func (c *ChatSurface) ActiveTask() (Task, bool) {
	c.mu.Lock()
	id := c.activeTaskId
	c.mu.Unlock()
	if id == "" {
		return Task{}, false
	}
	return c.session.Store.Get(id)
}

// Focus scopes the conversation to the task with id and resets the log to
// a single framing message.
func (c *ChatSurface) Focus(id string) (Task, error) {
	if c.Kind != MainSurface {
		return Task{}, fmt.Errorf("focus is only available on the main chat")
	}
	task, ok := c.session.Store.Get(id)
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	c.mu.Lock()
	c.activeTaskId = task.Id
	c.mu.Unlock()

	c.log.ReplaceAll([]ChatMessage{{
		Sender: SenderAgent,
		Text:   fmt.Sprintf("Now focused on task %s: %q. How can I assist with this task?", task.Id, task.Title),
	}})
	return task, nil
}

// ClearFocus drops the active task and restores the greeting.
func (c *ChatSurface) ClearFocus() {
	c.mu.Lock()
	c.activeTaskId = ""
	c.mu.Unlock()

	c.log.ReplaceAll([]ChatMessage{{Sender: SenderAgent, Text: greetingText}})
}

// Send runs one conversational turn. Transport failures become a System
// message; they are not returned as errors.
func (c *ChatSurface) Send(ctx context.Context, utterance string) (Turn, error) {
	if c.Closed() {
		return Turn{}, ErrSurfaceClosed
	}
	if !c.busy.TryAcquire(1) {
		return Turn{}, ErrSurfaceBusy
	}
	defer c.busy.Release(1)

	logger := c.session.logger.With(zap.String("surface", c.Id), zap.String("kind", string(c.Kind)))

	userMsg := ChatMessage{Sender: SenderUser, Text: utterance}
	c.log.Append(userMsg)
	turn := Turn{Messages: []ChatMessage{userMsg}}

	var activeTask *Task
	if t, ok := c.ActiveTask(); ok {
		activeTask = &t
	}

	out, err := c.session.Agent.Run(ctx, c.Id, utterance, c.session.Store.NextID(), activeTask)
	if c.Closed() {
		logger.Info("Discarding reply for closed surface")
		turn.Discarded = true
		return turn, nil
	}
	if err != nil {
		msg := ChatMessage{Sender: SenderSystem, Text: transportFailureText}
		c.log.Append(msg)
		turn.Messages = append(turn.Messages, msg)
		return turn, nil
	}
	turn.Stats = out.Stats

	var reply ChatMessage
	switch {
	case out.FunctionCall == nil:
		reply = ChatMessage{Sender: SenderAgent, Text: out.Text}
	case c.Kind == TaskSurface && out.FunctionCall.Name != UpdateTaskFunction:
		reply = ChatMessage{Sender: SenderAgent, Text: taskChatOnlyText}
	default:
		result := c.session.Interpreter.Interpret(ctx, *out.FunctionCall)
		reply = result.Message
		if c.Kind == TaskSurface && result.Applied {
			c.close()
			turn.Closed = true
		}
	}

	c.log.Append(reply)
	turn.Messages = append(turn.Messages, reply)
	return turn, nil
}
