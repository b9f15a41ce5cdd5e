package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"polycode/task-agent-app/logging"
)

type SessionOptions struct {
	SeedDemoTasks bool
	// Timeout bounds each model request; zero waits forever.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Session is the state of one open workspace: the shared task store, the
// main chat and any open task chats.
type Session struct {
	Id          string
	Store       *TaskStore
	Interpreter *Interpreter
	Agent       *Agent

	main   *ChatSurface
	logger *zap.Logger

	mu        sync.Mutex
	taskChats map[string]*ChatSurface
}

func NewSession(llm LLM, validate *validator.Validate, opts SessionOptions) (*Session, error) {
	var seed []Task
	if opts.SeedDemoTasks {
		seed = DemoTasks()
	}

	s := &Session{
		Id:        uuid.NewString(),
		Store:     NewTaskStore(seed...),
		taskChats: make(map[string]*ChatSurface),
	}
	s.logger = logging.OrNop(opts.Logger).With(zap.String("session_id", s.Id))

	interpreter, err := NewInterpreter(s.Store, validate, s.logger)
	if err != nil {
		return nil, fmt.Errorf("create interpreter: %w", err)
	}
	s.Interpreter = interpreter
	s.Agent = NewAgent(llm, interpreter.Tools(), opts.Timeout, s.logger)
	s.main = newChatSurface(string(MainSurface), MainSurface, s, ChatMessage{Sender: SenderAgent, Text: greetingText})

	s.logger.Info("Session started", zap.Int("tasks", s.Store.Len()))
	return s, nil
}

func (s *Session) Main() *ChatSurface {
	return s.main
}

// OpenTaskChat opens a chat bound to the task with id.
func (s *Session) OpenTaskChat(taskId string) (*ChatSurface, error) {
	task, ok := s.Store.Get(taskId)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskId)
	}

	chat := newChatSurface(uuid.NewString(), TaskSurface, s, ChatMessage{
		Sender: SenderAgent,
		Text:   fmt.Sprintf("What can I do for task %s?", task.Id),
	})
	chat.activeTaskId = task.Id

	s.mu.Lock()
	s.taskChats[chat.Id] = chat
	s.mu.Unlock()

	s.logger.Debug("Task chat opened", zap.String("surface", chat.Id), zap.String("task_id", task.Id))
	return chat, nil
}

func (s *Session) TaskChat(id string) (*ChatSurface, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.taskChats[id]
	return chat, ok
}

// CloseTaskChat closes and forgets a task chat. A reply still in flight for
// it is discarded when it arrives.
func (s *Session) CloseTaskChat(id string) bool {
	s.mu.Lock()
	chat, ok := s.taskChats[id]
	delete(s.taskChats, id)
	s.mu.Unlock()

	if ok {
		chat.close()
	}
	return ok
}

// Close closes every task chat.
func (s *Session) Close() {
	s.mu.Lock()
	chats := s.taskChats
	s.taskChats = make(map[string]*ChatSurface)
	s.mu.Unlock()

	for _, chat := range chats {
		chat.close()
	}
	s.logger.Info("Session closed")
}
