package dashboard_service

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"polycode/task-agent-app/core"
	"polycode/task-agent-app/lib"
	"polycode/task-agent-app/logging"
)

// SessionFactory starts a fresh workspace session.
type SessionFactory func() (*core.Session, error)

// Service exposes the current session to the dashboard view over HTTP.
type Service struct {
	newSession SessionFactory
	validate   *validator.Validate
	logger     *zap.Logger

	mu      sync.RWMutex
	session *core.Session
}

func NewService(newSession SessionFactory, validate *validator.Validate, logger *zap.Logger) (*Service, error) {
	session, err := newSession()
	if err != nil {
		return nil, err
	}
	return &Service{
		newSession: newSession,
		validate:   validate,
		logger:     logging.OrNop(logger),
		session:    session,
	}, nil
}

func (s *Service) current() *core.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Close ends the current session.
func (s *Service) Close() {
	s.current().Close()
}

func (s *Service) Register(r gin.IRouter) {
	api := r.Group("/api")

	api.GET("/tasks", s.ListTasks)
	api.POST("/tasks", s.CreateTask)
	api.PATCH("/tasks/:id", s.UpdateTask)
	api.POST("/tasks/:id/pin", s.setFlag(pinFlag, true))
	api.DELETE("/tasks/:id/pin", s.setFlag(pinFlag, false))
	api.POST("/tasks/:id/archive", s.setFlag(archiveFlag, true))
	api.DELETE("/tasks/:id/archive", s.setFlag(archiveFlag, false))
	api.POST("/tasks/:id/move", s.MoveTask)
	api.POST("/tasks/:id/chats", s.OpenTaskChat)

	api.GET("/chat", s.GetChat)
	api.POST("/chat/messages", s.SendChatMessage)
	api.PUT("/chat/focus", s.Focus)
	api.DELETE("/chat/focus", s.ClearFocus)

	api.GET("/task-chats/:chat", s.GetTaskChat)
	api.POST("/task-chats/:chat/messages", s.SendTaskChatMessage)
	api.DELETE("/task-chats/:chat", s.CloseTaskChat)

	api.POST("/session/reset", s.ResetSession)
}

type TaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	Agent       *string `json:"agent" validate:"omitempty,task_agent"`
	Status      *string `json:"status" validate:"omitempty,task_status"`
}

func (r TaskRequest) patch() core.TaskPatch {
	patch := core.TaskPatch{Title: r.Title, Description: r.Description}
	if r.Agent != nil {
		if agent, ok := core.ParseAssignee(*r.Agent); ok {
			patch.Agent = &agent
		}
	}
	if r.Status != nil {
		if status, ok := core.ParseStatus(*r.Status); ok {
			patch.Status = &status
		}
	}
	return patch
}

type MoveRequest struct {
	Index *int `json:"index" validate:"required,min=0"`
}

type MessageRequest struct {
	Text string `json:"text" validate:"required"`
}

type FocusRequest struct {
	TaskId string `json:"task_id" validate:"required"`
}

type ChatState struct {
	Messages   []core.ChatMessage `json:"messages"`
	ActiveTask *core.Task         `json:"active_task"`
}

type TaskChatState struct {
	Id       string             `json:"id"`
	TaskId   string             `json:"task_id"`
	Closed   bool               `json:"closed"`
	Messages []core.ChatMessage `json:"messages"`
}

func (s *Service) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if err := s.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": lib.FieldNames(err)})
		return false
	}
	return true
}

func (s *Service) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrTaskNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrSurfaceBusy):
		status = http.StatusConflict
	case errors.Is(err, core.ErrSurfaceClosed):
		status = http.StatusGone
	case errors.Is(err, core.ErrMissingTaskID):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// ListTasks supports view=all|pinned|archived, q, status, agent, pinned
// and archived. Unless archived tasks are asked for they are left out.
func (s *Service) ListTasks(c *gin.Context) {
	var q core.TaskQuery
	q.Search = c.Query("q")

	if v := c.Query("status"); v != "" {
		status, ok := core.ParseStatus(v)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + strconv.Quote(v)})
			return
		}
		q.Status = &status
	}
	if v := c.Query("agent"); v != "" {
		agent, ok := core.ParseAssignee(v)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown agent " + strconv.Quote(v)})
			return
		}
		q.Agent = &agent
	}
	for name, dst := range map[string]**bool{"pinned": &q.Pinned, "archived": &q.Archived} {
		if v := c.Query(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
				return
			}
			*dst = &b
		}
	}

	yes, no := true, false
	switch c.DefaultQuery("view", "all") {
	case "all":
	case "pinned":
		q.Pinned = &yes
	case "archived":
		q.Archived = &yes
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown view"})
		return
	}
	if q.Archived == nil {
		q.Archived = &no
	}

	tasks := s.current().Store.Query(q)
	if c.Query("order") != "store" {
		tasks = core.PinnedFirst(tasks)
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (s *Service) CreateTask(c *gin.Context) {
	var req TaskRequest
	if !s.bind(c, &req) {
		return
	}
	task := s.current().Store.Create(req.patch())
	s.logger.Info("Task created", zap.String("task_id", task.Id))
	c.JSON(http.StatusCreated, task)
}

func (s *Service) UpdateTask(c *gin.Context) {
	var req TaskRequest
	if !s.bind(c, &req) {
		return
	}
	task, err := s.current().Store.Update(c.Param("id"), req.patch())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type taskFlag int

const (
	pinFlag taskFlag = iota
	archiveFlag
)

func (s *Service) setFlag(flag taskFlag, value bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := s.current().Store
		var (
			task core.Task
			err  error
		)
		switch flag {
		case pinFlag:
			task, err = store.SetPinned(c.Param("id"), value)
		case archiveFlag:
			task, err = store.SetArchived(c.Param("id"), value)
		}
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, task)
	}
}

func (s *Service) MoveTask(c *gin.Context) {
	var req MoveRequest
	if !s.bind(c, &req) {
		return
	}
	store := s.current().Store
	if err := store.Move(c.Param("id"), *req.Index); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": store.List()})
}

func chatState(chat *core.ChatSurface) ChatState {
	state := ChatState{Messages: chat.Messages()}
	if task, ok := chat.ActiveTask(); ok {
		state.ActiveTask = &task
	}
	return state
}

func (s *Service) GetChat(c *gin.Context) {
	c.JSON(http.StatusOK, chatState(s.current().Main()))
}

func (s *Service) SendChatMessage(c *gin.Context) {
	var req MessageRequest
	if !s.bind(c, &req) {
		return
	}
	turn, err := s.current().Main().Send(c.Request.Context(), req.Text)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, turn)
}

func (s *Service) Focus(c *gin.Context) {
	var req FocusRequest
	if !s.bind(c, &req) {
		return
	}
	chat := s.current().Main()
	if _, err := chat.Focus(req.TaskId); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chatState(chat))
}

func (s *Service) ClearFocus(c *gin.Context) {
	chat := s.current().Main()
	chat.ClearFocus()
	c.JSON(http.StatusOK, chatState(chat))
}

func taskChatState(chat *core.ChatSurface) TaskChatState {
	state := TaskChatState{Id: chat.Id, Closed: chat.Closed(), Messages: chat.Messages()}
	if task, ok := chat.ActiveTask(); ok {
		state.TaskId = task.Id
	}
	return state
}

func (s *Service) OpenTaskChat(c *gin.Context) {
	chat, err := s.current().OpenTaskChat(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, taskChatState(chat))
}

func (s *Service) taskChat(c *gin.Context) (*core.ChatSurface, bool) {
	chat, ok := s.current().TaskChat(c.Param("chat"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "task chat not found"})
	}
	return chat, ok
}

func (s *Service) GetTaskChat(c *gin.Context) {
	if chat, ok := s.taskChat(c); ok {
		c.JSON(http.StatusOK, taskChatState(chat))
	}
}

func (s *Service) SendTaskChatMessage(c *gin.Context) {
	chat, ok := s.taskChat(c)
	if !ok {
		return
	}
	var req MessageRequest
	if !s.bind(c, &req) {
		return
	}
	turn, err := chat.Send(c.Request.Context(), req.Text)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, turn)
}

func (s *Service) CloseTaskChat(c *gin.Context) {
	if !s.current().CloseTaskChat(c.Param("chat")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "task chat not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetSession replaces the workspace with a fresh session.
func (s *Service) ResetSession(c *gin.Context) {
	session, err := s.newSession()
	if err != nil {
		s.fail(c, err)
		return
	}

	s.mu.Lock()
	old := s.session
	s.session = session
	s.mu.Unlock()

	old.Close()
	c.JSON(http.StatusOK, gin.H{"session_id": session.Id, "tasks": session.Store.List()})
}
