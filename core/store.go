package core

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var taskIdPattern = regexp.MustCompile(`^TSK-(\d+)$`)

// TaskStore is the in-memory task list of one session. Tasks are keyed by
// canonical id and listed in insertion order. Every method applies its
// change under one lock, so a write is never observed half done.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	order []string
}

// NewTaskStore returns a store holding seed in order. Seed tasks with an
// empty or repeated id are skipped.
func NewTaskStore(seed ...Task) *TaskStore {
	s := &TaskStore{tasks: make(map[string]*Task)}
	for _, t := range seed {
		id := CanonicalTaskId(t.Id)
		if id == "" {
			continue
		}
		if _, exists := s.tasks[id]; exists {
			continue
		}
		t.Id = id
		s.insert(t)
	}
	return s
}

// CanonicalTaskId trims id and upper-cases it.
func CanonicalTaskId(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

func (s *TaskStore) insert(t Task) {
	s.tasks[t.Id] = &t
	s.order = append(s.order, t.Id)
}

func (s *TaskStore) List() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Task, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, *s.tasks[id])
	}
	return list
}

func (s *TaskStore) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[CanonicalTaskId(id)]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// NextID returns TSK-<max+1>, zero padded to three digits, where max is the
// largest numeric suffix among ids of the form TSK-<digits>.
func (s *TaskStore) NextID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID()
}

func (s *TaskStore) nextID() string {
	maxId := 0
	for id := range s.tasks {
		m := taskIdPattern.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxId {
			maxId = n
		}
	}
	return fmt.Sprintf("TSK-%03d", maxId+1)
}

// Upsert applies patch to the task with id, or creates the task when id is
// unknown. The returned flag reports whether a task was created.
func (s *TaskStore) Upsert(id string, patch TaskPatch) (Task, bool, error) {
	id = CanonicalTaskId(id)
	if id == "" {
		return Task{}, false, ErrMissingTaskID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tasks[id]; ok {
		patch.apply(t)
		return *t, false, nil
	}
	t := newTask(id, patch)
	s.insert(t)
	return t, true, nil
}

// Create inserts a new task under the next free id.
func (s *TaskStore) Create(patch TaskPatch) Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := newTask(s.nextID(), patch)
	s.insert(t)
	return t
}

// Update applies patch to an existing task.
func (s *TaskStore) Update(id string, patch TaskPatch) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[CanonicalTaskId(id)]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	patch.apply(t)
	return *t, nil
}

func newTask(id string, patch TaskPatch) Task {
	t := Task{
		Id:     id,
		Title:  "New Task",
		Agent:  AssigneeUnassigned,
		Status: StatusBacklog,
	}
	patch.apply(&t)
	return t
}

func (s *TaskStore) SetPinned(id string, pinned bool) (Task, error) {
	return s.mutate(id, func(t *Task) { t.Pinned = pinned })
}

func (s *TaskStore) SetArchived(id string, archived bool) (Task, error) {
	return s.mutate(id, func(t *Task) { t.Archived = archived })
}

func (s *TaskStore) mutate(id string, fn func(t *Task)) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[CanonicalTaskId(id)]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	fn(t)
	return *t, nil
}

// Move places the task with id at index to of the list order. Indexes
// outside the list are clamped.
func (s *TaskStore) Move(id string, to int) error {
	id = CanonicalTaskId(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	from := -1
	for i, existing := range s.order {
		if existing == id {
			from = i
			break
		}
	}
	if from < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	to = max(0, min(to, len(s.order)-1))
	order := append(s.order[:from:from], s.order[from+1:]...)
	order = append(order[:to], append([]string{id}, order[to:]...)...)
	s.order = order
	return nil
}

// TaskQuery selects tasks for the dashboard listing. Zero values match all.
type TaskQuery struct {
	// Search is matched case-insensitively as a substring of id, title and
	// description.
	Search   string
	Status   *Status
	Agent    *Assignee
	Pinned   *bool
	Archived *bool
}

func (q TaskQuery) matches(t Task) bool {
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(t.Id), needle) &&
			!strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	if q.Status != nil && t.Status != *q.Status {
		return false
	}
	if q.Agent != nil && t.Agent != *q.Agent {
		return false
	}
	if q.Pinned != nil && t.Pinned != *q.Pinned {
		return false
	}
	if q.Archived != nil && t.Archived != *q.Archived {
		return false
	}
	return true
}

// Query returns the matching tasks in list order.
func (s *TaskStore) Query(q TaskQuery) []Task {
	all := s.List()
	out := make([]Task, 0, len(all))
	for _, t := range all {
		if q.matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// PinnedFirst sorts tasks for display: pinned tasks first, each group by id.
func PinnedFirst(tasks []Task) []Task {
	out := append([]Task(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return out[i].Id < out[j].Id
	})
	return out
}
