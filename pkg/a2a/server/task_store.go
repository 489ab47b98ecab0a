package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
)

// TaskStore provides access to A2A task records.
type TaskStore interface {
	CreateTask(ctx context.Context, message *a2av1.Message) (*a2av1.Task, error)
	AppendHistory(ctx context.Context, taskID string, message *a2av1.Message) error
	UpdateStatus(ctx context.Context, taskID string, status *a2av1.TaskStatus) error
	AddArtifacts(ctx context.Context, taskID string, artifacts []*a2av1.Artifact) error
	GetTask(ctx context.Context, taskID string, historyLength int32, includeArtifacts bool) (*a2av1.Task, error)
	CancelTask(ctx context.Context, taskID string) (*a2av1.Task, error)
}

// MemoryTaskStore keeps tasks in memory. Used in tests and single-process
// setups; production agents use the SQLite store.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*taskRecord
}

type taskRecord struct {
	task      *a2av1.Task
	updatedAt time.Time
}

// NewMemoryTaskStore creates a new in-memory task store.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{
		tasks: make(map[string]*taskRecord),
	}
}

// CreateTask stores a new task seeded from the incoming message.
func (s *MemoryTaskStore) CreateTask(ctx context.Context, message *a2av1.Message) (*a2av1.Task, error) {
	if message == nil {
		return nil, fmt.Errorf("message is nil")
	}

	taskID := uuid.NewString()
	contextID := message.ContextID
	if contextID == "" {
		contextID = uuid.NewString()
	}

	seeded := cloneMessage(message)
	seeded.TaskID = taskID
	seeded.ContextID = contextID

	task := &a2av1.Task{
		ID:        taskID,
		ContextID: contextID,
		Status:    newStatus(a2av1.TaskStateSubmitted, seeded),
		History:   []*a2av1.Message{seeded},
	}

	s.mu.Lock()
	s.tasks[taskID] = &taskRecord{task: task, updatedAt: time.Now().UTC()}
	s.mu.Unlock()

	return cloneTask(task), nil
}

// AppendHistory adds a message to the task history.
func (s *MemoryTaskStore) AppendHistory(ctx context.Context, taskID string, message *a2av1.Message) error {
	if message == nil {
		return fmt.Errorf("message is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.tasks[taskID]
	if !ok {
		return fmt.Errorf("task %q not found", taskID)
	}
	record.task.History = append(record.task.History, cloneMessage(message))
	record.updatedAt = time.Now().UTC()
	return nil
}

// UpdateStatus replaces the task status.
func (s *MemoryTaskStore) UpdateStatus(ctx context.Context, taskID string, status *a2av1.TaskStatus) error {
	if status == nil {
		return fmt.Errorf("status is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.tasks[taskID]
	if !ok {
		return fmt.Errorf("task %q not found", taskID)
	}
	record.task.Status = status
	record.updatedAt = time.Now().UTC()
	return nil
}

// AddArtifacts appends artifacts to the task.
func (s *MemoryTaskStore) AddArtifacts(ctx context.Context, taskID string, artifacts []*a2av1.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.tasks[taskID]
	if !ok {
		return fmt.Errorf("task %q not found", taskID)
	}
	record.task.Artifacts = append(record.task.Artifacts, artifacts...)
	record.updatedAt = time.Now().UTC()
	return nil
}

// GetTask returns a copy of the stored task.
func (s *MemoryTaskStore) GetTask(ctx context.Context, taskID string, historyLength int32, includeArtifacts bool) (*a2av1.Task, error) {
	s.mu.RLock()
	record, ok := s.tasks[taskID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("task %q not found", taskID)
	}
	task := cloneTask(record.task)
	trimTask(task, historyLength, includeArtifacts)
	return task, nil
}

// CancelTask moves a non-terminal task to the cancelled state.
func (s *MemoryTaskStore) CancelTask(ctx context.Context, taskID string) (*a2av1.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("task %q not found", taskID)
	}
	if record.task.Status != nil && record.task.Status.State.Terminal() {
		return nil, fmt.Errorf("task %q is in terminal state", taskID)
	}
	record.task.Status = newStatus(a2av1.TaskStateCancelled, nil)
	record.updatedAt = time.Now().UTC()
	return cloneTask(record.task), nil
}

func trimTask(task *a2av1.Task, historyLength int32, includeArtifacts bool) {
	if historyLength <= 0 {
		task.History = nil
	} else if int32(len(task.History)) > historyLength {
		task.History = task.History[int32(len(task.History))-historyLength:]
	}
	if !includeArtifacts {
		task.Artifacts = nil
	}
}

func cloneMessage(message *a2av1.Message) *a2av1.Message {
	if message == nil {
		return nil
	}
	out := *message
	out.Parts = append([]a2av1.Part(nil), message.Parts...)
	return &out
}

func cloneTask(task *a2av1.Task) *a2av1.Task {
	if task == nil {
		return nil
	}
	out := *task
	if task.Status != nil {
		statusCopy := *task.Status
		statusCopy.Message = cloneMessage(task.Status.Message)
		out.Status = &statusCopy
	}
	out.History = make([]*a2av1.Message, 0, len(task.History))
	for _, msg := range task.History {
		out.History = append(out.History, cloneMessage(msg))
	}
	out.Artifacts = append([]*a2av1.Artifact(nil), task.Artifacts...)
	return &out
}

func newStatus(state a2av1.TaskState, message *a2av1.Message) *a2av1.TaskStatus {
	return &a2av1.TaskStatus{
		State:     state,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}
