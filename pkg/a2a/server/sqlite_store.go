package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"

	_ "modernc.org/sqlite"
)

const taskTable = "a2a_tasks"

// SQLiteTaskStore persists A2A tasks in a SQLite database.
type SQLiteTaskStore struct {
	db *sql.DB
}

// NewSQLiteTaskStore creates a SQLite-backed task store and ensures schema.
func NewSQLiteTaskStore(db *sql.DB) (*SQLiteTaskStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if err := ensureTaskSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteTaskStore{db: db}, nil
}

func ensureTaskSchema(db *sql.DB) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			context_id TEXT NOT NULL,
			status_state TEXT NOT NULL,
			updated_at INTEGER NOT NULL,
			task_json BLOB NOT NULL
		);`, taskTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_context ON %s(context_id);`, taskTable, taskTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_status ON %s(status_state);`, taskTable, taskTable),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_updated ON %s(updated_at);`, taskTable, taskTable),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateTask persists a new task seeded from the incoming message.
func (s *SQLiteTaskStore) CreateTask(ctx context.Context, message *a2av1.Message) (*a2av1.Task, error) {
	if message == nil {
		return nil, fmt.Errorf("message is nil")
	}
	taskID := uuid.NewString()
	contextID := message.ContextID
	if contextID == "" {
		contextID = uuid.NewString()
	}

	msg := cloneMessage(message)
	msg.TaskID = taskID
	msg.ContextID = contextID
	task := &a2av1.Task{
		ID:        taskID,
		ContextID: contextID,
		Status:    newStatus(a2av1.TaskStateSubmitted, msg),
		History:   []*a2av1.Message{msg},
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().UnixMilli()
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (id, context_id, status_state, updated_at, task_json) VALUES (?, ?, ?, ?, ?)", taskTable),
		taskID, contextID, string(task.Status.State), now, payload)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// AppendHistory appends a message to the task history.
func (s *SQLiteTaskStore) AppendHistory(ctx context.Context, taskID string, message *a2av1.Message) error {
	if message == nil {
		return fmt.Errorf("message is nil")
	}
	_, err := s.mutateTask(ctx, taskID, func(task *a2av1.Task) error {
		task.History = append(task.History, cloneMessage(message))
		return nil
	})
	return err
}

// UpdateStatus updates the persisted task status.
func (s *SQLiteTaskStore) UpdateStatus(ctx context.Context, taskID string, status *a2av1.TaskStatus) error {
	if status == nil {
		return fmt.Errorf("status is nil")
	}
	_, err := s.mutateTask(ctx, taskID, func(task *a2av1.Task) error {
		task.Status = status
		return nil
	})
	return err
}

// AddArtifacts appends artifacts to a persisted task.
func (s *SQLiteTaskStore) AddArtifacts(ctx context.Context, taskID string, artifacts []*a2av1.Artifact) error {
	if len(artifacts) == 0 {
		return nil
	}
	_, err := s.mutateTask(ctx, taskID, func(task *a2av1.Task) error {
		for _, artifact := range artifacts {
			if artifact == nil {
				continue
			}
			task.Artifacts = append(task.Artifacts, artifact)
		}
		return nil
	})
	return err
}

// GetTask returns a task with optional history/artifact filtering.
func (s *SQLiteTaskStore) GetTask(ctx context.Context, taskID string, historyLength int32, includeArtifacts bool) (*a2av1.Task, error) {
	task, err := s.getTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	trimTask(task, historyLength, includeArtifacts)
	return task, nil
}

// CancelTask moves a non-terminal task to the cancelled state.
func (s *SQLiteTaskStore) CancelTask(ctx context.Context, taskID string) (*a2av1.Task, error) {
	return s.mutateTask(ctx, taskID, func(task *a2av1.Task) error {
		if task.Status != nil && task.Status.State.Terminal() {
			return fmt.Errorf("task %q is in terminal state", taskID)
		}
		var lastMsg *a2av1.Message
		if task.Status != nil {
			lastMsg = task.Status.Message
		}
		task.Status = newStatus(a2av1.TaskStateCancelled, lastMsg)
		return nil
	})
}

// mutateTask runs a read-modify-write over the task row inside one
// transaction so concurrent sends against the same task cannot lose a
// history entry or artifact.
func (s *SQLiteTaskStore) mutateTask(ctx context.Context, taskID string, mutate func(*a2av1.Task) error) (*a2av1.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	task, err := readTask(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}
	if err := mutate(task); err != nil {
		return nil, err
	}
	if err := writeTask(ctx, tx, task); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *SQLiteTaskStore) getTask(ctx context.Context, taskID string) (*a2av1.Task, error) {
	return readTask(ctx, s.db, taskID)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func readTask(ctx context.Context, q rowQuerier, taskID string) (*a2av1.Task, error) {
	var payload []byte
	err := q.QueryRowContext(ctx, fmt.Sprintf("SELECT task_json FROM %s WHERE id = ?", taskTable), taskID).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("task %q not found", taskID)
		}
		return nil, err
	}
	var task a2av1.Task
	if err := json.Unmarshal(payload, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func writeTask(ctx context.Context, e execer, task *a2av1.Task) error {
	if task == nil {
		return fmt.Errorf("task is nil")
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	state := a2av1.TaskStateUnspecified
	if task.Status != nil {
		state = task.Status.State
	}
	now := time.Now().UTC().UnixMilli()
	_, err = e.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET context_id = ?, status_state = ?, updated_at = ?, task_json = ? WHERE id = ?", taskTable),
		task.ContextID, string(state), now, payload, task.ID)
	return err
}
