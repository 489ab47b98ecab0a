package server

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
	"github.com/jllopis/mealmesh/pkg/telemetry"
)

// Executor runs a task and returns a response payload plus optional artifacts.
type Executor interface {
	Run(ctx context.Context, message *a2av1.Message) (any, []*a2av1.Artifact, error)
}

// Handler defines the core A2A operations served by an agent.
type Handler interface {
	SendMessage(ctx context.Context, req *a2av1.SendMessageRequest) (*a2av1.Task, error)
	GetTask(ctx context.Context, req *a2av1.GetTaskRequest) (*a2av1.Task, error)
	CancelTask(ctx context.Context, req *a2av1.CancelTaskRequest) (*a2av1.Task, error)
	AgentCard() *a2av1.AgentCard
}

// SimpleHandler implements core A2A operations using a TaskStore and Executor.
type SimpleHandler struct {
	Store  Store
	Exec   Executor
	Card   *a2av1.AgentCard
	Logger *slog.Logger
}

func (h *SimpleHandler) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Store is an alias kept short for wiring readability.
type Store = TaskStore

// AgentCard returns the descriptor this handler serves.
func (h *SimpleHandler) AgentCard() *a2av1.AgentCard {
	return h.Card
}

// SendMessage creates (or resumes) a task, runs the executor and returns the
// finished task with its status message attached.
func (h *SimpleHandler) SendMessage(ctx context.Context, req *a2av1.SendMessageRequest) (*a2av1.Task, error) {
	if h.Store == nil || h.Exec == nil {
		return nil, status.Error(codes.FailedPrecondition, "handler not configured")
	}
	message := req.Request
	if err := ValidateMessage(message); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	task, err := h.ensureTask(ctx, message)
	if err != nil {
		return nil, err
	}
	return h.executeTask(ctx, task, message)
}

// GetTask returns a task by resource name.
func (h *SimpleHandler) GetTask(ctx context.Context, req *a2av1.GetTaskRequest) (*a2av1.Task, error) {
	if h.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "task store not configured")
	}
	taskID, err := ParseTaskName(req.Name)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	task, err := h.Store.GetTask(ctx, taskID, req.HistoryLength, false)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	return task, nil
}

// CancelTask cancels a non-terminal task.
func (h *SimpleHandler) CancelTask(ctx context.Context, req *a2av1.CancelTaskRequest) (*a2av1.Task, error) {
	if h.Store == nil {
		return nil, status.Error(codes.FailedPrecondition, "task store not configured")
	}
	taskID, err := ParseTaskName(req.Name)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	task, err := h.Store.CancelTask(ctx, taskID)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	return task, nil
}

func (h *SimpleHandler) ensureTask(ctx context.Context, message *a2av1.Message) (*a2av1.Task, error) {
	if message.TaskID == "" {
		task, err := h.Store.CreateTask(ctx, message)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		return task, nil
	}

	task, err := h.Store.GetTask(ctx, message.TaskID, 0, true)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}
	if task.Status != nil && task.Status.State.Terminal() {
		return nil, status.Error(codes.FailedPrecondition, "task is in terminal state")
	}
	message.ContextID = task.ContextID
	if err := h.Store.AppendHistory(ctx, task.ID, message); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return task, nil
}

func (h *SimpleHandler) executeTask(ctx context.Context, task *a2av1.Task, message *a2av1.Message) (*a2av1.Task, error) {
	ctx, span := otel.Tracer("mealmesh/a2a").Start(ctx, "a2a.execute_task")
	defer span.End()
	h.persist(ctx, task.ID, "working status",
		h.Store.UpdateStatus(ctx, task.ID, newStatus(a2av1.TaskStateWorking, message)))

	output, artifacts, err := h.Exec.Run(ctx, message)
	if err != nil {
		failed := newStatus(a2av1.TaskStateFailed, textMessage(err.Error(), task.ContextID, task.ID))
		h.persist(ctx, task.ID, "failed status", h.Store.UpdateStatus(ctx, task.ID, failed))
		task.Status = failed
		span.RecordError(err)
		span.SetAttributes(telemetry.TaskAttributes(task.ID, task.ContextID, string(a2av1.TaskStateFailed))...)
		return task, nil
	}

	respMsg := ResponseMessage(output, task.ContextID, task.ID)
	h.persist(ctx, task.ID, "response history", h.Store.AppendHistory(ctx, task.ID, respMsg))
	if len(artifacts) > 0 {
		h.persist(ctx, task.ID, "artifacts", h.Store.AddArtifacts(ctx, task.ID, artifacts))
	}

	completed := newStatus(a2av1.TaskStateCompleted, respMsg)
	h.persist(ctx, task.ID, "completed status", h.Store.UpdateStatus(ctx, task.ID, completed))
	span.SetAttributes(telemetry.TaskAttributes(task.ID, task.ContextID, string(a2av1.TaskStateCompleted))...)

	task.Status = completed
	task.Artifacts = append(task.Artifacts, artifacts...)
	return task, nil
}

// persist logs store failures during execution. The in-memory task the
// caller receives is correct either way, but a stale persisted state
// would otherwise be invisible.
func (h *SimpleHandler) persist(ctx context.Context, taskID, what string, err error) {
	if err != nil {
		h.log().WarnContext(ctx, "failed to persist task "+what, "task_id", taskID, "error", err)
	}
}
