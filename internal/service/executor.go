package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"token-risk-agent/internal/agent"
	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/observability"
	"token-risk-agent/internal/storage"
)

// ArtifactName names the artifact that carries the rendered report.
const ArtifactName = "current_result"

// ErrInvalidRequest is returned for malformed send requests.
var ErrInvalidRequest = errors.New("invalid request")

// Streamer runs a free-text request and emits updates in order.
// *agent.Agent implements it.
type Streamer interface {
	Stream(ctx context.Context, query, contextID string) <-chan agent.Update
}

// SendRequest is the body of message:send and the first stream frame.
type SendRequest struct {
	Message   string `json:"message"`
	ContextID string `json:"context_id,omitempty"`
}

// Frame kinds written to stream clients.
const (
	FrameTask           = "task"
	FrameStatusUpdate   = "status-update"
	FrameArtifactUpdate = "artifact-update"
)

// Frame is one message of an event stream.
type Frame struct {
	Kind  string            `json:"kind"`
	Task  *domain.Task      `json:"task,omitempty"`
	Event *domain.TaskEvent `json:"event,omitempty"`
}

// Executor turns agent updates into task state and events.
type Executor struct {
	agent  Streamer
	tasks  storage.TaskStore
	now    func() time.Time
	logger *zap.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(a Streamer, tasks storage.TaskStore, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		agent:  a,
		tasks:  tasks,
		now:    time.Now,
		logger: logger.Named("executor"),
	}
}

// Execute runs req to completion and returns the final task. emit, when not
// nil, receives the task first and then every event in generation order; an
// emit error abandons the run.
func (e *Executor) Execute(ctx context.Context, req SendRequest, emit func(Frame) error) (*domain.Task, error) {
	query := strings.TrimSpace(req.Message)
	if query == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidRequest)
	}
	if emit == nil {
		emit = func(Frame) error { return nil }
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	task := &domain.Task{
		ID:        uuid.NewString(),
		ContextID: req.ContextID,
		Query:     query,
	}
	if task.ContextID == "" {
		task.ContextID = uuid.NewString()
	}
	e.setStatus(task, domain.TaskSubmitted, "")
	if err := e.save(ctx, task); err != nil {
		return nil, err
	}
	if err := emit(Frame{Kind: FrameTask, Task: task.Clone()}); err != nil {
		return task, err
	}

	logger := e.logger.With(zap.String("task_id", task.ID), zap.String("context_id", task.ContextID))
	logger.Info("task started", zap.String("query", query))

	for u := range e.agent.Stream(ctx, query, task.ContextID) {
		if u.State == domain.TaskCompleted {
			artifact := domain.Artifact{ID: uuid.NewString(), Name: ArtifactName, Text: u.Content}
			task.Artifacts = append(task.Artifacts, artifact)
			if err := emit(Frame{Kind: FrameArtifactUpdate, Event: &domain.TaskEvent{
				TaskID:    task.ID,
				ContextID: task.ContextID,
				Artifact:  &artifact,
			}}); err != nil {
				return e.abandon(task, err)
			}
			u.Content = ""
		}

		status := e.setStatus(task, u.State, u.Content)
		if err := e.save(ctx, task); err != nil {
			return e.abandon(task, err)
		}
		if err := emit(Frame{Kind: FrameStatusUpdate, Event: &domain.TaskEvent{
			TaskID:    task.ID,
			ContextID: task.ContextID,
			Status:    &status,
			Final:     u.State.Terminal(),
		}}); err != nil {
			return e.abandon(task, err)
		}
	}

	if !task.Status.State.Terminal() {
		err := ctx.Err()
		if err == nil {
			err = errors.New("agent stream ended without a final state")
		}
		return e.abandon(task, err)
	}

	observability.RecordTask(string(task.Status.State))
	logger.Info("task finished", zap.String("state", string(task.Status.State)))
	return task, nil
}

// Cancel rejects cancellation; in-flight analyses cannot be stopped.
func (e *Executor) Cancel(_ context.Context, taskID string) error {
	e.logger.Info("cancel rejected", zap.String("task_id", taskID))
	return fmt.Errorf("%w: cancel is not supported", domain.ErrUnsupportedOperation)
}

// Task returns a stored task.
func (e *Executor) Task(ctx context.Context, id string) (*domain.Task, error) {
	return e.tasks.Get(ctx, id)
}

func (e *Executor) setStatus(task *domain.Task, state domain.TaskState, msg string) domain.TaskStatus {
	status := domain.TaskStatus{State: state, Message: msg, Timestamp: e.now()}
	task.Status = status
	task.History = append(task.History, status)
	return status
}

func (e *Executor) save(ctx context.Context, task *domain.Task) error {
	// Stored state outlives the request context.
	if err := e.tasks.Save(context.WithoutCancel(ctx), task); err != nil {
		return fmt.Errorf("save task %s: %w", task.ID, err)
	}
	return nil
}

// abandon marks task failed and stores it.
func (e *Executor) abandon(task *domain.Task, cause error) (*domain.Task, error) {
	e.setStatus(task, domain.TaskFailed, cause.Error())
	if err := e.tasks.Save(context.Background(), task); err != nil {
		e.logger.Error("save abandoned task", zap.String("task_id", task.ID), zap.Error(err))
	}
	observability.RecordTask(string(domain.TaskFailed))
	e.logger.Warn("task abandoned", zap.String("task_id", task.ID), zap.Error(cause))
	return task, cause
}
