package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-risk-agent/internal/agent"
	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/storage"
	"token-risk-agent/internal/storage/memory"
)

// scriptedStreamer replays fixed updates. When block is set it waits for
// ctx to end after sending them.
type scriptedStreamer struct {
	updates []agent.Update
	block   bool
	queries []string
}

func (s *scriptedStreamer) Stream(ctx context.Context, query, _ string) <-chan agent.Update {
	s.queries = append(s.queries, query)
	out := make(chan agent.Update)
	go func() {
		defer close(out)
		for _, u := range s.updates {
			select {
			case out <- u:
			case <-ctx.Done():
				return
			}
		}
		if s.block {
			<-ctx.Done()
		}
	}()
	return out
}

func completedScript() *scriptedStreamer {
	return &scriptedStreamer{updates: []agent.Update{
		{State: domain.TaskWorking, Content: "Analyzing token..."},
		{State: domain.TaskWorking, Content: "security: fetching"},
		{State: domain.TaskCompleted, Content: "## Risk Analysis: TEST"},
	}}
}

func collectFrames(frames *[]Frame) func(Frame) error {
	return func(f Frame) error {
		*frames = append(*frames, f)
		return nil
	}
}

func TestExecute_CompletedEmitsArtifactThenFinalStatus(t *testing.T) {
	store := memory.NewTaskStore()
	exec := NewExecutor(completedScript(), store, nil)

	var frames []Frame
	task, err := exec.Execute(context.Background(), SendRequest{Message: "analyze it", ContextID: "ctx-1"}, collectFrames(&frames))
	require.NoError(t, err)

	kinds := make([]string, len(frames))
	for i, f := range frames {
		kinds[i] = f.Kind
	}
	assert.Equal(t, []string{
		FrameTask,
		FrameStatusUpdate,
		FrameStatusUpdate,
		FrameArtifactUpdate,
		FrameStatusUpdate,
	}, kinds)

	assert.Equal(t, domain.TaskSubmitted, frames[0].Task.Status.State)
	assert.False(t, frames[1].Event.Final)
	assert.Equal(t, "Analyzing token...", frames[1].Event.Status.Message)

	art := frames[3].Event.Artifact
	require.NotNil(t, art)
	assert.Equal(t, ArtifactName, art.Name)
	assert.Equal(t, "## Risk Analysis: TEST", art.Text)
	assert.NotEmpty(t, art.ID)

	last := frames[4].Event
	assert.True(t, last.Final)
	assert.Equal(t, domain.TaskCompleted, last.Status.State)

	assert.Equal(t, "ctx-1", task.ContextID)
	assert.Equal(t, domain.TaskCompleted, task.Status.State)
	require.Len(t, task.Artifacts, 1)
	assert.Len(t, task.History, 4)

	stored, err := store.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCompleted, stored.Status.State)
	assert.Len(t, stored.Artifacts, 1)
}

func TestExecute_InputRequiredIsFinalWithoutArtifact(t *testing.T) {
	streamer := &scriptedStreamer{updates: []agent.Update{
		{State: domain.TaskWorking, Content: "Analyzing..."},
		{State: domain.TaskInputRequired, Content: agent.AddressPrompt},
	}}
	exec := NewExecutor(streamer, memory.NewTaskStore(), nil)

	var frames []Frame
	task, err := exec.Execute(context.Background(), SendRequest{Message: "is it a rug?"}, collectFrames(&frames))
	require.NoError(t, err)

	require.Len(t, frames, 3)
	last := frames[2].Event
	assert.True(t, last.Final)
	assert.Equal(t, domain.TaskInputRequired, last.Status.State)
	assert.Equal(t, agent.AddressPrompt, last.Status.Message)
	assert.Empty(t, task.Artifacts)
	assert.NotEmpty(t, task.ContextID)
}

func TestExecute_EmptyMessage(t *testing.T) {
	streamer := completedScript()
	exec := NewExecutor(streamer, memory.NewTaskStore(), nil)

	_, err := exec.Execute(context.Background(), SendRequest{Message: "   "}, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, streamer.queries)
}

func TestExecute_CancelledContextFailsTask(t *testing.T) {
	streamer := &scriptedStreamer{
		updates: []agent.Update{{State: domain.TaskWorking, Content: "Analyzing..."}},
		block:   true,
	}
	store := memory.NewTaskStore()
	exec := NewExecutor(streamer, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	task, err := exec.Execute(ctx, SendRequest{Message: "analyze"}, func(f Frame) error {
		if f.Kind == FrameStatusUpdate {
			cancel()
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, task)

	stored, err := store.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskFailed, stored.Status.State)
}

func TestExecute_EmitErrorAbandonsRun(t *testing.T) {
	exec := NewExecutor(completedScript(), memory.NewTaskStore(), nil)
	boom := errors.New("client gone")

	calls := 0
	task, err := exec.Execute(context.Background(), SendRequest{Message: "analyze"}, func(f Frame) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.TaskFailed, task.Status.State)
}

func TestCancel_Unsupported(t *testing.T) {
	exec := NewExecutor(completedScript(), memory.NewTaskStore(), nil)
	err := exec.Cancel(context.Background(), "any")
	assert.ErrorIs(t, err, domain.ErrUnsupportedOperation)
}

func TestTask_NotFound(t *testing.T) {
	exec := NewExecutor(completedScript(), memory.NewTaskStore(), nil)
	_, err := exec.Task(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
