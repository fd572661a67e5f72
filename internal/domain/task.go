package domain

import "time"

// TaskState is the lifecycle state of a service task.
type TaskState string

const (
	TaskSubmitted     TaskState = "submitted"
	TaskWorking       TaskState = "working"
	TaskInputRequired TaskState = "input_required"
	TaskCompleted     TaskState = "completed"
	TaskFailed        TaskState = "failed"
)

// Terminal reports whether no further events follow this state.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskInputRequired, TaskCompleted, TaskFailed:
		return true
	default:
		return false
	}
}

// TaskStatus is one entry of a task's status history.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Artifact carries rendered output attached to a task.
type Artifact struct {
	ID   string `json:"artifact_id"`
	Name string `json:"name"`
	Text string `json:"text"`
}

// Task is a single request served by the agent service.
type Task struct {
	ID        string       `json:"id"`
	ContextID string       `json:"context_id"`
	Query     string       `json:"query"`
	Status    TaskStatus   `json:"status"`
	History   []TaskStatus `json:"history"`
	Artifacts []Artifact   `json:"artifacts,omitempty"`
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	c.History = append([]TaskStatus(nil), t.History...)
	c.Artifacts = append([]Artifact(nil), t.Artifacts...)
	return &c
}

// TaskEvent is a status or artifact update emitted while a task runs.
// Exactly one of Status and Artifact is set.
type TaskEvent struct {
	TaskID    string      `json:"task_id"`
	ContextID string      `json:"context_id"`
	Status    *TaskStatus `json:"status,omitempty"`
	Artifact  *Artifact   `json:"artifact,omitempty"`
	Final     bool        `json:"final"`
}
