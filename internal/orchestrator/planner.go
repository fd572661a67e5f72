package orchestrator

import (
	"context"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/tools"
)

// ToolCall is one requested tool invocation.
type ToolCall struct {
	ID   string // correlates the call with its result in planner transcripts
	Name string
	Args tools.Args
}

// Step is what a planner asks for next: either a batch of calls fanned out
// concurrently, or completion.
type Step struct {
	Label string // progress label, e.g. "phase 1"
	Calls []ToolCall
	Done  bool
	Text  string // final text when Done
}

// Finish returns a completion step.
func Finish(text string) Step {
	return Step{Done: true, Text: text}
}

// Planner decides the next step of a run.
type Planner interface {
	Next(ctx context.Context, st *RunState) (Step, error)
}

// ToolFilter is implemented by planners that restrict which tools may run.
type ToolFilter interface {
	Allowed(tool string) bool
}

// Namer is implemented by planners that report a name for metrics and logs.
type Namer interface {
	Name() string
}

// StepRecord pairs the calls of one step with their results.
type StepRecord struct {
	Label   string
	Calls   []ToolCall
	Results []domain.ToolResult // Results[i] answers Calls[i]
}

// RunState is the per-run record owned by a single Engine.Run.
// Planners read it and may set EarlyExit and AllowListed.
type RunState struct {
	Address string
	Query   string // free-text request, used by conversational planners

	Steps []StepRecord

	EarlyExit   bool
	AllowListed bool

	Text      string // completion text from the planner
	Exhausted bool   // the step budget ran out before the planner finished
}

// Results returns every result in call order.
func (s *RunState) Results() []domain.ToolResult {
	var out []domain.ToolResult
	for _, st := range s.Steps {
		out = append(out, st.Results...)
	}
	return out
}

// Ran reports whether tool has been called in this run.
func (s *RunState) Ran(tool string) bool {
	_, ok := s.Result(tool)
	return ok
}

// Result returns the latest result of tool.
func (s *RunState) Result(tool string) (domain.ToolResult, bool) {
	for i := len(s.Steps) - 1; i >= 0; i-- {
		st := s.Steps[i]
		for j := len(st.Results) - 1; j >= 0; j-- {
			if st.Results[j].Tool == tool {
				return st.Results[j], true
			}
		}
	}
	return domain.ToolResult{}, false
}

// Succeeded reports whether tool ran and succeeded.
func (s *RunState) Succeeded(tool string) bool {
	r, ok := s.Result(tool)
	return ok && r.OK()
}

// Observer receives run progress. Calls are made from the Engine goroutine.
type Observer interface {
	StepStarted(step Step)
	ToolFinished(call ToolCall, res domain.ToolResult)
}

type nopObserver struct{}

func (nopObserver) StepStarted(Step) {}
func (nopObserver) ToolFinished(ToolCall, domain.ToolResult) {}
