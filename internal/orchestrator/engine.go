// Package orchestrator runs tool-calling plans. The Engine executes the steps a
// Planner asks for; PhasePlanner is the deterministic two-phase risk policy.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/observability"
	"token-risk-agent/internal/scoring"
	"token-risk-agent/internal/tools"
)

// DefaultMaxSteps bounds the planner loop.
const DefaultMaxSteps = 8

// Executor runs a named tool. *tools.Registry implements it.
type Executor interface {
	Execute(ctx context.Context, name string, args tools.Args) domain.ToolResult
}

// Engine drives planners against an Executor.
type Engine struct {
	exec      Executor
	evaluator *scoring.Evaluator
	maxSteps  int
	now       func() time.Time
	logger    *zap.Logger
}

// Options for creating Engine.
type Options struct {
	Executor Executor // required
	MaxSteps int      // default DefaultMaxSteps
	Now      func() time.Time
	Logger   *zap.Logger
}

// New creates a new Engine.
func New(opts Options) *Engine {
	e := &Engine{
		exec:      opts.Executor,
		evaluator: scoring.NewEvaluator(),
		maxSteps:  opts.MaxSteps,
		now:       opts.Now,
		logger:    opts.Logger,
	}
	if e.maxSteps <= 0 {
		e.maxSteps = DefaultMaxSteps
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	e.logger = e.logger.Named("engine")
	return e
}

// Request identifies what a run is about.
type Request struct {
	Address string
	Query   string
}

// Run loops the planner until it finishes or the step budget is spent.
// Each step's calls run concurrently. Cancelling ctx abandons the run and
// returns ctx.Err().
func (e *Engine) Run(ctx context.Context, p Planner, req Request, obs Observer) (*RunState, error) {
	if obs == nil {
		obs = nopObserver{}
	}
	st := &RunState{Address: req.Address, Query: req.Query}
	name := plannerName(p)

	steps := 0
	defer func() { observability.RecordPlannerSteps(name, steps) }()

	for steps < e.maxSteps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		step, err := p.Next(ctx, st)
		if err != nil {
			return nil, fmt.Errorf("planner %s: %w", name, err)
		}
		if step.Done || len(step.Calls) == 0 {
			st.Text = step.Text
			return st, nil
		}
		steps++

		obs.StepStarted(step)
		results, err := e.execute(ctx, p, step.Calls)
		if err != nil {
			return nil, err
		}
		for i, call := range step.Calls {
			obs.ToolFinished(call, results[i])
		}
		st.Steps = append(st.Steps, StepRecord{Label: step.Label, Calls: step.Calls, Results: results})
	}

	st.Exhausted = true
	e.logger.Warn("planner step budget exhausted",
		zap.String("planner", name),
		zap.String("address", req.Address),
		zap.Int("max_steps", e.maxSteps),
	)
	return st, nil
}

// execute fans calls out and returns results in call order.
func (e *Engine) execute(ctx context.Context, p Planner, calls []ToolCall) ([]domain.ToolResult, error) {
	filter, restricted := p.(ToolFilter)
	results := make([]domain.ToolResult, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			if restricted && !filter.Allowed(call.Name) {
				results[i] = domain.Failure(call.Name, fmt.Sprintf("tool %q is not allowed by this planner", call.Name))
				return nil
			}
			results[i] = e.exec.Execute(gctx, call.Name, call.Args)
			return nil
		})
	}
	_ = g.Wait()

	// Results produced after cancellation are discarded.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Analyze runs p for address and scores the collected results.
func (e *Engine) Analyze(ctx context.Context, p Planner, address string, obs Observer) (domain.RiskAssessment, *RunState, error) {
	start := e.now()
	st, err := e.Run(ctx, p, Request{Address: address}, obs)
	if err != nil {
		return domain.RiskAssessment{}, nil, err
	}

	ra := e.evaluator.Evaluate(scoring.Input{
		Address:     address,
		Signals:     scoring.Collect(st.Results()),
		EarlyExit:   st.EarlyExit,
		AllowListed: st.AllowListed,
		Now:         e.now(),
	})

	verdict := ra.Verdict.String()
	if ra.InsufficientData {
		verdict = "insufficient_data"
	}
	observability.RecordAnalysis(verdict, e.now().Sub(start).Seconds(), ra.EarlyExit, ra.GeneratedAt.Unix())

	e.logger.Info("analysis finished",
		zap.String("address", address),
		zap.String("planner", plannerName(p)),
		zap.Int("score", ra.Score),
		zap.String("verdict", verdict),
		zap.Bool("early_exit", ra.EarlyExit),
		zap.Bool("allow_listed", ra.AllowListed),
		zap.Strings("failed_tools", ra.FailedTools),
	)
	return ra, st, nil
}

func plannerName(p Planner) string {
	if n, ok := p.(Namer); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}
