// Package agent exposes the risk-assessment operations behind the REPL, the
// CLI and the service surface.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/orchestrator"
	"token-risk-agent/internal/reporting"
	"token-risk-agent/internal/solana"
	"token-risk-agent/internal/storage"
	"token-risk-agent/internal/tools"
)

// ErrChatUnavailable is returned by Chat when no conversational planner is configured.
var ErrChatUnavailable = errors.New("free-text chat is not configured")

// Agent wires the tool registry, the engine and the planners together.
// It is safe for concurrent use.
type Agent struct {
	registry  *tools.Registry
	allowList storage.AllowListStore
	engine    *orchestrator.Engine
	phase     orchestrator.Planner
	quick     orchestrator.Planner
	holders   orchestrator.Planner
	chat      orchestrator.Planner
	logger    *zap.Logger
}

// Options for creating Agent.
type Options struct {
	Registry         *tools.Registry        // required
	AllowList        storage.AllowListStore // nil disables the established-token shortcut
	Chat             orchestrator.Planner   // nil disables free-text chat
	OnChainFallbacks bool
	MaxSteps         int
	Now              func() time.Time
	Logger           *zap.Logger
}

// New creates an Agent.
func New(opts Options) (*Agent, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("%w: agent requires a tool registry", domain.ErrConfiguration)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var allowList orchestrator.AllowList
	if opts.AllowList != nil {
		allowList = opts.AllowList
	}

	return &Agent{
		registry:  opts.Registry,
		allowList: opts.AllowList,
		engine: orchestrator.New(orchestrator.Options{
			Executor: opts.Registry,
			MaxSteps: opts.MaxSteps,
			Now:      opts.Now,
			Logger:   logger,
		}),
		phase: orchestrator.NewPhasePlanner(
			orchestrator.WithAllowList(allowList),
			orchestrator.WithOnChainFallbacks(opts.OnChainFallbacks),
			orchestrator.WithPlannerLogger(logger),
		),
		quick:   orchestrator.NewQuickPlanner(opts.OnChainFallbacks),
		holders: orchestrator.NewHolderPlanner(opts.OnChainFallbacks),
		chat:    opts.Chat,
		logger:  logger.Named("agent"),
	}, nil
}

// Analyze runs the full two-phase assessment of address.
func (a *Agent) Analyze(ctx context.Context, address string, obs orchestrator.Observer) (*reporting.Report, error) {
	return a.assess(ctx, a.phase, address, obs)
}

// Quick runs Phase 1 only.
func (a *Agent) Quick(ctx context.Context, address string, obs orchestrator.Observer) (*reporting.Report, error) {
	return a.assess(ctx, a.quick, address, obs)
}

func (a *Agent) assess(ctx context.Context, p orchestrator.Planner, address string, obs orchestrator.Observer) (*reporting.Report, error) {
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	ra, _, err := a.engine.Analyze(ctx, p, address, obs)
	if err != nil {
		return nil, err
	}
	return reporting.NewReport(ra), nil
}

// Holders gathers metadata, holder distribution and pool context for address.
func (a *Agent) Holders(ctx context.Context, address string, obs orchestrator.Observer) (reporting.HolderReport, error) {
	if err := validateAddress(address); err != nil {
		return reporting.HolderReport{}, err
	}
	st, err := a.engine.Run(ctx, a.holders, orchestrator.Request{Address: address}, obs)
	if err != nil {
		return reporting.HolderReport{}, err
	}

	hr := reporting.HolderReport{Address: address}
	for _, r := range st.Results() {
		if !r.OK() {
			hr.Failed = append(hr.Failed, r.Tool)
			continue
		}
		switch v := r.Payload.(type) {
		case domain.TokenMetadata:
			hr.Metadata = &v
		case domain.HolderDistribution:
			if hr.Holders == nil {
				hr.Holders = &v
			}
		case domain.PoolSnapshot:
			hr.Pool = &v
		}
	}
	// A recovered holder sample is not missing data.
	if hr.Holders != nil {
		hr.Failed = without(hr.Failed, tools.HolderDistribution)
	}

	if hr.Metadata == nil && hr.Holders == nil && hr.Pool == nil {
		return hr, fmt.Errorf("%w: every holder data source failed", domain.ErrInsufficientData)
	}
	return hr, nil
}

// Trending returns the current trending Solana tokens.
func (a *Agent) Trending(ctx context.Context) ([]domain.TrendingToken, error) {
	res := a.registry.Execute(ctx, tools.Trending, tools.Args{})
	switch res.Outcome {
	case domain.OutcomeSuccess:
		list, ok := domain.As[[]domain.TrendingToken](res)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected trending payload %T", domain.ErrMalformedResponse, res.Payload)
		}
		return list, nil
	case domain.OutcomeNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("trending: %s", res.Reason)
	}
}

// Chat answers a free-text query with the conversational planner.
func (a *Agent) Chat(ctx context.Context, query string, obs orchestrator.Observer) (string, error) {
	if a.chat == nil {
		return "", ErrChatUnavailable
	}
	st, err := a.engine.Run(ctx, a.chat, orchestrator.Request{Query: query}, obs)
	if err != nil {
		return "", err
	}
	if st.Text == "" {
		if st.Exhausted {
			return "I gathered data but ran out of steps before reaching an answer. Try `analyze <address>` for a full report.", nil
		}
		return "I don't have an answer for that. Type `help` for the available commands.", nil
	}
	return st.Text, nil
}

// ChatEnabled reports whether free-text queries reach a language model.
func (a *Agent) ChatEnabled() bool {
	return a.chat != nil
}

func validateAddress(address string) error {
	if err := solana.ValidatePubkey(address); err != nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidAddress, address)
	}
	return nil
}

func without(list []string, drop string) []string {
	out := list[:0]
	for _, s := range list {
		if s != drop {
			out = append(out, s)
		}
	}
	return out
}
