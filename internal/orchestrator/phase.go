package orchestrator

import (
	"context"

	"go.uber.org/zap"

	"token-risk-agent/internal/scoring"
	"token-risk-agent/internal/tools"
)

// Step labels.
const (
	LabelPhase1         = "phase 1: security, audit, market data"
	LabelAuthorityCheck = "phase 1: on-chain authority check"
	LabelMarketStats    = "established token: market stats"
	LabelPhase2         = "phase 2: incidents, holders, transactions, trading"
	LabelHolderFallback = "phase 2: on-chain holder sample"
	LabelHolders        = "holders: metadata, distribution, pool"
)

// AllowList reports whether a mint is an established token.
type AllowList interface {
	Contains(ctx context.Context, mint string) (bool, error)
}

// PhasePlanner is the deterministic two-phase analysis policy.
//
// Phase 1 always runs the security, audit and token-details tools.
// Established tokens then only get market stats. Otherwise a confirmed active
// mint authority or liquidity under $1,000 ends the run early, and Phase 2
// runs the incident, holder, transaction and trading tools.
type PhasePlanner struct {
	allowList AllowList
	fallbacks bool
	logger    *zap.Logger
}

// PhaseOption configures PhasePlanner.
type PhaseOption func(*PhasePlanner)

// WithAllowList sets the established-token list.
func WithAllowList(a AllowList) PhaseOption {
	return func(p *PhasePlanner) { p.allowList = a }
}

// WithOnChainFallbacks enables the RPC-backed mint and holder fallbacks.
func WithOnChainFallbacks(enabled bool) PhaseOption {
	return func(p *PhasePlanner) { p.fallbacks = enabled }
}

// WithPlannerLogger sets the logger.
func WithPlannerLogger(l *zap.Logger) PhaseOption {
	return func(p *PhasePlanner) { p.logger = l }
}

// NewPhasePlanner creates a PhasePlanner.
func NewPhasePlanner(opts ...PhaseOption) *PhasePlanner {
	p := &PhasePlanner{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named("phase_planner")
	return p
}

// Name implements Namer.
func (p *PhasePlanner) Name() string { return "phase" }

// Allowed implements ToolFilter.
func (p *PhasePlanner) Allowed(tool string) bool {
	switch tool {
	case tools.SecurityCheck, tools.AuditStatus, tools.TokenDetails,
		tools.IncidentCheck, tools.HolderDistribution, tools.TransactionHistory,
		tools.TradingMetrics:
		return true
	case tools.MintInspection, tools.LargestHolders:
		return p.fallbacks
	}
	return false
}

// Next implements Planner.
func (p *PhasePlanner) Next(ctx context.Context, st *RunState) (Step, error) {
	if step, pending := phaseOne(st, p.fallbacks); pending {
		return step, nil
	}

	// Established tokens keep their issuer authorities, so the allow-list is
	// consulted before the early-exit heuristics.
	if st.AllowListed || p.established(ctx, st.Address) {
		st.AllowListed = true
		if !st.Ran(tools.TradingMetrics) {
			return Step{Label: LabelMarketStats, Calls: []ToolCall{call(tools.TradingMetrics, st.Address)}}, nil
		}
		return Finish(""), nil
	}

	signals := scoring.Collect(st.Results())
	if earlyExit(signals) {
		st.EarlyExit = true
		return Finish(""), nil
	}

	if !st.Ran(tools.HolderDistribution) {
		incident := call(tools.IncidentCheck, st.Address)
		if signals.Details != nil && signals.Details.Name != "" {
			incident.Args.ProjectName = signals.Details.Name
		}
		return Step{Label: LabelPhase2, Calls: []ToolCall{
			incident,
			call(tools.HolderDistribution, st.Address),
			call(tools.TransactionHistory, st.Address),
			call(tools.TradingMetrics, st.Address),
		}}, nil
	}

	if p.fallbacks && !st.Succeeded(tools.HolderDistribution) && !st.Ran(tools.LargestHolders) {
		return Step{Label: LabelHolderFallback, Calls: []ToolCall{call(tools.LargestHolders, st.Address)}}, nil
	}
	return Finish(""), nil
}

func (p *PhasePlanner) established(ctx context.Context, mint string) bool {
	if p.allowList == nil {
		return false
	}
	ok, err := p.allowList.Contains(ctx, mint)
	if err != nil {
		p.logger.Warn("allow-list lookup failed, treating as not listed",
			zap.String("mint", mint),
			zap.Error(err),
		)
		return false
	}
	return ok
}

// QuickPlanner runs Phase 1 only.
type QuickPlanner struct {
	fallbacks bool
}

// NewQuickPlanner creates a QuickPlanner.
func NewQuickPlanner(onChainFallbacks bool) *QuickPlanner {
	return &QuickPlanner{fallbacks: onChainFallbacks}
}

// Name implements Namer.
func (q *QuickPlanner) Name() string { return "quick" }

// Allowed implements ToolFilter.
func (q *QuickPlanner) Allowed(tool string) bool {
	switch tool {
	case tools.SecurityCheck, tools.AuditStatus, tools.TokenDetails:
		return true
	case tools.MintInspection:
		return q.fallbacks
	}
	return false
}

// Next implements Planner.
func (q *QuickPlanner) Next(_ context.Context, st *RunState) (Step, error) {
	if step, pending := phaseOne(st, q.fallbacks); pending {
		return step, nil
	}
	return Finish(""), nil
}

// HolderPlanner gathers metadata, holder distribution and pool context for
// the holders verb. It does not score.
type HolderPlanner struct {
	fallbacks bool
}

// NewHolderPlanner creates a HolderPlanner.
func NewHolderPlanner(onChainFallbacks bool) *HolderPlanner {
	return &HolderPlanner{fallbacks: onChainFallbacks}
}

// Name implements Namer.
func (h *HolderPlanner) Name() string { return "holders" }

// Allowed implements ToolFilter.
func (h *HolderPlanner) Allowed(tool string) bool {
	switch tool {
	case tools.TokenMetadata, tools.HolderDistribution, tools.PoolSnapshot:
		return true
	case tools.LargestHolders:
		return h.fallbacks
	}
	return false
}

// Next implements Planner.
func (h *HolderPlanner) Next(_ context.Context, st *RunState) (Step, error) {
	if !st.Ran(tools.HolderDistribution) {
		return Step{Label: LabelHolders, Calls: []ToolCall{
			call(tools.TokenMetadata, st.Address),
			call(tools.HolderDistribution, st.Address),
			call(tools.PoolSnapshot, st.Address),
		}}, nil
	}
	if h.fallbacks && !st.Succeeded(tools.HolderDistribution) && !st.Ran(tools.LargestHolders) {
		return Step{Label: LabelHolderFallback, Calls: []ToolCall{call(tools.LargestHolders, st.Address)}}, nil
	}
	return Finish(""), nil
}

// phaseOne returns the next Phase 1 step, if any remains.
func phaseOne(st *RunState, fallbacks bool) (Step, bool) {
	if !st.Ran(tools.SecurityCheck) {
		return Step{Label: LabelPhase1, Calls: []ToolCall{
			call(tools.SecurityCheck, st.Address),
			call(tools.AuditStatus, st.Address),
			call(tools.TokenDetails, st.Address),
		}}, true
	}
	if fallbacks && !st.Succeeded(tools.SecurityCheck) && !st.Ran(tools.MintInspection) {
		return Step{Label: LabelAuthorityCheck, Calls: []ToolCall{call(tools.MintInspection, st.Address)}}, true
	}
	return Step{}, false
}

func earlyExit(s scoring.Signals) bool {
	if s.MintActive() {
		return true
	}
	liq, ok := s.LiquidityUSD()
	return ok && liq < scoring.MinLiquidityUSD
}

func call(name, address string) ToolCall {
	return ToolCall{ID: name, Name: name, Args: tools.Args{Address: address}}
}

