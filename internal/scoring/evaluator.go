// Package scoring maps normalized signals to a weighted 1-10 risk score and a verdict.
package scoring

import (
	"fmt"
	"math"
	"time"

	"token-risk-agent/internal/domain"
)

// Factor names.
const (
	FactorAuthority = "Authority"
	FactorAudit     = "Audit"
	FactorLiquidity = "Liquidity"
	FactorHolders   = "Holders"
	FactorAge       = "Age"
)

// Buckets.
const (
	BucketCritical = 10
	BucketHigh     = 7
	BucketMedium   = 4
	BucketLow      = 1
)

// Thresholds shared with the orchestration policy.
const (
	// MinLiquidityUSD is the early-exit liquidity floor.
	MinLiquidityUSD = 1_000.0

	lowLiquidityUSD     = 10_000.0
	healthyLiquidityUSD = 100_000.0
	whaleTop10Pct       = 60.0
	minAuditScore       = 70.0
	partialScore        = 5
	dangerousFloor      = 6
	criticalFloor       = 8
	monthAge            = 30 * 24 * time.Hour
)

// Weights per factor. They sum to 1.
var Weights = map[string]float64{
	FactorAuthority: 0.30,
	FactorAudit:     0.20,
	FactorLiquidity: 0.20,
	FactorHolders:   0.15,
	FactorAge:       0.15,
}

// Input is everything needed to score one run.
type Input struct {
	Address     string
	Signals     Signals
	EarlyExit   bool
	AllowListed bool
	Now         time.Time
}

// Evaluator applies the risk rubric.
type Evaluator struct{}

// NewEvaluator creates a new risk evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate produces a RiskAssessment from Input.
// Score is the renormalized weighted mean over known factors, then
// overrides raise the verdict: active mint or early exit to at least
// DANGEROUS, a matched incident to CRITICAL.
func (e *Evaluator) Evaluate(in Input) domain.RiskAssessment {
	if in.Now.IsZero() {
		in.Now = time.Now()
	}
	sig := in.Signals

	ra := domain.RiskAssessment{
		Address:      in.Address,
		EarlyExit:    in.EarlyExit,
		AllowListed:  in.AllowListed,
		Security:     sig.Security,
		Audit:        sig.Audit,
		Details:      sig.Details,
		Holders:      sig.Holders,
		Trading:      sig.Trading,
		Incident:     sig.Incident,
		Transactions: sig.Transactions,
		Sources:      sig.Sources,
		FailedTools:  sig.FailedTools,
		GeneratedAt:  in.Now.UTC(),
	}
	ra.Symbol, ra.Name = sig.Identity()

	// No tool produced anything: nothing to score.
	if sig.Succeeded == 0 {
		ra.InsufficientData = true
		return ra
	}

	ra.Factors = []domain.FactorScore{
		authorityFactor(sig.Security),
		auditFactor(sig.Audit),
		liquidityFactor(sig),
		holdersFactor(sig.Holders),
		ageFactor(sig.Details, in.Now),
	}

	var weighted, total float64
	for _, f := range ra.Factors {
		if f.Known {
			weighted += f.Weight * float64(f.Bucket)
			total += f.Weight
		}
	}

	if total == 0 {
		ra.Score = partialScore
		ra.Partial = true
	} else {
		ra.Score = clamp(int(math.Round(weighted/total)), 1, 10)
	}
	ra.Verdict = VerdictFor(ra.Score)

	if sig.MintActive() || in.EarlyExit {
		raise(&ra, domain.VerdictDangerous, dangerousFloor)
	}
	if sig.Incident != nil && sig.Incident.Found {
		raise(&ra, domain.VerdictCritical, criticalFloor)
	}

	ra.RedFlags = redFlags(sig, in)
	if ra.Partial {
		ra.RedFlags = append(ra.RedFlags, "No scoring factors could be determined from the available data")
	}
	return ra
}

// VerdictFor maps a score to a verdict.
func VerdictFor(score int) domain.Verdict {
	switch {
	case score >= criticalFloor:
		return domain.VerdictCritical
	case score >= dangerousFloor:
		return domain.VerdictDangerous
	case score >= 4:
		return domain.VerdictCaution
	default:
		return domain.VerdictSafe
	}
}

// raise lifts the verdict to at least v and the score to its floor.
func raise(ra *domain.RiskAssessment, v domain.Verdict, floor int) {
	if ra.Verdict.Rank() < v.Rank() {
		ra.Verdict = v
	}
	if ra.Score < floor {
		ra.Score = floor
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func factor(name string, bucket int, reason string) domain.FactorScore {
	return domain.FactorScore{
		Factor: name,
		Weight: Weights[name],
		Bucket: bucket,
		Known:  true,
		Reason: reason,
	}
}

func unknown(name, reason string) domain.FactorScore {
	return domain.FactorScore{Factor: name, Weight: Weights[name], Reason: reason}
}

func authorityFactor(s *domain.SecuritySignal) domain.FactorScore {
	if s == nil {
		return unknown(FactorAuthority, "authority data unavailable")
	}
	mintKnown := s.MintAuthorityRenounced != nil
	freezeKnown := s.FreezeAuthorityRenounced != nil

	switch {
	case s.MintActive():
		return factor(FactorAuthority, BucketCritical, "mint authority active")
	case !mintKnown && s.FreezeActive():
		return factor(FactorAuthority, BucketHigh, "mint authority unknown, freeze authority active")
	case !mintKnown:
		return unknown(FactorAuthority, "mint authority unknown")
	case s.FreezeActive() || !freezeKnown:
		return factor(FactorAuthority, BucketMedium, "mint authority renounced, freeze authority active or unknown")
	default:
		return factor(FactorAuthority, BucketLow, "mint and freeze authority renounced")
	}
}

func auditFactor(a *domain.AuditStatus) domain.FactorScore {
	if a == nil {
		return unknown(FactorAudit, "audit data unavailable")
	}
	switch {
	case a.Status == domain.AuditStatusPending:
		return factor(FactorAudit, BucketHigh, "audit pending")
	case !a.Audited:
		return factor(FactorAudit, BucketCritical, "no audit record")
	case a.Score != nil && *a.Score < minAuditScore:
		return factor(FactorAudit, BucketMedium, fmt.Sprintf("audited, security score %.0f below %.0f", *a.Score, minAuditScore))
	default:
		return factor(FactorAudit, BucketLow, "audited")
	}
}

func liquidityFactor(s Signals) domain.FactorScore {
	liq, ok := s.LiquidityUSD()
	if !ok {
		return unknown(FactorLiquidity, "liquidity unavailable")
	}
	switch {
	case liq < MinLiquidityUSD:
		return factor(FactorLiquidity, BucketCritical, fmt.Sprintf("liquidity $%.0f below $1,000", liq))
	case liq < lowLiquidityUSD:
		return factor(FactorLiquidity, BucketHigh, fmt.Sprintf("liquidity $%.0f below $10,000", liq))
	case liq <= healthyLiquidityUSD:
		return factor(FactorLiquidity, BucketMedium, fmt.Sprintf("liquidity $%.0f up to $100,000", liq))
	default:
		return factor(FactorLiquidity, BucketLow, fmt.Sprintf("liquidity $%.0f above $100,000", liq))
	}
}

func holdersFactor(h *domain.HolderDistribution) domain.FactorScore {
	if h == nil {
		return unknown(FactorHolders, "holder data unavailable")
	}
	pct := h.Top10ConcentrationPct
	reason := fmt.Sprintf("top-10 hold %.1f%% of a %d-holder sample", pct, h.SampleSize)
	switch {
	case pct > 70:
		return factor(FactorHolders, BucketCritical, reason)
	case pct > 50:
		return factor(FactorHolders, BucketHigh, reason)
	case pct > 30:
		return factor(FactorHolders, BucketMedium, reason)
	default:
		return factor(FactorHolders, BucketLow, reason)
	}
}

func ageFactor(d *domain.TokenDetails, now time.Time) domain.FactorScore {
	if d == nil {
		return unknown(FactorAge, "pair age unavailable")
	}
	age, ok := d.AgeAt(now)
	if !ok {
		return unknown(FactorAge, "pair age unavailable")
	}
	switch {
	case age < time.Hour:
		return factor(FactorAge, BucketCritical, "pair created less than 1 hour ago")
	case age < 24*time.Hour:
		return factor(FactorAge, BucketHigh, "pair created less than 24 hours ago")
	case age <= monthAge:
		return factor(FactorAge, BucketMedium, "pair created within 30 days")
	default:
		return factor(FactorAge, BucketLow, "pair older than 30 days")
	}
}

// redFlags lists findings in fixed severity order.
func redFlags(s Signals, in Input) []string {
	var flags []string
	liq, liqKnown := s.LiquidityUSD()

	if s.MintActive() {
		flags = append(flags, "Mint authority is active: the supply can be inflated at any time")
	}
	if s.Incident != nil && s.Incident.Found {
		flags = append(flags, fmt.Sprintf("Mentioned in the SlowMist incident database (search term %q)", s.Incident.SearchTerm))
	}
	if s.Security != nil && s.Security.FreezeActive() {
		flags = append(flags, "Freeze authority is active: holder accounts can be frozen")
	}
	if s.Holders != nil && s.Holders.Top10ConcentrationPct > whaleTop10Pct {
		flags = append(flags, fmt.Sprintf("Top 10 holders control %.1f%% of the sampled supply (whale dump risk)", s.Holders.Top10ConcentrationPct))
	}
	if s.Audit != nil && !s.Audit.Audited && s.Audit.Status != domain.AuditStatusPending && liqKnown && liq < lowLiquidityUSD {
		flags = append(flags, "No audit on record and liquidity below $10,000")
	}
	if liqKnown && liq < MinLiquidityUSD {
		flags = append(flags, fmt.Sprintf("Liquidity is only $%.0f (below $1,000)", liq))
	}
	if s.Details != nil {
		if age, ok := s.Details.AgeAt(in.Now); ok && age < 24*time.Hour {
			flags = append(flags, "Token pair is less than 24 hours old")
		}
	}
	if s.Transactions != nil && s.Transactions.Suspicious > 0 {
		flags = append(flags, fmt.Sprintf("%d suspicious transaction(s) in recent history", s.Transactions.Suspicious))
	}
	if in.EarlyExit {
		flags = append(flags, "Early exit: critical risk found in the first phase, deep checks skipped")
	}
	return flags
}
