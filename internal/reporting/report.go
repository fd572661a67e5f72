package reporting

import (
	"fmt"
	"strings"
	"time"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/scoring"
)

// Report is the render-ready view of a RiskAssessment.
type Report struct {
	GeneratedAt time.Time
	Address     string
	Title       string // symbol, name or shortened address

	Assessment domain.RiskAssessment
	Metrics    []MetricRow

	// Unavailable lists tools whose data is missing from the report.
	Unavailable []string
}

// MetricRow is one Key Metrics line.
type MetricRow struct {
	Name   string
	Value  string
	Source string // display name, "unavailable" when the signal is missing
}

// HolderReport is the input of RenderHolders.
type HolderReport struct {
	Address  string
	Metadata *domain.TokenMetadata
	Holders  *domain.HolderDistribution
	Pool     *domain.PoolSnapshot
	Failed   []string
}

// sourceNames maps upstream identifiers to display names.
var sourceNames = map[string]string{
	"goplus":      "GoPlus",
	"solscan":     "Solscan",
	"jupiter":     "Jupiter",
	"rugcheck":    "Rugcheck",
	"slowmist":    "SlowMist",
	"certik":      "CertiK",
	"helius":      "Helius",
	"dexscreener": "DexScreener",
	"solana-rpc":  "Solana RPC",
}

// SourceName returns the display name of an upstream.
func SourceName(src string) string {
	if src == "" {
		return "unavailable"
	}
	if n, ok := sourceNames[src]; ok {
		return n
	}
	return src
}

// NewReport builds the view of ra.
func NewReport(ra domain.RiskAssessment) *Report {
	return &Report{
		GeneratedAt: ra.GeneratedAt,
		Address:     ra.Address,
		Title:       title(ra.Symbol, ra.Name, ra.Address),
		Assessment:  ra,
		Metrics:     keyMetrics(ra),
		Unavailable: ra.FailedTools,
	}
}

func title(symbol, name, address string) string {
	switch {
	case symbol != "":
		return symbol
	case name != "":
		return name
	default:
		return ShortAddress(address)
	}
}

// ShortAddress abbreviates a base58 address as abcd...wxyz.
func ShortAddress(a string) string {
	if len(a) <= 12 {
		return a
	}
	return a[:4] + "..." + a[len(a)-4:]
}

func keyMetrics(ra domain.RiskAssessment) []MetricRow {
	src := func(key string) string { return SourceName(ra.Sources[key]) }

	liquidity := MetricRow{Name: "Liquidity", Value: "unknown", Source: src(scoring.SignalDetails)}
	if ra.Details != nil && ra.Details.LiquidityUSD != nil {
		liquidity.Value = USD(*ra.Details.LiquidityUSD)
	}

	holders := MetricRow{Name: "Top 10 Concentration", Value: "unknown", Source: src(scoring.SignalHolders)}
	if ra.Holders != nil {
		holders.Value = fmt.Sprintf("%.2f%% of a %d-holder sample (%s)",
			ra.Holders.Top10ConcentrationPct, ra.Holders.SampleSize, ra.Holders.ConcentrationRisk)
	}

	audit := MetricRow{Name: "Audit Status", Value: "unknown", Source: src(scoring.SignalAudit)}
	if ra.Audit != nil {
		audit.Value = auditLabel(*ra.Audit)
	}

	mint := MetricRow{Name: "Mint Authority", Value: "unknown", Source: src(scoring.SignalSecurity)}
	if ra.Security != nil {
		mint.Value = authorityLabel(ra.Security.MintAuthorityRenounced)
	}

	volume := MetricRow{Name: "24h Volume", Value: "unknown", Source: "unavailable"}
	switch {
	case ra.Trading != nil:
		volume.Value, volume.Source = USD(ra.Trading.Volume24h), src(scoring.SignalTrading)
	case ra.Details != nil:
		volume.Value, volume.Source = USD(ra.Details.Volume24h), src(scoring.SignalDetails)
	}

	incidents := MetricRow{Name: "Security Incidents", Value: "not checked", Source: src(scoring.SignalIncident)}
	if ra.Incident != nil {
		incidents.Value = "None"
		if ra.Incident.Found {
			incidents.Value = "Found"
		}
	}

	return []MetricRow{liquidity, holders, audit, mint, volume, incidents}
}

func auditLabel(a domain.AuditStatus) string {
	switch {
	case a.Status == domain.AuditStatusPending:
		return "Pending"
	case !a.Audited:
		return "Not Audited"
	case a.Score != nil:
		return fmt.Sprintf("Audited (score %.0f)", *a.Score)
	default:
		return "Audited"
	}
}

func authorityLabel(renounced *bool) string {
	switch {
	case renounced == nil:
		return "Unknown"
	case *renounced:
		return "Renounced"
	default:
		return "Active"
	}
}

var bucketNames = map[int]string{
	scoring.BucketCritical: "Critical",
	scoring.BucketHigh:     "High",
	scoring.BucketMedium:   "Medium",
	scoring.BucketLow:      "Low",
}

// Rationale summarizes the factor table in one paragraph.
func Rationale(ra domain.RiskAssessment) string {
	var known, unknown []string
	for _, f := range ra.Factors {
		if f.Known {
			known = append(known, fmt.Sprintf("%s %s (%s)", f.Factor, bucketNames[f.Bucket], f.Reason))
		} else {
			unknown = append(unknown, f.Factor)
		}
	}

	var sb strings.Builder
	if len(known) > 0 {
		fmt.Fprintf(&sb, "Scored %d/10 from %d of %d factors: %s.", ra.Score, len(known), len(ra.Factors), strings.Join(known, "; "))
	} else {
		fmt.Fprintf(&sb, "No scoring factor could be determined, so the score defaults to %d/10.", ra.Score)
	}
	if len(unknown) > 0 {
		fmt.Fprintf(&sb, " Not scored: %s.", strings.Join(unknown, ", "))
	}
	if ra.EarlyExit {
		sb.WriteString(" Deep checks were skipped after a critical first-phase finding.")
	}
	if ra.AllowListed {
		sb.WriteString(" This is an established token, so only market stats were refreshed.")
	}
	sb.WriteString(" ")
	sb.WriteString(Recommendation(ra.Verdict))
	return sb.String()
}

// Recommendation is the one-line advice for a verdict.
func Recommendation(v domain.Verdict) string {
	switch v {
	case domain.VerdictSafe:
		return "No major risk indicators were found; normal caution applies."
	case domain.VerdictCaution:
		return "Some risk indicators are present; size positions carefully and verify independently."
	case domain.VerdictDangerous:
		return "Serious risk indicators are present; avoid unless you fully understand them."
	case domain.VerdictCritical:
		return "Critical risk; do not buy."
	}
	return ""
}
