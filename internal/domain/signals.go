package domain

// Security risk levels reported by the security tool.
const (
	RiskLevelHigh    = "high"
	RiskLevelMedium  = "medium"
	RiskLevelUnknown = "unknown"
)

// SecuritySignal holds authority and liquidity flags. Nil means unknown.
type SecuritySignal struct {
	MintAuthorityRenounced   *bool
	FreezeAuthorityRenounced *bool
	LiquidityType            string   // empty when unknown
	TopHolderRatio           *float64 // owner balance share reported by GoPlus
	RiskLevel                string
	Source                   string
}

// MintActive reports whether mint authority is confirmed active.
func (s SecuritySignal) MintActive() bool {
	return s.MintAuthorityRenounced != nil && !*s.MintAuthorityRenounced
}

// FreezeActive reports whether freeze authority is confirmed active.
func (s SecuritySignal) FreezeActive() bool {
	return s.FreezeAuthorityRenounced != nil && !*s.FreezeAuthorityRenounced
}

// RiskLevelFor classifies mint authority state.
func RiskLevelFor(mintRenounced *bool) string {
	switch {
	case mintRenounced == nil:
		return RiskLevelUnknown
	case !*mintRenounced:
		return RiskLevelHigh
	default:
		return RiskLevelMedium
	}
}

// ConcentrationRisk classifies top-10 holder concentration.
type ConcentrationRisk string

const (
	ConcentrationLow      ConcentrationRisk = "LOW"
	ConcentrationMedium   ConcentrationRisk = "MEDIUM"
	ConcentrationHigh     ConcentrationRisk = "HIGH"
	ConcentrationCritical ConcentrationRisk = "CRITICAL"
)

// ClassifyConcentration maps a top-10 percentage to a risk band.
func ClassifyConcentration(top10Pct float64) ConcentrationRisk {
	switch {
	case top10Pct > 70:
		return ConcentrationCritical
	case top10Pct > 50:
		return ConcentrationHigh
	case top10Pct > 30:
		return ConcentrationMedium
	default:
		return ConcentrationLow
	}
}

// HolderShare is one entry of a holder sample.
type HolderShare struct {
	Owner  string
	Amount float64
	Pct    float64 // share of the sample total
}

// HolderDistribution summarizes a holder sample.
// Percentages are computed over the sample, not total supply.
type HolderDistribution struct {
	TotalHolders          int // holders reported by the source (sample size when unknown)
	SampleSize            int
	Top10ConcentrationPct float64
	TopHolderPct          float64
	ConcentrationRisk     ConcentrationRisk
	TopHolders            []HolderShare
	Source                string
}

// NewHolderDistribution computes concentration over sample amounts.
// Amounts are expected in descending order as returned by the sources.
func NewHolderDistribution(owners []string, amounts []float64, source string) HolderDistribution {
	var total, top10 float64
	for i, a := range amounts {
		total += a
		if i < 10 {
			top10 += a
		}
	}

	dist := HolderDistribution{
		TotalHolders: len(amounts),
		SampleSize:   len(amounts),
		Source:       source,
	}
	if total > 0 {
		dist.Top10ConcentrationPct = top10 / total * 100
		dist.TopHolderPct = amounts[0] / total * 100
	}
	dist.ConcentrationRisk = ClassifyConcentration(dist.Top10ConcentrationPct)

	n := min(len(amounts), 10)
	dist.TopHolders = make([]HolderShare, 0, n)
	for i := 0; i < n; i++ {
		share := HolderShare{Amount: amounts[i]}
		if i < len(owners) {
			share.Owner = owners[i]
		}
		if total > 0 {
			share.Pct = amounts[i] / total * 100
		}
		dist.TopHolders = append(dist.TopHolders, share)
	}
	return dist
}

// TradingMetrics holds short-window price, volume and order flow.
type TradingMetrics struct {
	PriceChange5m  float64
	PriceChange1h  float64
	PriceChange24h float64
	Volume5m       float64
	Volume1h       float64
	Volume24h      float64
	BuyCount       int // buys in the last 5 minutes
	SellCount      int // sells in the last 5 minutes
}

// AuditStatus is the CertiK audit record.
type AuditStatus struct {
	Audited bool
	Status  string   // "audited" | "pending" | "not_audited" | upstream value
	Score   *float64 // security score (nullable)
	Date    *string  // audit date as reported (nullable)
}

// Audit status values.
const (
	AuditStatusNotAudited = "not_audited"
	AuditStatusPending    = "pending"
)

// IncidentRecord is the outcome of an incident-feed search.
type IncidentRecord struct {
	Found      bool
	SourceNote string
	SearchTerm string
}

// TransactionSummary flags unusual recent activity.
type TransactionSummary struct {
	Analyzed       int
	LargeTransfers int
	Suspicious     int
	RiskLevel      string // "LOW" | "HIGH"
}

// PoolSnapshot holds pool-level liquidity and valuation.
type PoolSnapshot struct {
	LiquidityUSD float64
	Volume24h    float64
	FDV          float64
	MarketCap    float64
	PairCount    int
}

// RugcheckSummary reports the risk section found on the rugcheck page.
type RugcheckSummary struct {
	RiskSectionFound bool
	RiskLabel        string // visible heading text of the section
	URL              string
}

// TrendingToken is one entry of the trending list.
type TrendingToken struct {
	Symbol         string
	Address        string
	PriceUSD       float64
	PriceChange24h float64
	Volume24h      float64 // never negative
	LiquidityUSD   float64 // never negative
}
