package domain

import "time"

// Verdict is the qualitative outcome of an analysis.
type Verdict string

const (
	VerdictSafe      Verdict = "SAFE"
	VerdictCaution   Verdict = "CAUTION"
	VerdictDangerous Verdict = "DANGEROUS"
	VerdictCritical  Verdict = "CRITICAL"
)

// String returns the string representation of Verdict.
func (v Verdict) String() string {
	return string(v)
}

// IsValid checks if the verdict is one of the four defined values.
func (v Verdict) IsValid() bool {
	switch v {
	case VerdictSafe, VerdictCaution, VerdictDangerous, VerdictCritical:
		return true
	}
	return false
}

// Level returns the risk level label paired with the verdict.
func (v Verdict) Level() string {
	switch v {
	case VerdictSafe:
		return "LOW"
	case VerdictCaution:
		return "MEDIUM"
	case VerdictDangerous:
		return "HIGH"
	case VerdictCritical:
		return "CRITICAL"
	}
	return "UNKNOWN"
}

// Rank orders verdicts by severity.
func (v Verdict) Rank() int {
	switch v {
	case VerdictSafe:
		return 1
	case VerdictCaution:
		return 2
	case VerdictDangerous:
		return 3
	case VerdictCritical:
		return 4
	}
	return 0
}

// FactorScore is one row of the scoring rubric.
type FactorScore struct {
	Factor string
	Weight float64
	Bucket int    // 10 | 7 | 4 | 1, zero when unknown
	Known  bool
	Reason string // human readable condition that selected the bucket
}

// RiskAssessment is the aggregate result of one analysis.
// It is built fresh per request and never mutated after return.
type RiskAssessment struct {
	Address string
	Symbol  string
	Name    string

	Score    int // 1..10, zero when InsufficientData
	Verdict  Verdict
	RedFlags []string
	Factors  []FactorScore

	InsufficientData bool
	EarlyExit        bool
	AllowListed      bool
	Partial          bool // no scoring factor could be determined

	Security     *SecuritySignal
	Audit        *AuditStatus
	Details      *TokenDetails
	Holders      *HolderDistribution
	Trading      *TradingMetrics
	Incident     *IncidentRecord
	Transactions *TransactionSummary

	// Sources maps each signal to the upstream that produced it.
	Sources map[string]string

	// FailedTools lists tools that returned not_found or error.
	FailedTools []string

	GeneratedAt time.Time
}
