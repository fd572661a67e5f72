package scoring

import (
	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/tools"
)

// Signals are the normalized inputs to scoring, merged from one run's results.
// A nil field means the signal is unknown.
type Signals struct {
	Security     *domain.SecuritySignal
	Audit        *domain.AuditStatus
	Details      *domain.TokenDetails
	Holders      *domain.HolderDistribution
	Trading      *domain.TradingMetrics
	Incident     *domain.IncidentRecord
	Transactions *domain.TransactionSummary
	Metadata     *domain.TokenMetadata
	Mint         *domain.MintAccount

	// Sources maps each signal to the upstream that produced it.
	Sources map[string]string

	// FailedTools lists tools that returned not_found or error, in call order.
	FailedTools []string

	// Succeeded counts successful results.
	Succeeded int
}

// Signal keys used in Sources.
const (
	SignalSecurity     = "security"
	SignalAudit        = "audit"
	SignalDetails      = "details"
	SignalHolders      = "holders"
	SignalTrading      = "trading"
	SignalIncident     = "incident"
	SignalTransactions = "transactions"
	SignalMetadata     = "metadata"
)

// Collect merges results into Signals. Primary sources win over fallbacks:
// the security tool over mint inspection, Helius holders over RPC holders.
func Collect(results []domain.ToolResult) Signals {
	s := Signals{Sources: make(map[string]string)}

	var mintSignal *domain.SecuritySignal
	var rpcHolders *domain.HolderDistribution
	var rpcHoldersSource string

	for _, r := range results {
		if !r.OK() {
			s.FailedTools = append(s.FailedTools, r.Tool)
			continue
		}
		s.Succeeded++

		switch r.Tool {
		case tools.SecurityCheck:
			if v, ok := domain.As[domain.SecuritySignal](r); ok {
				s.Security = &v
				s.Sources[SignalSecurity] = r.Source
			}
		case tools.MintInspection:
			if v, ok := domain.As[domain.MintAccount](r); ok {
				s.Mint = &v
				sig := v.SecuritySignal()
				mintSignal = &sig
			}
		case tools.AuditStatus:
			if v, ok := domain.As[domain.AuditStatus](r); ok {
				s.Audit = &v
				s.Sources[SignalAudit] = r.Source
			}
		case tools.TokenDetails:
			if v, ok := domain.As[domain.TokenDetails](r); ok {
				s.Details = &v
				s.Sources[SignalDetails] = r.Source
			}
		case tools.HolderDistribution:
			if v, ok := domain.As[domain.HolderDistribution](r); ok {
				s.Holders = &v
				s.Sources[SignalHolders] = r.Source
			}
		case tools.LargestHolders:
			if v, ok := domain.As[domain.HolderDistribution](r); ok {
				rpcHolders = &v
				rpcHoldersSource = r.Source
			}
		case tools.TradingMetrics:
			if v, ok := domain.As[domain.TradingMetrics](r); ok {
				s.Trading = &v
				s.Sources[SignalTrading] = r.Source
			}
		case tools.IncidentCheck:
			if v, ok := domain.As[domain.IncidentRecord](r); ok {
				s.Incident = &v
				s.Sources[SignalIncident] = r.Source
			}
		case tools.TransactionHistory:
			if v, ok := domain.As[domain.TransactionSummary](r); ok {
				s.Transactions = &v
				s.Sources[SignalTransactions] = r.Source
			}
		case tools.TokenMetadata:
			if v, ok := domain.As[domain.TokenMetadata](r); ok {
				s.Metadata = &v
				s.Sources[SignalMetadata] = r.Source
			}
		}
	}

	if s.Security == nil && mintSignal != nil {
		s.Security = mintSignal
		s.Sources[SignalSecurity] = mintSignal.Source
	}
	if s.Holders == nil && rpcHolders != nil {
		s.Holders = rpcHolders
		s.Sources[SignalHolders] = rpcHoldersSource
	}
	return s
}

// LiquidityUSD returns pool liquidity from the token details, if known.
func (s Signals) LiquidityUSD() (float64, bool) {
	if s.Details == nil || s.Details.LiquidityUSD == nil {
		return 0, false
	}
	return *s.Details.LiquidityUSD, true
}

// MintActive reports whether mint authority is confirmed active.
func (s Signals) MintActive() bool {
	return s.Security != nil && s.Security.MintActive()
}

// Identity returns the best known symbol and name.
func (s Signals) Identity() (symbol, name string) {
	if s.Details != nil {
		symbol, name = s.Details.Symbol, s.Details.Name
	}
	if s.Metadata != nil {
		if symbol == "" {
			symbol = s.Metadata.Symbol
		}
		if name == "" {
			name = s.Metadata.Name
		}
	}
	if s.Mint != nil {
		if symbol == "" {
			symbol = s.Mint.Symbol
		}
		if name == "" {
			name = s.Mint.Name
		}
	}
	return symbol, name
}
