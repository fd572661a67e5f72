// Package tools holds the registry of upstream data tools. Every tool
// normalizes its upstream into a domain.ToolResult and never returns an error.
package tools

import (
	"context"
	"fmt"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/solana"
)

// Tool names. Planners refer to tools by these identifiers.
const (
	SecurityCheck      = "solana_security_check"
	TokenMetadata      = "solana_token_metadata"
	RugcheckReport     = "rugcheck_report"
	IncidentCheck      = "slowmist_incident_check"
	AuditStatus        = "certik_audit_status"
	HolderDistribution = "helius_holder_distribution"
	LargestHolders     = "solana_largest_holders"
	TransactionHistory = "helius_transaction_history"
	TokenDetails       = "dexscreener_token_details"
	TradingMetrics     = "dexscreener_trading_metrics"
	PoolSnapshot       = "dexscreener_pool_snapshot"
	Trending           = "dexscreener_trending"
	MintInspection     = "solana_mint_inspection"
)

// Args are the arguments accepted by tools.
type Args struct {
	Address     string `json:"address,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
	Limit       int    `json:"limit,omitempty"`
}

// Param describes one tool parameter.
type Param struct {
	Name        string
	Type        string // "string" | "integer"
	Description string
	Required    bool
}

// Descriptor describes a tool to planners.
type Descriptor struct {
	Name        string
	Description string
	Params      []Param
}

// Tool is a single registered data-fetch operation.
type Tool interface {
	Descriptor() Descriptor
	Call(ctx context.Context, args Args) domain.ToolResult
}

// fetchFunc fetches and normalizes one upstream. It returns the payload and
// the name of the upstream that produced it.
type fetchFunc func(ctx context.Context, args Args) (any, string, error)

// funcTool adapts a fetchFunc to Tool.
type funcTool struct {
	desc           Descriptor
	requireAddress bool
	fn             fetchFunc
}

func (t *funcTool) Descriptor() Descriptor { return t.desc }

// Call validates the address and converts any error into a ToolResult.
func (t *funcTool) Call(ctx context.Context, args Args) domain.ToolResult {
	if t.requireAddress {
		if err := solana.ValidatePubkey(args.Address); err != nil {
			return domain.Failure(t.desc.Name, fmt.Sprintf("%v: %v", domain.ErrInvalidAddress, err))
		}
	}

	payload, source, err := t.fn(ctx, args)
	if err != nil {
		return domain.FromError(t.desc.Name, err)
	}
	return domain.Success(t.desc.Name, source, payload)
}

var addressParam = Param{
	Name:        "address",
	Type:        "string",
	Description: "Solana token mint address (base58)",
	Required:    true,
}

func newAddressTool(name, description string, fn fetchFunc, extra ...Param) Tool {
	return &funcTool{
		desc: Descriptor{
			Name:        name,
			Description: description,
			Params:      append([]Param{addressParam}, extra...),
		},
		requireAddress: true,
		fn:             fn,
	}
}
