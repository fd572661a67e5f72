package tools

import (
	"context"
	"fmt"
	"net/url"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/fetch"
)

const sourceGoPlus = "goplus"

// goplusStatus is the {"status":"1"} shape GoPlus uses for capability flags.
type goplusStatus struct {
	Status flexBool `json:"status"`
}

type goplusToken struct {
	MintRenounced   flexBool      `json:"is_mint_authority_renounced"`
	FreezeRenounced flexBool      `json:"is_freeze_authority_renounced"`
	Mintable        *goplusStatus `json:"mintable"`
	Freezable       *goplusStatus `json:"freezable"`
	LiquidityType   string        `json:"liquidity_type"`
	OwnerRatio      flexFloat     `json:"owner_balance_holder_ratio"`
}

type goplusResponse struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Result  map[string]goplusToken `json:"result"`
}

// GoPlus reads token security flags from the GoPlus security API.
type GoPlus struct {
	client  *fetch.Client
	baseURL string
}

// NewGoPlus creates a GoPlus client.
func NewGoPlus(client *fetch.Client, baseURL string) *GoPlus {
	return &GoPlus{client: client, baseURL: baseURL}
}

// Security returns the authority flags of address.
func (g *GoPlus) Security(ctx context.Context, address string) (domain.SecuritySignal, error) {
	var resp goplusResponse
	u := query(g.baseURL, "/api/v1/token_security", url.Values{
		"chain_id":  {"solana"},
		"addresses": {address},
	})
	if err := g.client.GetJSON(ctx, sourceGoPlus, u, jsonHeader, &resp); err != nil {
		return domain.SecuritySignal{}, err
	}

	tok, ok := resp.Result[address]
	if !ok && len(resp.Result) == 1 {
		for _, v := range resp.Result {
			tok, ok = v, true
		}
	}
	if !ok {
		return domain.SecuritySignal{}, fmt.Errorf("%w: token not in GoPlus database (may be new or unlisted)", domain.ErrNotFound)
	}

	sig := domain.SecuritySignal{
		MintAuthorityRenounced:   renounced(tok.MintRenounced, tok.Mintable),
		FreezeAuthorityRenounced: renounced(tok.FreezeRenounced, tok.Freezable),
		LiquidityType:            tok.LiquidityType,
		TopHolderRatio:           tok.OwnerRatio.Ptr(),
		Source:                   sourceGoPlus,
	}
	sig.RiskLevel = domain.RiskLevelFor(sig.MintAuthorityRenounced)
	return sig, nil
}

// renounced prefers the explicit flag, then inverts the capability status.
func renounced(flag flexBool, capability *goplusStatus) *bool {
	if p := flag.Ptr(); p != nil {
		return p
	}
	if capability == nil || !capability.Status.Valid {
		return nil
	}
	v := !capability.Status.Value
	return &v
}

func goplusTool(g *GoPlus) Tool {
	return newAddressTool(SecurityCheck,
		"Check mint authority, freeze authority, liquidity type and owner balance ratio via GoPlus. Returns not_found for new or unlisted tokens.",
		func(ctx context.Context, args Args) (any, string, error) {
			v, err := g.Security(ctx, args.Address)
			return v, sourceGoPlus, err
		})
}
