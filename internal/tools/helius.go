package tools

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/fetch"
)

const (
	sourceHelius = "helius"

	defaultHolderLimit      = 20
	defaultTransactionLimit = 10
	analyzedTransactions    = 5
	largeTransferAmount     = 1_000_000
	maxLargeTransfers       = 3
)

var limitParam = Param{
	Name:        "limit",
	Type:        "integer",
	Description: "Maximum number of records to fetch",
}

type heliusHolder struct {
	Owner  string    `json:"owner"`
	Amount flexFloat `json:"amount"`
}

type heliusTransaction struct {
	Type   string    `json:"type"`
	Amount flexFloat `json:"amount"`
}

// Helius reads holder samples and transaction history from Helius.
type Helius struct {
	client  *fetch.Client
	baseURL string
	apiKey  string
}

// NewHelius creates a Helius client. apiKey may be empty.
func NewHelius(client *fetch.Client, baseURL, apiKey string) *Helius {
	return &Helius{client: client, baseURL: baseURL, apiKey: apiKey}
}

func (h *Helius) params(v url.Values) url.Values {
	if h.apiKey != "" {
		v.Set("api-key", h.apiKey)
	}
	return v
}

// Holders returns concentration over the top holder sample.
func (h *Helius) Holders(ctx context.Context, address string, limit int) (domain.HolderDistribution, error) {
	if limit <= 0 {
		limit = defaultHolderLimit
	}
	var resp struct {
		Holders []heliusHolder `json:"holders"`
	}
	u := query(h.baseURL, "/v0/token-metadata/holders", h.params(url.Values{
		"mint":  {address},
		"limit": {strconv.Itoa(limit)},
	}))
	if err := h.client.GetJSON(ctx, sourceHelius, u, jsonHeader, &resp); err != nil {
		return domain.HolderDistribution{}, err
	}
	if len(resp.Holders) == 0 {
		return domain.HolderDistribution{}, fmt.Errorf("%w: no holder data available", domain.ErrNotFound)
	}

	owners := make([]string, len(resp.Holders))
	amounts := make([]float64, len(resp.Holders))
	for i, hd := range resp.Holders {
		owners[i] = hd.Owner
		amounts[i] = hd.Amount.Value
	}
	return domain.NewHolderDistribution(owners, amounts, sourceHelius), nil
}

// Transactions summarizes recent transfers, flagging large and spam-typed ones.
func (h *Helius) Transactions(ctx context.Context, address string, limit int) (domain.TransactionSummary, error) {
	if limit <= 0 {
		limit = defaultTransactionLimit
	}
	u := query(h.baseURL, "/v0/addresses/"+url.PathEscape(address)+"/transactions", h.params(url.Values{
		"limit": {strconv.Itoa(limit)},
	}))
	body, err := h.client.Get(ctx, sourceHelius, u, jsonHeader)
	if err != nil {
		return domain.TransactionSummary{}, err
	}

	var txs []heliusTransaction
	if err := decodeListOrWrapped(body, "transactions", &txs); err != nil {
		return domain.TransactionSummary{}, fmt.Errorf("%w: %s: %v", domain.ErrMalformedResponse, sourceHelius, err)
	}
	return summarizeTransactions(txs), nil
}

func summarizeTransactions(txs []heliusTransaction) domain.TransactionSummary {
	sum := domain.TransactionSummary{Analyzed: len(txs), RiskLevel: "LOW"}
	for _, tx := range txs[:min(len(txs), analyzedTransactions)] {
		if tx.Amount.Value > largeTransferAmount {
			sum.LargeTransfers++
		}
		switch strings.ToUpper(tx.Type) {
		case "SPAM", "SCAM":
			sum.Suspicious++
		}
	}
	if sum.LargeTransfers > maxLargeTransfers || sum.Suspicious > 0 {
		sum.RiskLevel = "HIGH"
	}
	return sum
}

func heliusTools(h *Helius) []Tool {
	return []Tool{
		newAddressTool(HolderDistribution,
			"Get the top holder sample from Helius with top-10 and top-holder concentration and a risk band.",
			func(ctx context.Context, args Args) (any, string, error) {
				v, err := h.Holders(ctx, args.Address, args.Limit)
				return v, sourceHelius, err
			},
			limitParam),
		newAddressTool(TransactionHistory,
			"Summarize recent token transactions from Helius, counting large transfers and spam or scam typed transactions.",
			func(ctx context.Context, args Args) (any, string, error) {
				v, err := h.Transactions(ctx, args.Address, args.Limit)
				return v, sourceHelius, err
			},
			limitParam),
	}
}
