package tools

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/fetch"
)

const (
	sourceSolscan = "solscan"
	sourceJupiter = "jupiter"
)

type solscanResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Name     string    `json:"name"`
		Symbol   string    `json:"symbol"`
		Decimals int       `json:"decimals"`
		Icon     string    `json:"icon"`
		Supply   flexFloat `json:"supply"`
		Holder   flexFloat `json:"holder"`
	} `json:"data"`
}

type jupiterToken struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	LogoURI  string `json:"logoURI"`
}

// Metadata resolves descriptive token data from Solscan with Jupiter as fallback.
type Metadata struct {
	client     *fetch.Client
	solscanURL string
	jupiterURL string
	logger     *zap.Logger
}

// NewMetadata creates a metadata resolver.
func NewMetadata(client *fetch.Client, solscanURL, jupiterURL string, logger *zap.Logger) *Metadata {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Metadata{
		client:     client,
		solscanURL: solscanURL,
		jupiterURL: jupiterURL,
		logger:     logger,
	}
}

// Lookup returns metadata for address. Any Solscan failure falls through to
// Jupiter. Not found is reported only when both sources report it.
func (m *Metadata) Lookup(ctx context.Context, address string) (domain.TokenMetadata, error) {
	meta, primaryErr := m.solscan(ctx, address)
	if primaryErr == nil {
		return meta, nil
	}
	m.logger.Debug("solscan lookup failed, trying jupiter",
		zap.String("address", address),
		zap.Error(primaryErr),
	)

	meta, fallbackErr := m.jupiter(ctx, address)
	if fallbackErr == nil {
		return meta, nil
	}
	if errors.Is(primaryErr, domain.ErrNotFound) && errors.Is(fallbackErr, domain.ErrNotFound) {
		return domain.TokenMetadata{}, fmt.Errorf("%w: token not found on Solscan or Jupiter", domain.ErrNotFound)
	}
	return domain.TokenMetadata{}, fmt.Errorf("%w: solscan: %v; jupiter: %v", domain.ErrNetwork, primaryErr, fallbackErr)
}

func (m *Metadata) solscan(ctx context.Context, address string) (domain.TokenMetadata, error) {
	var resp solscanResponse
	u := query(m.solscanURL, "/token/meta", url.Values{"tokenAddress": {address}})
	if err := m.client.GetJSON(ctx, sourceSolscan, u, jsonHeader, &resp); err != nil {
		return domain.TokenMetadata{}, err
	}
	if !resp.Success {
		return domain.TokenMetadata{}, fmt.Errorf("%w: token not found on Solscan", domain.ErrNotFound)
	}

	meta := domain.TokenMetadata{
		Mint:     address,
		Name:     resp.Data.Name,
		Symbol:   resp.Data.Symbol,
		Decimals: resp.Data.Decimals,
		Supply:   resp.Data.Supply.Ptr(),
		LogoURI:  resp.Data.Icon,
		Source:   sourceSolscan,
	}
	if resp.Data.Holder.Valid {
		h := int(resp.Data.Holder.Value)
		meta.Holders = &h
	}
	return meta, nil
}

func (m *Metadata) jupiter(ctx context.Context, address string) (domain.TokenMetadata, error) {
	var tok jupiterToken
	if err := m.client.GetJSON(ctx, sourceJupiter, m.jupiterURL+"/token/"+url.PathEscape(address), jsonHeader, &tok); err != nil {
		return domain.TokenMetadata{}, err
	}
	if tok.Name == "" && tok.Symbol == "" {
		return domain.TokenMetadata{}, fmt.Errorf("%w: token not found on Jupiter", domain.ErrNotFound)
	}
	return domain.TokenMetadata{
		Mint:     address,
		Name:     tok.Name,
		Symbol:   tok.Symbol,
		Decimals: tok.Decimals,
		LogoURI:  tok.LogoURI,
		Source:   sourceJupiter,
	}, nil
}

func metadataTool(m *Metadata) Tool {
	return newAddressTool(TokenMetadata,
		"Get token name, symbol, decimals, supply and holder count from Solscan, falling back to Jupiter.",
		func(ctx context.Context, args Args) (any, string, error) {
			v, err := m.Lookup(ctx, args.Address)
			return v, v.Source, err
		})
}
