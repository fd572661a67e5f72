package tools

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/fetch"
)

const (
	sourceDexScreener = "dexscreener"
	maxTrending       = 10
)

// dexPair is the subset of a DexScreener pair the tools read.
type dexPair struct {
	ChainID     string `json:"chainId"`
	DexID       string `json:"dexId"`
	PairAddress string `json:"pairAddress"`
	BaseToken   struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUSD flexFloat `json:"priceUsd"`
	Txns     struct {
		M5 struct {
			Buys  int `json:"buys"`
			Sells int `json:"sells"`
		} `json:"m5"`
	} `json:"txns"`
	Volume struct {
		M5  flexFloat `json:"m5"`
		H1  flexFloat `json:"h1"`
		H24 flexFloat `json:"h24"`
	} `json:"volume"`
	PriceChange struct {
		M5  flexFloat `json:"m5"`
		H1  flexFloat `json:"h1"`
		H24 flexFloat `json:"h24"`
	} `json:"priceChange"`
	Liquidity *struct {
		USD flexFloat `json:"usd"`
	} `json:"liquidity"`
	FDV           flexFloat `json:"fdv"`
	MarketCap     flexFloat `json:"marketCap"`
	PairCreatedAt flexFloat `json:"pairCreatedAt"` // unix ms
}

type dexResponse struct {
	Pairs []dexPair `json:"pairs"`
}

func (p dexPair) liquidityUSD() *float64 {
	if p.Liquidity == nil {
		return nil
	}
	return p.Liquidity.USD.Ptr()
}

// DexScreener reads pair data from the DexScreener public API.
type DexScreener struct {
	client  *fetch.Client
	baseURL string
}

// NewDexScreener creates a DexScreener client.
func NewDexScreener(client *fetch.Client, baseURL string) *DexScreener {
	return &DexScreener{client: client, baseURL: baseURL}
}

// pairs searches pairs for address and returns them.
func (d *DexScreener) pairs(ctx context.Context, address string) ([]dexPair, error) {
	var resp dexResponse
	u := query(d.baseURL, "/latest/dex/search", url.Values{"q": {address}})
	if err := d.client.GetJSON(ctx, sourceDexScreener, u, jsonHeader, &resp); err != nil {
		return nil, err
	}
	if len(resp.Pairs) == 0 {
		return nil, fmt.Errorf("%w: no trading pairs for %s", domain.ErrNotFound, address)
	}
	return resp.Pairs, nil
}

// primaryPair picks the pair whose base token is address, then the first
// Solana pair, then the first pair.
func primaryPair(pairs []dexPair, address string) dexPair {
	for _, p := range pairs {
		if p.BaseToken.Address == address {
			return p
		}
	}
	for _, p := range pairs {
		if p.ChainID == "solana" {
			return p
		}
	}
	return pairs[0]
}

// Details returns the primary pair snapshot.
func (d *DexScreener) Details(ctx context.Context, address string) (domain.TokenDetails, error) {
	pairs, err := d.pairs(ctx, address)
	if err != nil {
		return domain.TokenDetails{}, err
	}
	p := primaryPair(pairs, address)

	details := domain.TokenDetails{
		Name:         p.BaseToken.Name,
		Symbol:       p.BaseToken.Symbol,
		PriceUSD:     p.PriceUSD.Value,
		LiquidityUSD: p.liquidityUSD(),
		FDV:          p.FDV.Value,
		MarketCap:    p.MarketCap.Value,
		Volume24h:    p.Volume.H24.Value,
		DexID:        p.DexID,
		PairAddress:  p.PairAddress,
	}
	if p.PairCreatedAt.Valid && p.PairCreatedAt.Value > 0 {
		created := time.UnixMilli(int64(p.PairCreatedAt.Value)).UTC()
		details.PairCreatedAt = &created
	}
	return details, nil
}

// TradingMetrics returns short-window price, volume and order flow.
func (d *DexScreener) TradingMetrics(ctx context.Context, address string) (domain.TradingMetrics, error) {
	pairs, err := d.pairs(ctx, address)
	if err != nil {
		return domain.TradingMetrics{}, err
	}
	p := primaryPair(pairs, address)

	return domain.TradingMetrics{
		PriceChange5m:  p.PriceChange.M5.Value,
		PriceChange1h:  p.PriceChange.H1.Value,
		PriceChange24h: p.PriceChange.H24.Value,
		Volume5m:       p.Volume.M5.Value,
		Volume1h:       p.Volume.H1.Value,
		Volume24h:      p.Volume.H24.Value,
		BuyCount:       p.Txns.M5.Buys,
		SellCount:      p.Txns.M5.Sells,
	}, nil
}

// PoolSnapshot returns liquidity and valuation of the primary pair.
func (d *DexScreener) PoolSnapshot(ctx context.Context, address string) (domain.PoolSnapshot, error) {
	pairs, err := d.pairs(ctx, address)
	if err != nil {
		return domain.PoolSnapshot{}, err
	}
	p := primaryPair(pairs, address)

	snap := domain.PoolSnapshot{
		Volume24h: p.Volume.H24.Value,
		FDV:       p.FDV.Value,
		MarketCap: p.MarketCap.Value,
		PairCount: len(pairs),
	}
	if liq := p.liquidityUSD(); liq != nil {
		snap.LiquidityUSD = *liq
	}
	return snap, nil
}

// Trending returns at most ten Solana pairs.
func (d *DexScreener) Trending(ctx context.Context) ([]domain.TrendingToken, error) {
	var resp dexResponse
	u := d.baseURL + "/latest/dex/tokens/solana"
	if err := d.client.GetJSON(ctx, sourceDexScreener, u, jsonHeader, &resp); err != nil {
		return nil, err
	}

	n := min(len(resp.Pairs), maxTrending)
	out := make([]domain.TrendingToken, 0, n)
	for _, p := range resp.Pairs[:n] {
		tok := domain.TrendingToken{
			Symbol:         p.BaseToken.Symbol,
			Address:        p.BaseToken.Address,
			PriceUSD:       p.PriceUSD.Value,
			PriceChange24h: p.PriceChange.H24.Value,
			Volume24h:      max(p.Volume.H24.Value, 0),
		}
		if liq := p.liquidityUSD(); liq != nil {
			tok.LiquidityUSD = max(*liq, 0)
		}
		out = append(out, tok)
	}
	return out, nil
}

func dexScreenerTools(d *DexScreener) []Tool {
	trending := &funcTool{
		desc: Descriptor{
			Name:        Trending,
			Description: "List up to 10 trending Solana tokens with price, 24h change, volume and liquidity. Takes no arguments.",
		},
		fn: func(ctx context.Context, _ Args) (any, string, error) {
			v, err := d.Trending(ctx)
			return v, sourceDexScreener, err
		},
	}

	return []Tool{
		newAddressTool(TokenDetails,
			"Get token name, symbol, USD price, pool liquidity, FDV, market cap and pair creation time from DexScreener.",
			func(ctx context.Context, args Args) (any, string, error) {
				v, err := d.Details(ctx, args.Address)
				return v, sourceDexScreener, err
			}),
		newAddressTool(TradingMetrics,
			"Get 5m/1h/24h price change and volume plus 5m buy and sell counts from DexScreener.",
			func(ctx context.Context, args Args) (any, string, error) {
				v, err := d.TradingMetrics(ctx, args.Address)
				return v, sourceDexScreener, err
			}),
		newAddressTool(PoolSnapshot,
			"Get pool liquidity, 24h volume, FDV, market cap and number of pairs from DexScreener.",
			func(ctx context.Context, args Args) (any, string, error) {
				v, err := d.PoolSnapshot(ctx, args.Address)
				return v, sourceDexScreener, err
			}),
		trending,
	}
}
