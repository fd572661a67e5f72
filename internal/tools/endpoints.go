package tools

import (
	"net/http"
	"net/url"
	"strings"

	"token-risk-agent/internal/fetch"
	"token-risk-agent/internal/solana"
)

// Endpoints holds upstream base URLs. Zero fields fall back to defaults.
type Endpoints struct {
	GoPlus       string
	Solscan      string
	Jupiter      string
	Rugcheck     string
	SlowMist     string
	CertiK       string
	Helius       string
	HeliusAPIKey string
	DexScreener  string
}

// DefaultEndpoints returns the public upstream base URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		GoPlus:      "https://api.gopluslabs.io",
		Solscan:     "https://api.solscan.io",
		Jupiter:     "https://tokens.jup.ag",
		Rugcheck:    "https://rugcheck.xyz",
		SlowMist:    "https://hacked.slowmist.io",
		CertiK:      "https://api.certik.io",
		Helius:      "https://rpc.helius.so",
		DexScreener: "https://api.dexscreener.com",
	}
}

// withDefaults fills empty fields from DefaultEndpoints and trims trailing slashes.
func (e Endpoints) withDefaults() Endpoints {
	d := DefaultEndpoints()
	pick := func(v, def string) string {
		if v == "" {
			v = def
		}
		return strings.TrimRight(v, "/")
	}
	return Endpoints{
		GoPlus:       pick(e.GoPlus, d.GoPlus),
		Solscan:      pick(e.Solscan, d.Solscan),
		Jupiter:      pick(e.Jupiter, d.Jupiter),
		Rugcheck:     pick(e.Rugcheck, d.Rugcheck),
		SlowMist:     pick(e.SlowMist, d.SlowMist),
		CertiK:       pick(e.CertiK, d.CertiK),
		Helius:       pick(e.Helius, d.Helius),
		HeliusAPIKey: e.HeliusAPIKey,
		DexScreener:  pick(e.DexScreener, d.DexScreener),
	}
}

// Deps are the shared clients tools are built from.
type Deps struct {
	Fetch     *fetch.Client
	RPC       solana.RPCClient
	Endpoints Endpoints
}

var jsonHeader = http.Header{"Accept": {"application/json"}}

func query(base, path string, params url.Values) string {
	if len(params) == 0 {
		return base + path
	}
	return base + path + "?" + params.Encode()
}
