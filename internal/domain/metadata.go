package domain

import "time"

// TokenMetadata represents descriptive token data from Solscan or Jupiter.
type TokenMetadata struct {
	Mint     string   // token mint address
	Name     string   // token name
	Symbol   string   // token symbol
	Decimals int      // token decimals
	Supply   *float64 // total supply (nullable)
	Holders  *int     // holder count reported by the source (nullable)
	LogoURI  string   // icon URL
	Source   string   // "solscan" | "jupiter"
}

// TokenDetails is the primary pair snapshot from DexScreener search.
// Liquidity and pair creation time feed the Liquidity and Age factors.
type TokenDetails struct {
	Name          string
	Symbol        string
	PriceUSD      float64
	LiquidityUSD  *float64   // nil when the pair reports no liquidity
	FDV           float64
	MarketCap     float64
	Volume24h     float64
	PairCreatedAt *time.Time // nil when unknown
	DexID         string
	PairAddress   string
}

// AgeAt returns the pair age at now, or false when creation time is unknown.
func (d TokenDetails) AgeAt(now time.Time) (time.Duration, bool) {
	if d.PairCreatedAt == nil {
		return 0, false
	}
	age := now.Sub(*d.PairCreatedAt)
	if age < 0 {
		age = 0
	}
	return age, true
}

// MintAccount is the decoded SPL mint account with optional Metaplex metadata.
type MintAccount struct {
	Mint            string
	MintAuthority   *string // nil when renounced
	FreezeAuthority *string // nil when renounced
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	ProgramOwner    string // token program that owns the account
	Name            string // from Metaplex metadata, empty if absent
	Symbol          string // from Metaplex metadata, empty if absent
}

// SecuritySignal derives an authority signal from the on-chain account.
func (m MintAccount) SecuritySignal() SecuritySignal {
	mintRenounced := m.MintAuthority == nil
	freezeRenounced := m.FreezeAuthority == nil
	return SecuritySignal{
		MintAuthorityRenounced:   &mintRenounced,
		FreezeAuthorityRenounced: &freezeRenounced,
		RiskLevel:                RiskLevelFor(&mintRenounced),
		Source:                   "solana-rpc",
	}
}

// EstablishedToken is an allow-list entry.
type EstablishedToken struct {
	Mint    string
	Symbol  string
	AddedAt int64 // record creation timestamp (ms)
}
