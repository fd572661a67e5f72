package storage

import "token-risk-agent/internal/domain"

// Well-known mints seeded into every allow-list.
const (
	MintSOL  = "So11111111111111111111111111111111111111112"
	MintUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	MintUSDT = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	MintBONK = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
)

// DefaultEstablishedTokens returns the built-in allow-list.
func DefaultEstablishedTokens() []domain.EstablishedToken {
	return []domain.EstablishedToken{
		{Mint: MintSOL, Symbol: "SOL"},
		{Mint: MintUSDC, Symbol: "USDC"},
		{Mint: MintUSDT, Symbol: "USDT"},
		{Mint: MintBONK, Symbol: "BONK"},
	}
}
