package solana

import "context"

// RPCClient defines the Solana RPC HTTP methods used by the token tools.
type RPCClient interface {
	// GetAccountInfo retrieves account info by public key. Returns nil if absent.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)

	// GetTokenLargestAccounts returns the largest token accounts of a mint.
	GetTokenLargestAccounts(ctx context.Context, mint string) ([]TokenAmountAccount, error)

	// GetTokenSupply returns the UI-adjusted total supply of a mint.
	GetTokenSupply(ctx context.Context, mint string) (float64, error)

	// GetSignaturesForAddress retrieves signatures for an address with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)
}

var _ RPCClient = (*HTTPClient)(nil)
