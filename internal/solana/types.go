package solana

// SignatureInfo from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64
	Err       interface{}
}

// SignaturesOpts defines optional pagination parameters for getSignaturesForAddress.
type SignaturesOpts struct {
	Before string // Start searching backwards from this signature
	Until  string // Search until this signature
	Limit  int    // Maximum number of signatures to return
}

// TokenAmountAccount is one entry of getTokenLargestAccounts.
type TokenAmountAccount struct {
	Address  string
	Amount   float64 // UI amount, adjusted for decimals
	Decimals int
}
