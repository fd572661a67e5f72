package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/solana"
)

const sourceSolanaRPC = "solana-rpc"

// rpcInvalidParams is the JSON-RPC code returned for non-mint addresses.
const rpcInvalidParams = -32602

// OnChain answers token questions directly from a Solana RPC node.
type OnChain struct {
	rpc    solana.RPCClient
	logger *zap.Logger
}

// NewOnChain creates an on-chain inspector.
func NewOnChain(rpc solana.RPCClient, logger *zap.Logger) *OnChain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OnChain{rpc: rpc, logger: logger}
}

// classifyRPCError maps RPC client failures onto the domain taxonomy.
func classifyRPCError(err error) error {
	var rpcErr *solana.RPCError
	if errors.As(err, &rpcErr) {
		if rpcErr.Code == rpcInvalidParams || strings.Contains(rpcErr.Message, "not a Token mint") {
			return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
		}
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	var decErr *solana.DecodeError
	if errors.As(err, &decErr) {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	// Transport, status and context failures.
	return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
}

// Mint reads and decodes the mint account. Metaplex name and symbol are
// filled in when the metadata account exists.
func (o *OnChain) Mint(ctx context.Context, address string) (domain.MintAccount, error) {
	info, err := o.rpc.GetAccountInfo(ctx, address)
	if err != nil {
		return domain.MintAccount{}, classifyRPCError(err)
	}
	if info == nil {
		return domain.MintAccount{}, fmt.Errorf("%w: account %s does not exist", domain.ErrNotFound, address)
	}
	if !solana.IsTokenProgram(info.Owner) {
		return domain.MintAccount{}, fmt.Errorf("%w: account %s is not a token mint (owner %s)", domain.ErrNotFound, address, info.Owner)
	}

	mint, err := solana.ParseMint(info.Data)
	if err != nil {
		return domain.MintAccount{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	acct := domain.MintAccount{
		Mint:            address,
		MintAuthority:   mint.MintAuthority,
		FreezeAuthority: mint.FreezeAuthority,
		Supply:          mint.Supply,
		Decimals:        mint.Decimals,
		IsInitialized:   mint.IsInitialized,
		ProgramOwner:    info.Owner,
	}
	if md := o.metaplex(ctx, address); md != nil {
		acct.Name, acct.Symbol = md.Name, md.Symbol
	}
	return acct, nil
}

func (o *OnChain) metaplex(ctx context.Context, address string) *solana.MetaplexMetadata {
	pda, err := solana.DeriveMetadataPDA(address)
	if err != nil {
		return nil
	}
	info, err := o.rpc.GetAccountInfo(ctx, pda)
	if err != nil || info == nil {
		if err != nil {
			o.logger.Debug("metaplex lookup failed", zap.String("mint", address), zap.Error(err))
		}
		return nil
	}
	md, err := solana.ParseMetaplexMetadata(info.Data)
	if err != nil {
		o.logger.Debug("metaplex decode failed", zap.String("mint", address), zap.Error(err))
		return nil
	}
	return md
}

// LargestHolders returns concentration over the largest token accounts.
func (o *OnChain) LargestHolders(ctx context.Context, address string) (domain.HolderDistribution, error) {
	accounts, err := o.rpc.GetTokenLargestAccounts(ctx, address)
	if err != nil {
		return domain.HolderDistribution{}, classifyRPCError(err)
	}
	if len(accounts) == 0 {
		return domain.HolderDistribution{}, fmt.Errorf("%w: no token accounts for %s", domain.ErrNotFound, address)
	}

	owners := make([]string, len(accounts))
	amounts := make([]float64, len(accounts))
	for i, a := range accounts {
		owners[i] = a.Address
		amounts[i] = a.Amount
	}
	return domain.NewHolderDistribution(owners, amounts, sourceSolanaRPC), nil
}

func onChainTools(o *OnChain) []Tool {
	return []Tool{
		newAddressTool(MintInspection,
			"Read the SPL mint account from Solana RPC: mint and freeze authority, supply, decimals and Metaplex name.",
			func(ctx context.Context, args Args) (any, string, error) {
				v, err := o.Mint(ctx, args.Address)
				return v, sourceSolanaRPC, err
			}),
		newAddressTool(LargestHolders,
			"Get the largest token accounts from Solana RPC with top-10 concentration. Fallback when Helius holder data is unavailable.",
			func(ctx context.Context, args Args) (any, string, error) {
				v, err := o.LargestHolders(ctx, args.Address)
				return v, sourceSolanaRPC, err
			}),
	}
}
