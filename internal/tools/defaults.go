package tools

import (
	"fmt"

	"go.uber.org/zap"
)

// NewDefaultRegistry registers every upstream tool built from deps.
// On-chain tools are skipped when deps.RPC is nil.
func NewDefaultRegistry(deps Deps, logger *zap.Logger) (*Registry, error) {
	if deps.Fetch == nil {
		return nil, fmt.Errorf("tools: fetch client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ep := deps.Endpoints.withDefaults()

	all := []Tool{
		goplusTool(NewGoPlus(deps.Fetch, ep.GoPlus)),
		metadataTool(NewMetadata(deps.Fetch, ep.Solscan, ep.Jupiter, logger.Named("metadata"))),
		rugcheckTool(NewRugcheck(deps.Fetch, ep.Rugcheck)),
		slowmistTool(NewSlowMist(deps.Fetch, ep.SlowMist)),
		certikTool(NewCertiK(deps.Fetch, ep.CertiK)),
	}
	all = append(all, heliusTools(NewHelius(deps.Fetch, ep.Helius, ep.HeliusAPIKey))...)
	all = append(all, dexScreenerTools(NewDexScreener(deps.Fetch, ep.DexScreener))...)
	if deps.RPC != nil {
		all = append(all, onChainTools(NewOnChain(deps.RPC, logger.Named("onchain")))...)
	}

	reg := NewRegistry(logger)
	for _, t := range all {
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
