package agent

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"token-risk-agent/internal/config"
	"token-risk-agent/internal/fetch"
	"token-risk-agent/internal/llm"
	"token-risk-agent/internal/solana"
	"token-risk-agent/internal/storage"
	"token-risk-agent/internal/storage/memory"
	"token-risk-agent/internal/storage/postgres"
	"token-risk-agent/internal/tools"
)

// llmTimeout bounds one chat-completions round trip.
const llmTimeout = 60 * time.Second

// Build assembles an Agent from configuration. The returned cleanup releases
// the Postgres pool when one was opened.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Agent, func(), error) {
	fetcher := fetch.NewClient(
		fetch.WithTimeout(cfg.HTTP.Timeout),
		fetch.WithBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.OpenTimeout),
		fetch.WithLogger(logger),
	)

	var rpc solana.RPCClient
	if cfg.Solana.RPCEndpoint != "" {
		rpc = solana.NewHTTPClient(cfg.Solana.RPCEndpoint, solana.WithTimeout(cfg.HTTP.Timeout))
	}

	registry, err := tools.NewDefaultRegistry(tools.Deps{
		Fetch:     fetcher,
		RPC:       rpc,
		Endpoints: cfg.Endpoints(),
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("build tool registry: %w", err)
	}

	allowList, cleanup, err := buildAllowList(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		return nil, nil, err
	}

	chat := llm.NewPlanner(llm.Config{
		Client:      llm.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, &http.Client{Timeout: llmTimeout}),
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Tools:       registry.Descriptors(),
		Logger:      logger,
	})

	a, err := New(Options{
		Registry:         registry,
		AllowList:        allowList,
		Chat:             chat,
		OnChainFallbacks: rpc != nil,
		Logger:           logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	logger.Info("agent ready",
		zap.Int("tools", len(registry.Descriptors())),
		zap.Bool("onchain_fallbacks", rpc != nil),
		zap.Bool("postgres_allow_list", cfg.Postgres.DSN != ""),
		zap.String("model", cfg.LLM.Model),
	)
	return a, cleanup, nil
}

// buildAllowList opens the Postgres allow-list when dsn is set, else the
// built-in in-memory list.
func buildAllowList(ctx context.Context, dsn string, logger *zap.Logger) (storage.AllowListStore, func(), error) {
	if dsn == "" {
		return memory.NewAllowListStore(storage.DefaultEstablishedTokens()...), func() {}, nil
	}

	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open allow-list store: %w", err)
	}
	applied, err := postgres.Migrate(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate allow-list store: %w", err)
	}
	if len(applied) > 0 {
		logger.Info("allow-list migrations applied", zap.Strings("versions", applied))
	}

	store := postgres.NewAllowListStore(pool)
	if entries, err := store.List(ctx); err == nil {
		logger.Info("allow-list loaded from postgres", zap.Int("entries", len(entries)))
	}
	return store, pool.Close, nil
}
