// Command teneo registers the risk agent on the Teneo network and serves the
// agent service alongside it for health, status and metrics.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	teneo "github.com/TeneoProtocolAI/teneo-agent-sdk/pkg/agent"
	"go.uber.org/zap"

	"token-risk-agent/internal/agent"
	"token-risk-agent/internal/config"
	"token-risk-agent/internal/logging"
	"token-risk-agent/internal/service"
	"token-risk-agent/internal/storage/memory"
)

var capabilities = []string{
	service.SkillTokenRisk,
	service.SkillHolders,
	service.SkillTrending,
	"rug-pull-detection",
	"holder-concentration",
	"liquidity-analysis",
}

func main() {
	envFile := flag.String("env-file", ".env", "Path to a .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logging.Must("info", "console").Fatal("load config", zap.Error(err))
	}
	logger := logging.Must(cfg.Logger.Level, cfg.Logger.Format).Named("teneo")
	defer func() { _ = logger.Sync() }()

	if cfg.Teneo.PrivateKey == "" {
		logger.Fatal("PRIVATE_KEY is required to join the Teneo network")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := agent.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("build agent", zap.Error(err))
	}
	defer cleanup()

	card := service.NewAgentCard(cfg.Server.AppURL)

	tc := teneo.DefaultConfig()
	tc.Name = card.Name
	tc.Description = card.Description
	tc.Capabilities = capabilities
	tc.PrivateKey = cfg.Teneo.PrivateKey
	tc.NFTTokenID = cfg.Teneo.NFTTokenID
	tc.OwnerAddress = cfg.Teneo.OwnerAddress
	tc.RateLimitPerMinute = cfg.Teneo.RateLimitPerMinute

	enhanced, err := teneo.NewEnhancedAgent(&teneo.EnhancedAgentConfig{
		Config:       tc,
		AgentHandler: service.NewTeneoHandler(a, logger),
	})
	if err != nil {
		logger.Fatal("create teneo agent", zap.Error(err))
	}

	logger.Info("starting teneo agent", zap.String("name", tc.Name))
	go enhanced.Run()

	tasks := memory.NewTaskStore(memory.WithMaxTasks(cfg.Server.MaxTasks))
	srv := service.NewServer(service.NewExecutor(a, tasks, logger), tasks, card, logger)
	if err := srv.ListenAndServe(ctx, cfg.Addr()); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
