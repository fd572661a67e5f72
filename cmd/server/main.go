// Package main runs the agent service: the agent card, task send and stream
// endpoints, task lookup, and health, status and metrics.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"token-risk-agent/internal/agent"
	"token-risk-agent/internal/config"
	"token-risk-agent/internal/logging"
	"token-risk-agent/internal/service"
	"token-risk-agent/internal/storage/memory"
)

func main() {
	envFile := flag.String("env-file", ".env", "Path to a .env file")
	host := flag.String("host", "", "Listen host (overrides SERVER_HOST)")
	port := flag.Int("port", 0, "Listen port (overrides SERVER_PORT)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		// Logger is not configured yet.
		logging.Must("info", "console").Fatal("load config", zap.Error(err))
	}
	derivedURL := cfg.Server.AppURL == "http://"+cfg.Addr()
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if derivedURL {
		cfg.Server.AppURL = "http://" + cfg.Addr()
	}

	logger := logging.Must(cfg.Logger.Level, cfg.Logger.Format).Named("server")
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, cleanup, err := agent.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("build agent", zap.Error(err))
	}
	defer cleanup()

	tasks := memory.NewTaskStore(memory.WithMaxTasks(cfg.Server.MaxTasks))
	executor := service.NewExecutor(a, tasks, logger)
	srv := service.NewServer(executor, tasks, service.NewAgentCard(cfg.Server.AppURL), logger)

	done := make(chan struct{})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()

		// A second signal exits immediately.
		select {
		case sig := <-sigCh:
			logger.Warn("received second signal, forcing exit", zap.String("signal", sig.String()))
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Error("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	logger.Info("starting agent service",
		zap.String("addr", cfg.Addr()),
		zap.String("app_url", cfg.Server.AppURL),
	)
	err = srv.ListenAndServe(ctx, cfg.Addr())
	close(done)
	if err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}
