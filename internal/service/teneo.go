package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"token-risk-agent/internal/agent"
)

// Handler handles one command line. *agent.Agent implements it.
type Handler interface {
	Handle(ctx context.Context, line string) agent.Reply
}

// TeneoHandler adapts the agent to the Teneo network task interface.
type TeneoHandler struct {
	agent  Handler
	logger *zap.Logger
}

// NewTeneoHandler creates a TeneoHandler.
func NewTeneoHandler(a Handler, logger *zap.Logger) *TeneoHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeneoHandler{agent: a, logger: logger.Named("teneo")}
}

// ProcessTask runs one network task. Failures are reported to the requester
// as text, so the returned error is always nil.
func (h *TeneoHandler) ProcessTask(ctx context.Context, task string) (string, error) {
	line := strings.TrimPrefix(strings.TrimSpace(task), "/")
	h.logger.Info("processing task", zap.String("task", line))

	reply := h.agent.Handle(ctx, line)
	if reply.Quit {
		return "Nothing to exit: each task runs on its own. Send help for the command list.", nil
	}
	if reply.Err != nil {
		h.logger.Warn("task failed", zap.String("task", line), zap.Error(reply.Err))
	}
	return reply.Text, nil
}
