package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/storage"
)

// ErrAllowListUnavailable is returned by allow-list operations when the agent
// was built without a store.
var ErrAllowListUnavailable = fmt.Errorf("%w: no allow-list store configured", domain.ErrConfiguration)

// EstablishedTokens lists the allow-listed mints ordered by mint.
func (a *Agent) EstablishedTokens(ctx context.Context) ([]domain.EstablishedToken, error) {
	if a.allowList == nil {
		return nil, ErrAllowListUnavailable
	}
	return a.allowList.List(ctx)
}

// EstablishedToken returns the allow-list entry for mint.
func (a *Agent) EstablishedToken(ctx context.Context, mint string) (domain.EstablishedToken, error) {
	if a.allowList == nil {
		return domain.EstablishedToken{}, ErrAllowListUnavailable
	}
	if err := validateAddress(mint); err != nil {
		return domain.EstablishedToken{}, err
	}
	t, err := a.allowList.Get(ctx, mint)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.EstablishedToken{}, fmt.Errorf("%w: %s is not allow-listed", domain.ErrNotFound, mint)
	}
	return t, err
}

// Establish allow-lists mint so full analyses skip holder and incident checks.
// Listing a mint twice is an error.
func (a *Agent) Establish(ctx context.Context, mint, symbol string) (domain.EstablishedToken, error) {
	if a.allowList == nil {
		return domain.EstablishedToken{}, ErrAllowListUnavailable
	}
	if err := validateAddress(mint); err != nil {
		return domain.EstablishedToken{}, err
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		symbol = "UNKNOWN"
	}

	if err := a.allowList.Add(ctx, domain.EstablishedToken{Mint: mint, Symbol: symbol}); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return domain.EstablishedToken{}, fmt.Errorf("%s is already allow-listed: %w", mint, err)
		}
		return domain.EstablishedToken{}, fmt.Errorf("allow-list %s: %w", mint, err)
	}
	a.logger.Info("token allow-listed", zap.String("mint", mint), zap.String("symbol", symbol))
	return a.allowList.Get(ctx, mint)
}
