package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-erp/meridian-erp/internal/accounting/balance"
)

// BalanceWarmer pre-resolves a company's balances so the first report of
// the day does not pay the full recomputation cost.
type BalanceWarmer struct {
	resolver *balance.Resolver
	logger   *slog.Logger
}

func NewBalanceWarmer(resolver *balance.Resolver, logger *slog.Logger) *BalanceWarmer {
	return &BalanceWarmer{resolver: resolver, logger: logger}
}

// HandleTask processes TaskBalanceWarmup tasks.
func (w *BalanceWarmer) HandleTask(ctx context.Context, t *asynq.Task) error {
	var payload BalanceWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	asOf := time.Now().UTC()
	balances, err := w.resolver.CompanyBalancesAsOf(ctx, payload.CompanyID, asOf)
	if err != nil {
		return err
	}
	w.logger.Info("balance warmup finished",
		slog.Int64("company_id", payload.CompanyID),
		slog.Int("ledgers", len(balances)))
	return nil
}
