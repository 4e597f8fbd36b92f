package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity is the task type for the trial balance integrity scan.
	TaskLedgerIntegrity = "ledger:integrity"
	// TaskBalanceWarmup is the task type for pre-resolving a company's balances.
	TaskBalanceWarmup = "balance:warmup"
)

// LedgerIntegrityPayload scopes the integrity scan. CompanyID zero means
// every company.
type LedgerIntegrityPayload struct {
	CompanyID int64 `json:"company_id"`
}

// NewLedgerIntegrityTask constructs the integrity scan task.
func NewLedgerIntegrityTask(payload LedgerIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}

// BalanceWarmupPayload names the company whose balances should be warmed.
type BalanceWarmupPayload struct {
	CompanyID int64 `json:"company_id"`
}

// NewBalanceWarmupTask constructs the cache warmup task.
func NewBalanceWarmupTask(payload BalanceWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBalanceWarmup, data), nil
}
