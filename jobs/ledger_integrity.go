package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/meridian-erp/meridian-erp/internal/accounting/reports"
	"github.com/meridian-erp/meridian-erp/internal/accounting/shared"
)

// CompanyLister enumerates the companies that have posted vouchers.
type CompanyLister interface {
	ListCompanyIDs(ctx context.Context) ([]int64, error)
}

// IntegrityScanner runs the trial balance over every company and reports
// any set of books whose debits and credits have drifted apart. The
// posting engine makes this impossible by construction, so a hit here
// means data corruption and pages someone.
type IntegrityScanner struct {
	companies CompanyLister
	reports   *reports.Service
	logger    *slog.Logger
}

func NewIntegrityScanner(companies CompanyLister, reportsSvc *reports.Service, logger *slog.Logger) *IntegrityScanner {
	return &IntegrityScanner{companies: companies, reports: reportsSvc, logger: logger}
}

// HandleTask processes TaskLedgerIntegrity tasks.
func (s *IntegrityScanner) HandleTask(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.CompanyID != 0 {
		return s.scanCompany(ctx, payload.CompanyID)
	}
	ids, err := s.companies.ListCompanyIDs(ctx)
	if err != nil {
		return err
	}
	var failed int
	for _, id := range ids {
		if err := s.scanCompany(ctx, id); err != nil {
			if errors.Is(err, shared.ErrInconsistent) {
				failed++
				continue
			}
			return err
		}
	}
	s.logger.Info("ledger integrity scan finished",
		slog.Int("companies", len(ids)),
		slog.Int("failed", failed))
	if failed > 0 {
		return errors.New("jobs: ledger integrity scan found unbalanced books")
	}
	return nil
}

func (s *IntegrityScanner) scanCompany(ctx context.Context, companyID int64) error {
	// TrialBalance bumps the integrity failure metric on its own.
	_, err := s.reports.TrialBalance(ctx, companyID, time.Now().UTC())
	if err != nil && errors.Is(err, shared.ErrInconsistent) {
		s.logger.Error("company books out of balance",
			slog.Int64("company_id", companyID))
	}
	return err
}
