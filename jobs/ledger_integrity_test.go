package jobs

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/accounting/balance"
	"github.com/meridian-erp/meridian-erp/internal/accounting/coa"
	"github.com/meridian-erp/meridian-erp/internal/accounting/reports"
	"github.com/meridian-erp/meridian-erp/internal/accounting/vouchers"
)

type fakeBooks struct {
	// balances per company
	perCompany map[int64][]balance.LedgerBalance
}

func (f *fakeBooks) CompanyBalancesAsOf(_ context.Context, companyID int64, _ time.Time) ([]balance.LedgerBalance, error) {
	return f.perCompany[companyID], nil
}

func (f *fakeBooks) CompanyMovements(context.Context, int64, time.Time, time.Time) (map[int64]balance.Movement, error) {
	return nil, nil
}

func (f *fakeBooks) List(context.Context, int64, vouchers.ListFilter) ([]vouchers.Voucher, error) {
	return nil, nil
}

func (f *fakeBooks) ListLedgerInfo(context.Context, int64) ([]coa.LedgerInfo, error) {
	return nil, nil
}

type fakeCompanies struct{ ids []int64 }

func (f *fakeCompanies) ListCompanyIDs(context.Context) ([]int64, error) { return f.ids, nil }

type countTelemetry struct{ failures map[int64]int }

func (c *countTelemetry) IntegrityFailure(companyID int64) {
	if c.failures == nil {
		c.failures = map[int64]int{}
	}
	c.failures[companyID]++
}

func ledgerBalance(id int64, name string, kind coa.GroupKind, amount string) balance.LedgerBalance {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	return balance.LedgerBalance{
		Ledger: coa.LedgerInfo{
			ID:         id,
			Name:       name,
			Kind:       kind,
			NormalSide: coa.NormalSideFor(kind),
			IsActive:   true,
		},
		Balance: d,
	}
}

func TestIntegrityScanFlagsUnbalancedCompany(t *testing.T) {
	books := &fakeBooks{perCompany: map[int64][]balance.LedgerBalance{
		1: {
			ledgerBalance(1, "Cash", coa.KindAssets, "500"),
			ledgerBalance(2, "Capital", coa.KindEquity, "500"),
		},
		2: {
			ledgerBalance(3, "Cash", coa.KindAssets, "500"),
			ledgerBalance(4, "Capital", coa.KindEquity, "300"),
		},
	}}
	telemetry := &countTelemetry{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reportSvc := reports.NewService(books, books, books, telemetry, logger)
	scanner := NewIntegrityScanner(&fakeCompanies{ids: []int64{1, 2}}, reportSvc, logger)

	task, err := NewLedgerIntegrityTask(LedgerIntegrityPayload{})
	require.NoError(t, err)
	err = scanner.HandleTask(context.Background(), task)
	require.Error(t, err, "an unbalanced company must fail the scan")
	require.Equal(t, 0, telemetry.failures[1])
	require.Equal(t, 1, telemetry.failures[2])
}

func TestIntegrityScanPassesBalancedBooks(t *testing.T) {
	books := &fakeBooks{perCompany: map[int64][]balance.LedgerBalance{
		1: {
			ledgerBalance(1, "Cash", coa.KindAssets, "500"),
			ledgerBalance(2, "Capital", coa.KindEquity, "500"),
		},
	}}
	telemetry := &countTelemetry{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reportSvc := reports.NewService(books, books, books, telemetry, logger)
	scanner := NewIntegrityScanner(&fakeCompanies{ids: []int64{1}}, reportSvc, logger)

	task, err := NewLedgerIntegrityTask(LedgerIntegrityPayload{})
	require.NoError(t, err)
	require.NoError(t, scanner.HandleTask(context.Background(), task))
	require.Empty(t, telemetry.failures)
}
