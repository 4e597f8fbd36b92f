package reports

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-erp/meridian-erp/internal/accounting/balance"
	"github.com/meridian-erp/meridian-erp/internal/accounting/coa"
	"github.com/meridian-erp/meridian-erp/internal/accounting/shared"
	"github.com/meridian-erp/meridian-erp/internal/accounting/vouchers"
)

// BalanceSource is the resolver surface the reports need.
type BalanceSource interface {
	CompanyBalancesAsOf(ctx context.Context, companyID int64, date time.Time) ([]balance.LedgerBalance, error)
	CompanyMovements(ctx context.Context, companyID int64, start, end time.Time) (map[int64]balance.Movement, error)
}

// VoucherSource lists posted vouchers with their lines.
type VoucherSource interface {
	List(ctx context.Context, companyID int64, filter vouchers.ListFilter) ([]vouchers.Voucher, error)
}

// LedgerSource resolves the company's ledger directory.
type LedgerSource interface {
	ListLedgerInfo(ctx context.Context, companyID int64) ([]coa.LedgerInfo, error)
}

// Telemetry records integrity failures so they show up on dashboards,
// not only in one API response.
type Telemetry interface {
	IntegrityFailure(companyID int64)
}

// Service builds the read-side reports from resolved balances and the
// voucher log. Every aggregate goes through the same balance resolver,
// so the trial balance, the balance sheet and the cash flow can never
// disagree about a ledger's balance.
type Service struct {
	balances BalanceSource
	vouchers VoucherSource
	ledgers  LedgerSource
	metrics  Telemetry
	logger   *slog.Logger
}

func NewService(balances BalanceSource, vch VoucherSource, ledgers LedgerSource, metrics Telemetry, logger *slog.Logger) *Service {
	return &Service{balances: balances, vouchers: vch, ledgers: ledgers, metrics: metrics, logger: logger}
}

// TrialBalance resolves every ledger as of the date and checks the
// debit/credit totals. An out-of-balance book is reported loudly and the
// error still returns to the caller.
func (s *Service) TrialBalance(ctx context.Context, companyID int64, date time.Time) (TrialBalance, error) {
	balances, err := s.balances.CompanyBalancesAsOf(ctx, companyID, date)
	if err != nil {
		return TrialBalance{}, err
	}
	tb, err := BuildTrialBalance(balances)
	if err != nil {
		if errors.Is(err, shared.ErrInconsistent) {
			s.metrics.IntegrityFailure(companyID)
			s.logger.Error("trial balance out of balance",
				slog.Int64("company_id", companyID),
				slog.Time("as_of", date),
				slog.String("total_debit", tb.TotalDebit.StringFixed(2)),
				slog.String("total_credit", tb.TotalCredit.StringFixed(2)))
		}
		return tb, err
	}
	tb.AsOf = date
	return tb, nil
}

// BalanceSheet groups the same resolved balances by kind and
// classification. A discrepancy is flagged in the payload rather than
// failing the request, so the caller still sees the sections.
func (s *Service) BalanceSheet(ctx context.Context, companyID int64, date time.Time) (BalanceSheet, error) {
	balances, err := s.balances.CompanyBalancesAsOf(ctx, companyID, date)
	if err != nil {
		return BalanceSheet{}, err
	}
	bs := BuildBalanceSheet(balances)
	if !bs.Balanced {
		s.metrics.IntegrityFailure(companyID)
		s.logger.Error("balance sheet discrepancy",
			slog.Int64("company_id", companyID),
			slog.Time("as_of", date))
	}
	return bs, nil
}

// DayBook lists every line posted on the given date.
func (s *Service) DayBook(ctx context.Context, companyID int64, date time.Time) (DayBook, error) {
	list, err := s.vouchers.List(ctx, companyID, vouchers.ListFilter{Month: date.Month(), Year: date.Year()})
	if err != nil {
		return DayBook{}, err
	}
	names, err := s.ledgerNames(ctx, companyID)
	if err != nil {
		return DayBook{}, err
	}
	return BuildDayBook(date, list, names), nil
}

// JournalRegister lists the month's JOURNAL vouchers grouped Dr-then-Cr.
func (s *Service) JournalRegister(ctx context.Context, companyID int64, month time.Month, year int) (JournalRegister, error) {
	list, err := s.vouchers.List(ctx, companyID, vouchers.ListFilter{Type: vouchers.TypeJournal, Month: month, Year: year})
	if err != nil {
		return JournalRegister{}, err
	}
	names, err := s.ledgerNames(ctx, companyID)
	if err != nil {
		return JournalRegister{}, err
	}
	return BuildJournalRegister(month, year, list, names), nil
}

// CashFlow buckets a calendar year of cash-ledger movement by month. The
// twelve windows are independent, so they resolve concurrently.
func (s *Service) CashFlow(ctx context.Context, companyID int64, year int) (CashFlow, error) {
	infos, err := s.ledgers.ListLedgerInfo(ctx, companyID)
	if err != nil {
		return CashFlow{}, err
	}
	cashLedgers := make(map[int64]bool)
	for _, info := range infos {
		if info.IsCash && info.IsActive {
			cashLedgers[info.ID] = true
		}
	}

	cf := CashFlow{Year: year}
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for m := time.January; m <= time.December; m++ {
		month := m
		g.Go(func() error {
			start, end := monthWindow(year, month)
			movements, err := s.balances.CompanyMovements(gctx, companyID, start, end)
			if err != nil {
				return err
			}
			bucket := buildCashFlowBucket(month, movements, cashLedgers)
			mu.Lock()
			cf.Buckets[int(month)-1] = bucket
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CashFlow{}, err
	}

	cf.Inflow, cf.Outflow = decimal.Zero, decimal.Zero
	for _, b := range cf.Buckets {
		cf.Inflow = cf.Inflow.Add(b.Inflow)
		cf.Outflow = cf.Outflow.Add(b.Outflow)
	}
	cf.Net = cf.Inflow.Sub(cf.Outflow)
	return cf, nil
}

// TaxSummary buckets a calendar year of tax-ledger movement by quarter.
func (s *Service) TaxSummary(ctx context.Context, companyID int64, year int) (TaxSummary, error) {
	infos, err := s.ledgers.ListLedgerInfo(ctx, companyID)
	if err != nil {
		return TaxSummary{}, err
	}
	taxLedgers := make(map[int64]bool)
	for _, info := range infos {
		if info.IsTax && info.IsActive {
			taxLedgers[info.ID] = true
		}
	}

	ts := TaxSummary{Year: year}
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	for q := 1; q <= 4; q++ {
		quarter := q
		g.Go(func() error {
			start, end := quarterWindow(year, quarter)
			movements, err := s.balances.CompanyMovements(gctx, companyID, start, end)
			if err != nil {
				return err
			}
			bucket := buildTaxBucket(quarter, movements, taxLedgers)
			mu.Lock()
			ts.Buckets[quarter-1] = bucket
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return TaxSummary{}, err
	}

	ts.Net = decimal.Zero
	for _, b := range ts.Buckets {
		ts.Net = ts.Net.Add(b.Net)
	}
	return ts, nil
}

func (s *Service) ledgerNames(ctx context.Context, companyID int64) (map[int64]string, error) {
	infos, err := s.ledgers.ListLedgerInfo(ctx, companyID)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(infos))
	for _, info := range infos {
		names[info.ID] = info.Name
	}
	return names, nil
}

func monthWindow(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

func quarterWindow(year, quarter int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(3*(quarter-1)+1), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0).Add(-time.Nanosecond)
	return start, end
}
