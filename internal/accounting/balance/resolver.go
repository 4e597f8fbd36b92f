package balance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/accounting/coa"
)

// LedgerDirectory resolves ledgers with their inherited kind and normal
// side. Satisfied by the chart-of-accounts service.
type LedgerDirectory interface {
	GetLedgerInfo(ctx context.Context, companyID, id int64) (coa.LedgerInfo, error)
	ListLedgerInfo(ctx context.Context, companyID int64) ([]coa.LedgerInfo, error)
}

// Telemetry counts cache effectiveness for the metrics registry.
type Telemetry interface {
	BalanceCacheMiss()
}

// Movement is the raw debit/credit activity of a ledger over a window.
type Movement struct {
	DebitTotal  decimal.Decimal
	CreditTotal decimal.Decimal
}

// LedgerBalance is one resolved ledger balance, used by every report.
type LedgerBalance struct {
	Ledger  coa.LedgerInfo
	Balance decimal.Decimal
}

// Resolver derives ledger balances from opening balance plus posting
// history. It holds no state of its own: given the same stored data it
// always returns the same result, cache or no cache.
type Resolver struct {
	repo    Repository
	dir     LedgerDirectory
	cache   *Cache
	metrics Telemetry
}

func NewResolver(repo Repository, dir LedgerDirectory, cache *Cache, metrics Telemetry) *Resolver {
	return &Resolver{repo: repo, dir: dir, cache: cache, metrics: metrics}
}

// BalanceAsOf computes opening balance (signed by normal side) plus every
// line up to and including the date: lines on the normal side add, lines
// on the opposite side subtract. Assets and expenses therefore show
// natural debit balances and liabilities, income and equity natural
// credit balances without per-report display logic.
func (r *Resolver) BalanceAsOf(ctx context.Context, companyID, ledgerID int64, date time.Time) (decimal.Decimal, error) {
	info, err := r.dir.GetLedgerInfo(ctx, companyID, ledgerID)
	if err != nil {
		return decimal.Zero, err
	}
	if cached, ok := r.cache.Get(ctx, companyID, ledgerID, date); ok {
		return cached, nil
	}
	if r.metrics != nil {
		r.metrics.BalanceCacheMiss()
	}
	sums, err := r.repo.SumsUntil(ctx, companyID, ledgerID, date)
	if err != nil {
		return decimal.Zero, err
	}
	result := signedBalance(info, sums)
	r.cache.Set(ctx, companyID, ledgerID, date, result)
	return result, nil
}

// MovementBetween returns the filtered debit/credit totals over the
// inclusive window. It is independent of BalanceAsOf.
func (r *Resolver) MovementBetween(ctx context.Context, companyID, ledgerID int64, start, end time.Time) (Movement, error) {
	if _, err := r.dir.GetLedgerInfo(ctx, companyID, ledgerID); err != nil {
		return Movement{}, err
	}
	sums, err := r.repo.SumsBetween(ctx, companyID, ledgerID, start, end)
	if err != nil {
		return Movement{}, err
	}
	return Movement{DebitTotal: sums.Debit, CreditTotal: sums.Credit}, nil
}

// CompanyBalancesAsOf resolves every ledger of the company in one pass,
// applying the same signing rule as BalanceAsOf. This is the primitive
// the report aggregators share, so no two reports can disagree.
func (r *Resolver) CompanyBalancesAsOf(ctx context.Context, companyID int64, date time.Time) ([]LedgerBalance, error) {
	infos, err := r.dir.ListLedgerInfo(ctx, companyID)
	if err != nil {
		return nil, err
	}
	sums, err := r.repo.SumsUntilByLedger(ctx, companyID, date)
	if err != nil {
		return nil, err
	}
	out := make([]LedgerBalance, 0, len(infos))
	for _, info := range infos {
		resolved := signedBalance(info, sums[info.ID])
		// Populate the per-ledger cache too, so a company-wide pass (the
		// reports, the warmup job) primes subsequent single lookups.
		r.cache.Set(ctx, companyID, info.ID, date, resolved)
		out = append(out, LedgerBalance{
			Ledger:  info,
			Balance: resolved,
		})
	}
	return out, nil
}

// CompanyMovements returns per-ledger movements over a window for every
// ledger of the company, for the time-bucketed reports.
func (r *Resolver) CompanyMovements(ctx context.Context, companyID int64, start, end time.Time) (map[int64]Movement, error) {
	sums, err := r.repo.SumsBetweenByLedger(ctx, companyID, start, end)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]Movement, len(sums))
	for id, s := range sums {
		out[id] = Movement{DebitTotal: s.Debit, CreditTotal: s.Credit}
	}
	return out, nil
}

func signedBalance(info coa.LedgerInfo, sums Sums) decimal.Decimal {
	if info.NormalSide == coa.NormalDebit {
		return info.OpeningBalance.Add(sums.Debit).Sub(sums.Credit)
	}
	return info.OpeningBalance.Add(sums.Credit).Sub(sums.Debit)
}
