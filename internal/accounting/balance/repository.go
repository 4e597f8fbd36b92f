package balance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Sums holds the raw debit/credit totals of one ledger over some window.
type Sums struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// Repository reads posted voucher lines. The resolver never writes.
type Repository interface {
	// SumsUntil totals lines dated on or before the given date.
	SumsUntil(ctx context.Context, companyID, ledgerID int64, until time.Time) (Sums, error)
	// SumsBetween totals lines inside the inclusive date window.
	SumsBetween(ctx context.Context, companyID, ledgerID int64, start, end time.Time) (Sums, error)
	// SumsUntilByLedger totals every ledger of the company in one pass,
	// keyed by ledger id. Ledgers without postings are absent.
	SumsUntilByLedger(ctx context.Context, companyID int64, until time.Time) (map[int64]Sums, error)
	// SumsBetweenByLedger is the windowed variant of SumsUntilByLedger.
	SumsBetweenByLedger(ctx context.Context, companyID int64, start, end time.Time) (map[int64]Sums, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const sumsQuery = `
SELECT COALESCE(SUM(vl.amount) FILTER (WHERE vl.side='DEBIT'), 0)::text,
       COALESCE(SUM(vl.amount) FILTER (WHERE vl.side='CREDIT'), 0)::text
FROM voucher_lines vl
JOIN vouchers v ON v.id = vl.voucher_id
WHERE v.company_id = $1 AND vl.ledger_id = $2`

func (r *repository) SumsUntil(ctx context.Context, companyID, ledgerID int64, until time.Time) (Sums, error) {
	row := r.db.QueryRow(ctx, sumsQuery+` AND v.date <= $3`, companyID, ledgerID, until)
	return scanSums(row)
}

func (r *repository) SumsBetween(ctx context.Context, companyID, ledgerID int64, start, end time.Time) (Sums, error) {
	row := r.db.QueryRow(ctx, sumsQuery+` AND v.date >= $3 AND v.date <= $4`, companyID, ledgerID, start, end)
	return scanSums(row)
}

const sumsByLedgerQuery = `
SELECT vl.ledger_id,
       COALESCE(SUM(vl.amount) FILTER (WHERE vl.side='DEBIT'), 0)::text,
       COALESCE(SUM(vl.amount) FILTER (WHERE vl.side='CREDIT'), 0)::text
FROM voucher_lines vl
JOIN vouchers v ON v.id = vl.voucher_id
WHERE v.company_id = $1`

func (r *repository) SumsUntilByLedger(ctx context.Context, companyID int64, until time.Time) (map[int64]Sums, error) {
	rows, err := r.db.Query(ctx, sumsByLedgerQuery+` AND v.date <= $2 GROUP BY vl.ledger_id`, companyID, until)
	if err != nil {
		return nil, err
	}
	return scanSumsByLedger(rows)
}

func (r *repository) SumsBetweenByLedger(ctx context.Context, companyID int64, start, end time.Time) (map[int64]Sums, error) {
	rows, err := r.db.Query(ctx, sumsByLedgerQuery+` AND v.date >= $2 AND v.date <= $3 GROUP BY vl.ledger_id`, companyID, start, end)
	if err != nil {
		return nil, err
	}
	return scanSumsByLedger(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSums(row rowScanner) (Sums, error) {
	var debit, credit string
	if err := row.Scan(&debit, &credit); err != nil {
		return Sums{}, err
	}
	return parseSums(debit, credit)
}

func parseSums(debit, credit string) (Sums, error) {
	d, err := decimal.NewFromString(debit)
	if err != nil {
		return Sums{}, err
	}
	c, err := decimal.NewFromString(credit)
	if err != nil {
		return Sums{}, err
	}
	return Sums{Debit: d, Credit: c}, nil
}

type pgxRows interface {
	rowScanner
	Next() bool
	Close()
	Err() error
}

func scanSumsByLedger(rows pgxRows) (map[int64]Sums, error) {
	defer rows.Close()
	out := make(map[int64]Sums)
	for rows.Next() {
		var ledgerID int64
		var debit, credit string
		if err := rows.Scan(&ledgerID, &debit, &credit); err != nil {
			return nil, err
		}
		sums, err := parseSums(debit, credit)
		if err != nil {
			return nil, err
		}
		out[ledgerID] = sums
	}
	return out, rows.Err()
}
