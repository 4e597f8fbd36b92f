package vouchers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/accounting/coa"
	"github.com/meridian-erp/meridian-erp/internal/accounting/shared"
	"github.com/meridian-erp/meridian-erp/internal/platform/db"
)

// ListFilter narrows voucher listings.
type ListFilter struct {
	Type  VoucherType
	Month time.Month
	Year  int
}

// Repository encapsulates DB operations for vouchers. Writes happen only
// through WithTx so a voucher and its lines commit as one unit.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetVoucherWithLines(ctx context.Context, companyID, id int64) (Voucher, error)
	List(ctx context.Context, companyID int64, filter ListFilter) ([]Voucher, error)
}

// TxRepository exposes the methods available inside a posting transaction.
type TxRepository interface {
	// LockCompany serializes postings per company for number allocation.
	LockCompany(ctx context.Context, companyID int64) error
	GetLedgerInfos(ctx context.Context, companyID int64, ids []int64) (map[int64]coa.LedgerInfo, error)
	NextVoucherNumber(ctx context.Context, companyID int64) (int64, error)
	InsertVoucher(ctx context.Context, v Voucher) (Voucher, error)
	InsertLines(ctx context.Context, voucherID int64, lines []LineInput) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

const voucherColumns = `id, company_id, number, type, date, narration, COALESCE(counterparty,''), source_ref, posted_at, created_at`

func (r *repository) GetVoucherWithLines(ctx context.Context, companyID, id int64) (Voucher, error) {
	var v Voucher
	err := r.db.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id=$1 AND company_id=$2`, id, companyID).
		Scan(&v.ID, &v.CompanyID, &v.Number, &v.Type, &v.Date, &v.Narration, &v.Counterparty, &v.SourceRef, &v.PostedAt, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voucher{}, shared.ErrNotFound
		}
		return Voucher{}, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, voucher_id, ledger_id, side, amount::text, COALESCE(narration,'')
FROM voucher_lines WHERE voucher_id=$1 ORDER BY id ASC`, id)
	if err != nil {
		return Voucher{}, err
	}
	defer rows.Close()
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return Voucher{}, err
		}
		v.Lines = append(v.Lines, line)
	}
	return v, rows.Err()
}

func (r *repository) List(ctx context.Context, companyID int64, filter ListFilter) ([]Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE company_id=$1`
	args := []any{companyID}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += ` AND type=$2`
	}
	if filter.Year != 0 {
		args = append(args, filter.Year)
		query += ` AND EXTRACT(YEAR FROM date)=$` + strconv.Itoa(len(args))
	}
	if filter.Month != 0 {
		args = append(args, int(filter.Month))
		query += ` AND EXTRACT(MONTH FROM date)=$` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY number ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Voucher
	ids := make([]int64, 0)
	for rows.Next() {
		var v Voucher
		if err := rows.Scan(&v.ID, &v.CompanyID, &v.Number, &v.Type, &v.Date, &v.Narration, &v.Counterparty, &v.SourceRef, &v.PostedAt, &v.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, v)
		ids = append(ids, v.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	lineRows, err := r.db.Query(ctx, `SELECT id, voucher_id, ledger_id, side, amount::text, COALESCE(narration,'')
FROM voucher_lines WHERE voucher_id = ANY($1) ORDER BY voucher_id, id ASC`, ids)
	if err != nil {
		return nil, err
	}
	defer lineRows.Close()
	byID := make(map[int64]*Voucher, len(list))
	for i := range list {
		byID[list[i].ID] = &list[i]
	}
	for lineRows.Next() {
		line, err := scanLine(lineRows)
		if err != nil {
			return nil, err
		}
		if v, ok := byID[line.VoucherID]; ok {
			v.Lines = append(v.Lines, line)
		}
	}
	return list, lineRows.Err()
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) LockCompany(ctx context.Context, companyID int64) error {
	_, err := r.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, companyID)
	return err
}

func (r *txRepository) GetLedgerInfos(ctx context.Context, companyID int64, ids []int64) (map[int64]coa.LedgerInfo, error) {
	rows, err := r.tx.Query(ctx, `
SELECT l.id, l.company_id, l.name,
       COALESCE(g.kind, pg.kind) AS kind,
       COALESCE(sg.classification, 'NONE') AS classification,
       l.opening_balance::text, l.is_cash, l.is_tax, l.is_active
FROM ledgers l
LEFT JOIN account_groups g ON g.id = l.group_id
LEFT JOIN account_subgroups sg ON sg.id = l.subgroup_id
LEFT JOIN account_groups pg ON pg.id = sg.group_id
WHERE l.company_id=$1 AND l.id = ANY($2)`, companyID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	infos := make(map[int64]coa.LedgerInfo, len(ids))
	for rows.Next() {
		var info coa.LedgerInfo
		var kind, class, opening string
		if err := rows.Scan(&info.ID, &info.CompanyID, &info.Name, &kind, &class, &opening, &info.IsCash, &info.IsTax, &info.IsActive); err != nil {
			return nil, err
		}
		info.Kind = coa.GroupKind(kind)
		info.Classification = coa.Classification(class)
		info.NormalSide = coa.NormalSideFor(info.Kind)
		if info.OpeningBalance, err = decimal.NewFromString(opening); err != nil {
			return nil, err
		}
		infos[info.ID] = info
	}
	return infos, rows.Err()
}

func (r *txRepository) NextVoucherNumber(ctx context.Context, companyID int64) (int64, error) {
	var number int64
	err := r.tx.QueryRow(ctx, `SELECT COALESCE(MAX(number),0)+1 FROM vouchers WHERE company_id=$1`, companyID).Scan(&number)
	return number, err
}

func (r *txRepository) InsertVoucher(ctx context.Context, v Voucher) (Voucher, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO vouchers (company_id, number, type, date, narration, counterparty, source_ref)
VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7) RETURNING id, posted_at, created_at`,
		v.CompanyID, v.Number, v.Type, v.Date, v.Narration, v.Counterparty, v.SourceRef)
	if err := row.Scan(&v.ID, &v.PostedAt, &v.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "uq_vouchers_source_ref" {
				return Voucher{}, shared.ErrSourceAlreadyLinked
			}
			return Voucher{}, shared.ErrDuplicateName
		}
		return Voucher{}, err
	}
	return v, nil
}

func (r *txRepository) InsertLines(ctx context.Context, voucherID int64, lines []LineInput) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO voucher_lines (voucher_id, ledger_id, side, amount, narration)
VALUES ($1,$2,$3,$4,NULLIF($5,''))`, voucherID, line.LedgerID, line.Side, line.Amount.StringFixed(2), line.Narration); err != nil {
			return err
		}
	}
	return nil
}

type lineScanner interface {
	Scan(dest ...any) error
}

func scanLine(row lineScanner) (VoucherLine, error) {
	var line VoucherLine
	var amount string
	if err := row.Scan(&line.ID, &line.VoucherID, &line.LedgerID, &line.Side, &amount, &line.Narration); err != nil {
		return VoucherLine{}, err
	}
	var err error
	line.Amount, err = decimal.NewFromString(amount)
	return line, err
}

