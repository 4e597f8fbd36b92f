package coa

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/accounting/shared"
)

// Repository encapsulates DB operations for the chart of accounts.
type Repository interface {
	CreateGroup(ctx context.Context, group Group) (Group, error)
	GetGroup(ctx context.Context, companyID, id int64) (Group, error)
	UpdateGroup(ctx context.Context, group Group) error
	GroupHasPostings(ctx context.Context, companyID, groupID int64) (bool, error)

	CreateSubGroup(ctx context.Context, sub SubGroup) (SubGroup, error)
	GetSubGroup(ctx context.Context, companyID, id int64) (SubGroup, error)

	CreateLedger(ctx context.Context, ledger Ledger) (Ledger, error)
	GetLedger(ctx context.Context, companyID, id int64) (Ledger, error)
	GetLedgerInfo(ctx context.Context, companyID, id int64) (LedgerInfo, error)
	ListLedgerInfo(ctx context.Context, companyID int64) ([]LedgerInfo, error)
	LedgerHasPostings(ctx context.Context, companyID, ledgerID int64) (bool, error)
	DeactivateLedger(ctx context.Context, companyID, id int64) error

	ListGroups(ctx context.Context, companyID int64) ([]Group, error)
	ListSubGroups(ctx context.Context, companyID int64) ([]SubGroup, error)
	ListLedgers(ctx context.Context, companyID int64) ([]Ledger, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const ledgerInfoQuery = `
SELECT l.id, l.company_id, l.name,
       COALESCE(g.kind, pg.kind) AS kind,
       COALESCE(sg.classification, 'NONE') AS classification,
       l.opening_balance::text, l.is_cash, l.is_tax, l.is_active
FROM ledgers l
LEFT JOIN account_groups g ON g.id = l.group_id
LEFT JOIN account_subgroups sg ON sg.id = l.subgroup_id
LEFT JOIN account_groups pg ON pg.id = sg.group_id`

func (r *repository) CreateGroup(ctx context.Context, group Group) (Group, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO account_groups (company_id, name, kind)
VALUES ($1,$2,$3) RETURNING id, created_at, updated_at`, group.CompanyID, group.Name, group.Kind)
	if err := row.Scan(&group.ID, &group.CreatedAt, &group.UpdatedAt); err != nil {
		return Group{}, mapConstraint(err)
	}
	return group, nil
}

func (r *repository) GetGroup(ctx context.Context, companyID, id int64) (Group, error) {
	var g Group
	err := r.db.QueryRow(ctx, `SELECT id, company_id, name, kind, created_at, updated_at
FROM account_groups WHERE id=$1 AND company_id=$2`, id, companyID).
		Scan(&g.ID, &g.CompanyID, &g.Name, &g.Kind, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Group{}, shared.ErrNotFound
		}
		return Group{}, err
	}
	return g, nil
}

func (r *repository) UpdateGroup(ctx context.Context, group Group) error {
	cmd, err := r.db.Exec(ctx, `UPDATE account_groups SET name=$3, kind=$4, updated_at=NOW()
WHERE id=$1 AND company_id=$2`, group.ID, group.CompanyID, group.Name, group.Kind)
	if err != nil {
		return mapConstraint(err)
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) GroupHasPostings(ctx context.Context, companyID, groupID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM voucher_lines vl
JOIN ledgers l ON l.id = vl.ledger_id
LEFT JOIN account_subgroups sg ON sg.id = l.subgroup_id
WHERE l.company_id = $1 AND (l.group_id = $2 OR sg.group_id = $2))`, companyID, groupID).Scan(&exists)
	return exists, err
}

func (r *repository) CreateSubGroup(ctx context.Context, sub SubGroup) (SubGroup, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO account_subgroups (company_id, group_id, name, classification)
VALUES ($1,$2,$3,$4) RETURNING id, created_at, updated_at`, sub.CompanyID, sub.GroupID, sub.Name, sub.Classification)
	if err := row.Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return SubGroup{}, mapConstraint(err)
	}
	return sub, nil
}

func (r *repository) GetSubGroup(ctx context.Context, companyID, id int64) (SubGroup, error) {
	var sg SubGroup
	err := r.db.QueryRow(ctx, `SELECT id, company_id, group_id, name, classification, created_at, updated_at
FROM account_subgroups WHERE id=$1 AND company_id=$2`, id, companyID).
		Scan(&sg.ID, &sg.CompanyID, &sg.GroupID, &sg.Name, &sg.Classification, &sg.CreatedAt, &sg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SubGroup{}, shared.ErrNotFound
		}
		return SubGroup{}, err
	}
	return sg, nil
}

func (r *repository) CreateLedger(ctx context.Context, ledger Ledger) (Ledger, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO ledgers (company_id, group_id, subgroup_id, name, opening_balance, is_cash, is_tax, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,TRUE) RETURNING id, created_at, updated_at`,
		ledger.CompanyID, ledger.GroupID, ledger.SubGroupID, ledger.Name,
		ledger.OpeningBalance.StringFixed(2), ledger.IsCash, ledger.IsTax)
	if err := row.Scan(&ledger.ID, &ledger.CreatedAt, &ledger.UpdatedAt); err != nil {
		return Ledger{}, mapConstraint(err)
	}
	ledger.IsActive = true
	return ledger, nil
}

func (r *repository) GetLedger(ctx context.Context, companyID, id int64) (Ledger, error) {
	var l Ledger
	var opening string
	err := r.db.QueryRow(ctx, `SELECT id, company_id, group_id, subgroup_id, name, opening_balance::text, is_cash, is_tax, is_active, created_at, updated_at
FROM ledgers WHERE id=$1 AND company_id=$2`, id, companyID).
		Scan(&l.ID, &l.CompanyID, &l.GroupID, &l.SubGroupID, &l.Name, &opening, &l.IsCash, &l.IsTax, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Ledger{}, shared.ErrNotFound
		}
		return Ledger{}, err
	}
	l.OpeningBalance, err = decimal.NewFromString(opening)
	if err != nil {
		return Ledger{}, err
	}
	return l, nil
}

func (r *repository) GetLedgerInfo(ctx context.Context, companyID, id int64) (LedgerInfo, error) {
	row := r.db.QueryRow(ctx, ledgerInfoQuery+` WHERE l.id=$1 AND l.company_id=$2`, id, companyID)
	info, err := scanLedgerInfo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LedgerInfo{}, shared.ErrNotFound
		}
		return LedgerInfo{}, err
	}
	return info, nil
}

func (r *repository) ListLedgerInfo(ctx context.Context, companyID int64) ([]LedgerInfo, error) {
	rows, err := r.db.Query(ctx, ledgerInfoQuery+` WHERE l.company_id=$1 ORDER BY l.name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var infos []LedgerInfo
	for rows.Next() {
		info, err := scanLedgerInfo(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func (r *repository) LedgerHasPostings(ctx context.Context, companyID, ledgerID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM voucher_lines vl
JOIN ledgers l ON l.id = vl.ledger_id
WHERE vl.ledger_id = $2 AND l.company_id = $1)`, companyID, ledgerID).Scan(&exists)
	return exists, err
}

func (r *repository) DeactivateLedger(ctx context.Context, companyID, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE ledgers SET is_active=FALSE, updated_at=NOW()
WHERE id=$1 AND company_id=$2`, id, companyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListGroups(ctx context.Context, companyID int64) ([]Group, error) {
	rows, err := r.db.Query(ctx, `SELECT id, company_id, name, kind, created_at, updated_at
FROM account_groups WHERE company_id=$1 ORDER BY name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var groups []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.CompanyID, &g.Name, &g.Kind, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *repository) ListSubGroups(ctx context.Context, companyID int64) ([]SubGroup, error) {
	rows, err := r.db.Query(ctx, `SELECT id, company_id, group_id, name, classification, created_at, updated_at
FROM account_subgroups WHERE company_id=$1 ORDER BY name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var subs []SubGroup
	for rows.Next() {
		var sg SubGroup
		if err := rows.Scan(&sg.ID, &sg.CompanyID, &sg.GroupID, &sg.Name, &sg.Classification, &sg.CreatedAt, &sg.UpdatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sg)
	}
	return subs, rows.Err()
}

func (r *repository) ListLedgers(ctx context.Context, companyID int64) ([]Ledger, error) {
	rows, err := r.db.Query(ctx, `SELECT id, company_id, group_id, subgroup_id, name, opening_balance::text, is_cash, is_tax, is_active, created_at, updated_at
FROM ledgers WHERE company_id=$1 ORDER BY name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ledgers []Ledger
	for rows.Next() {
		var l Ledger
		var opening string
		if err := rows.Scan(&l.ID, &l.CompanyID, &l.GroupID, &l.SubGroupID, &l.Name, &opening, &l.IsCash, &l.IsTax, &l.IsActive, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		l.OpeningBalance, err = decimal.NewFromString(opening)
		if err != nil {
			return nil, err
		}
		ledgers = append(ledgers, l)
	}
	return ledgers, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLedgerInfo(row rowScanner) (LedgerInfo, error) {
	var info LedgerInfo
	var kind string
	var class string
	var opening string
	if err := row.Scan(&info.ID, &info.CompanyID, &info.Name, &kind, &class, &opening, &info.IsCash, &info.IsTax, &info.IsActive); err != nil {
		return LedgerInfo{}, err
	}
	info.Kind = GroupKind(kind)
	info.Classification = Classification(class)
	info.NormalSide = NormalSideFor(info.Kind)
	var err error
	info.OpeningBalance, err = decimal.NewFromString(opening)
	if err != nil {
		return LedgerInfo{}, err
	}
	return info, nil
}

// mapConstraint translates postgres constraint violations into domain errors.
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return shared.ErrDuplicateName
		case "23503":
			return shared.ErrNotFound
		case "23514":
			return shared.ErrInvalidParent
		}
	}
	return err
}
