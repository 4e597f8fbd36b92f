package coa

import (
	"time"

	"github.com/shopspring/decimal"
)

// GroupKind enumerates the top-level chart-of-accounts classifications.
type GroupKind string

const (
	KindAssets      GroupKind = "ASSETS"
	KindLiabilities GroupKind = "LIABILITIES"
	KindIncome      GroupKind = "INCOME"
	KindExpenses    GroupKind = "EXPENSES"
	KindEquity      GroupKind = "EQUITY"
)

// Valid reports whether the kind is one of the known classifications.
func (k GroupKind) Valid() bool {
	switch k {
	case KindAssets, KindLiabilities, KindIncome, KindExpenses, KindEquity:
		return true
	}
	return false
}

// NormalSide is the direction in which a ledger balance naturally grows.
type NormalSide string

const (
	NormalDebit  NormalSide = "DEBIT"
	NormalCredit NormalSide = "CREDIT"
)

// NormalSideFor derives the normal side from the owning group kind.
// Assets and expenses grow on the debit side, everything else on credit.
func NormalSideFor(kind GroupKind) NormalSide {
	if kind == KindAssets || kind == KindExpenses {
		return NormalDebit
	}
	return NormalCredit
}

// Classification refines a subgroup for balance-sheet presentation. It is
// chosen at creation time; reports never infer it from names.
type Classification string

const (
	ClassCurrent  Classification = "CURRENT"
	ClassFixed    Classification = "FIXED"
	ClassLongTerm Classification = "LONG_TERM"
	ClassNone     Classification = "NONE"
)

// Valid reports whether the classification is a known value.
func (c Classification) Valid() bool {
	switch c {
	case ClassCurrent, ClassFixed, ClassLongTerm, ClassNone:
		return true
	}
	return false
}

// Group is a top-level chart-of-accounts node. Its kind is immutable once
// any voucher line has been posted beneath it.
type Group struct {
	ID        int64
	CompanyID int64
	Name      string
	Kind      GroupKind
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SubGroup is an optional intermediate node. Its effective kind is always
// inherited from the parent group and never stored redundantly.
type SubGroup struct {
	ID             int64
	CompanyID      int64
	GroupID        int64
	Name           string
	Classification Classification
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Ledger is a single account. Exactly one of GroupID or SubGroupID is set.
type Ledger struct {
	ID             int64
	CompanyID      int64
	GroupID        *int64
	SubGroupID     *int64
	Name           string
	OpeningBalance decimal.Decimal
	IsCash         bool
	IsTax          bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LedgerInfo is the resolved view of a ledger used by the posting engine
// and the report aggregators: parentage collapsed to kind and normal side.
type LedgerInfo struct {
	ID             int64
	CompanyID      int64
	Name           string
	Kind           GroupKind
	NormalSide     NormalSide
	Classification Classification
	OpeningBalance decimal.Decimal
	IsCash         bool
	IsTax          bool
	IsActive       bool
}

// HierarchyLedger is a leaf in the chart-of-accounts tree.
type HierarchyLedger struct {
	ID             int64
	Name           string
	OpeningBalance decimal.Decimal
	IsCash         bool
	IsTax          bool
	IsActive       bool
}

// HierarchySubGroup groups ledgers beneath a subgroup node.
type HierarchySubGroup struct {
	ID             int64
	Name           string
	Classification Classification
	Ledgers        []HierarchyLedger
}

// HierarchyGroup is one top-level node of the tree returned by ListHierarchy.
type HierarchyGroup struct {
	ID        int64
	Name      string
	Kind      GroupKind
	SubGroups []HierarchySubGroup
	Ledgers   []HierarchyLedger
}
