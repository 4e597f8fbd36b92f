package vouchers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VoucherType enumerates the supported financial event types.
type VoucherType string

const (
	TypeExpense  VoucherType = "EXPENSE"
	TypeIncome   VoucherType = "INCOME"
	TypeContra   VoucherType = "CONTRA"
	TypeJournal  VoucherType = "JOURNAL"
	TypeSale     VoucherType = "SALE"
	TypePurchase VoucherType = "PURCHASE"
	TypePOS      VoucherType = "POS"
)

// Side marks a line as debit or credit.
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// Valid reports whether the side is DEBIT or CREDIT.
func (s Side) Valid() bool {
	return s == SideDebit || s == SideCredit
}

// Voucher is one committed financial event. Vouchers are append-only:
// corrections are reversing vouchers, never in-place edits.
type Voucher struct {
	ID           int64
	CompanyID    int64
	Number       int64
	Type         VoucherType
	Date         time.Time
	Narration    string
	Counterparty string
	SourceRef    uuid.UUID
	PostedAt     time.Time
	CreatedAt    time.Time
	Lines        []VoucherLine
}

// VoucherLine is one debit or credit entry against one ledger.
type VoucherLine struct {
	ID        int64
	VoucherID int64
	LedgerID  int64
	Side      Side
	Amount    decimal.Decimal
	Narration string
}
