package vouchers

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/accounting/shared"
)

// balanceTolerance is the rounding slack allowed between the debit and
// credit totals of a voucher: one hundredth of a currency unit.
var balanceTolerance = decimal.New(1, -2)

// LineInput describes one line of a posting request.
type LineInput struct {
	LedgerID  int64
	Side      Side
	Amount    decimal.Decimal
	Narration string
}

// PostingInput groups the fields required to post a voucher.
type PostingInput struct {
	Type         VoucherType
	Date         time.Time
	Narration    string
	Counterparty string
	SourceRef    uuid.UUID
	Lines        []LineInput
}

// Validate applies the shape rules that need no storage access: line count,
// per-line amounts and the debit/credit balance invariant. The UI-level
// "Dr/Cr must match" check restates this; it is never trusted as the guard.
func (in PostingInput) Validate() error {
	if _, ok := policyFor(in.Type); !ok {
		return fmt.Errorf("vouchers: unknown voucher type %q", in.Type)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("vouchers: date required")
	}
	if len(in.Lines) < 2 {
		return shared.ErrTooFewLines
	}
	debit := decimal.Zero
	credit := decimal.Zero
	for idx, line := range in.Lines {
		if line.LedgerID == 0 {
			return fmt.Errorf("vouchers: line %d missing ledger", idx)
		}
		if !line.Side.Valid() {
			return fmt.Errorf("vouchers: line %d has invalid side %q", idx, line.Side)
		}
		if !line.Amount.IsPositive() {
			return fmt.Errorf("vouchers: line %d amount must be positive", idx)
		}
		if line.Side == SideDebit {
			debit = debit.Add(line.Amount)
		} else {
			credit = credit.Add(line.Amount)
		}
	}
	if debit.Sub(credit).Abs().GreaterThan(balanceTolerance) {
		return shared.ErrUnbalanced
	}
	return nil
}

// ReverseInput wraps parameters for a reversing voucher.
type ReverseInput struct {
	VoucherID int64
	Narration string
}
