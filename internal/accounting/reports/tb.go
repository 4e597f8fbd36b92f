package reports

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/accounting/balance"
	"github.com/meridian-erp/meridian-erp/internal/accounting/coa"
	"github.com/meridian-erp/meridian-erp/internal/accounting/shared"
)

var tbTolerance = decimal.New(1, -2)

// TrialBalanceRow places one ledger balance under its debit or credit
// column. A balance that has flipped away from its normal side is still
// reported, on the opposite column, never hidden.
type TrialBalanceRow struct {
	LedgerID   int64
	LedgerName string
	Kind       coa.GroupKind
	Debit      decimal.Decimal
	Credit     decimal.Decimal
	DebitCell  MoneyCell
	CreditCell MoneyCell
}

// TrialBalance lists every active ledger with column totals.
type TrialBalance struct {
	AsOf            time.Time
	Rows            []TrialBalanceRow
	TotalDebit      decimal.Decimal
	TotalCredit     decimal.Decimal
	TotalDebitCell  MoneyCell
	TotalCreditCell MoneyCell
}

// BuildTrialBalance derives the trial balance from resolved balances. The
// Σdebit == Σcredit invariant must hold by construction; when it does not,
// ErrInconsistent is returned so the defect surfaces loudly instead of
// being rounded away.
func BuildTrialBalance(balances []balance.LedgerBalance) (TrialBalance, error) {
	tb := TrialBalance{TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, lb := range balances {
		if !lb.Ledger.IsActive {
			continue
		}
		row := TrialBalanceRow{
			LedgerID:   lb.Ledger.ID,
			LedgerName: lb.Ledger.Name,
			Kind:       lb.Ledger.Kind,
			Debit:      decimal.Zero,
			Credit:     decimal.Zero,
		}
		column := lb.Ledger.NormalSide
		amount := lb.Balance
		if amount.IsNegative() {
			amount = amount.Neg()
			if column == coa.NormalDebit {
				column = coa.NormalCredit
			} else {
				column = coa.NormalDebit
			}
		}
		if column == coa.NormalDebit {
			row.Debit = amount
		} else {
			row.Credit = amount
		}
		row.DebitCell = NewMoneyCell(row.Debit)
		row.CreditCell = NewMoneyCell(row.Credit)
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
	}
	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].LedgerName < tb.Rows[j].LedgerName })
	tb.TotalDebitCell = NewMoneyCell(tb.TotalDebit)
	tb.TotalCreditCell = NewMoneyCell(tb.TotalCredit)

	if tb.TotalDebit.Sub(tb.TotalCredit).Abs().GreaterThan(tbTolerance) {
		return tb, fmt.Errorf("%w: trial balance debit %s != credit %s",
			shared.ErrInconsistent, tb.TotalDebit, tb.TotalCredit)
	}
	return tb, nil
}
