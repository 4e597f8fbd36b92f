package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/accounting/balance"
)

// CashFlowBucket is one month of cash-ledger activity. Cash ledgers are
// debit-normal, so debits are inflows and credits outflows.
type CashFlowBucket struct {
	Month   time.Month
	Inflow  decimal.Decimal
	Outflow decimal.Decimal
	Net     decimal.Decimal
}

// CashFlow is a year of monthly cash movement.
type CashFlow struct {
	Year    int
	Buckets [12]CashFlowBucket
	Inflow  decimal.Decimal
	Outflow decimal.Decimal
	Net     decimal.Decimal
}

// buildCashFlowBucket folds one month's movements over the cash ledgers.
func buildCashFlowBucket(month time.Month, movements map[int64]balance.Movement, cashLedgers map[int64]bool) CashFlowBucket {
	bucket := CashFlowBucket{Month: month, Inflow: decimal.Zero, Outflow: decimal.Zero}
	for id, mv := range movements {
		if !cashLedgers[id] {
			continue
		}
		bucket.Inflow = bucket.Inflow.Add(mv.DebitTotal)
		bucket.Outflow = bucket.Outflow.Add(mv.CreditTotal)
	}
	bucket.Net = bucket.Inflow.Sub(bucket.Outflow)
	return bucket
}
