package reports

import (
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/accounting/balance"
)

// TaxBucket is one quarter of activity on tax-flagged ledgers. Tax
// liabilities are credit-normal: credits accrue tax payable, debits are
// payments or input credits, so Net is the quarter's payable.
type TaxBucket struct {
	Quarter int
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Net     decimal.Decimal
}

// TaxSummary is a year of quarterly VAT/tax movement.
type TaxSummary struct {
	Year    int
	Buckets [4]TaxBucket
	Net     decimal.Decimal
}

func buildTaxBucket(quarter int, movements map[int64]balance.Movement, taxLedgers map[int64]bool) TaxBucket {
	bucket := TaxBucket{Quarter: quarter, Debit: decimal.Zero, Credit: decimal.Zero}
	for id, mv := range movements {
		if !taxLedgers[id] {
			continue
		}
		bucket.Debit = bucket.Debit.Add(mv.DebitTotal)
		bucket.Credit = bucket.Credit.Add(mv.CreditTotal)
	}
	bucket.Net = bucket.Credit.Sub(bucket.Debit)
	return bucket
}
