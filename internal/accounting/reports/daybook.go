package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/accounting/vouchers"
)

// DayBookEntry is one voucher line joined to its voucher, as shown in the
// day book.
type DayBookEntry struct {
	VoucherID     int64
	VoucherNumber int64
	VoucherType   vouchers.VoucherType
	Counterparty  string
	Narration     string
	LedgerID      int64
	LedgerName    string
	Side          vouchers.Side
	Amount        decimal.Decimal
	AmountCell    MoneyCell
}

// DayBook lists every line posted on exactly one date.
type DayBook struct {
	Date            time.Time
	Entries         []DayBookEntry
	TotalDebit      decimal.Decimal
	TotalCredit     decimal.Decimal
	TotalDebitCell  MoneyCell
	TotalCreditCell MoneyCell
}

// BuildDayBook flattens the day's vouchers into dated journal rows.
// Ledger names come from the resolved directory so the report needs no
// second query path.
func BuildDayBook(date time.Time, list []vouchers.Voucher, ledgerNames map[int64]string) DayBook {
	book := DayBook{Date: date, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, v := range list {
		if !sameDay(v.Date, date) {
			continue
		}
		for _, line := range v.Lines {
			entry := DayBookEntry{
				VoucherID:     v.ID,
				VoucherNumber: v.Number,
				VoucherType:   v.Type,
				Counterparty:  v.Counterparty,
				Narration:     firstNonEmpty(line.Narration, v.Narration),
				LedgerID:      line.LedgerID,
				LedgerName:    ledgerNames[line.LedgerID],
				Side:          line.Side,
				Amount:        line.Amount,
				AmountCell:    NewMoneyCell(line.Amount),
			}
			book.Entries = append(book.Entries, entry)
			if line.Side == vouchers.SideDebit {
				book.TotalDebit = book.TotalDebit.Add(line.Amount)
			} else {
				book.TotalCredit = book.TotalCredit.Add(line.Amount)
			}
		}
	}
	sort.SliceStable(book.Entries, func(i, j int) bool {
		return book.Entries[i].VoucherNumber < book.Entries[j].VoucherNumber
	})
	book.TotalDebitCell = NewMoneyCell(book.TotalDebit)
	book.TotalCreditCell = NewMoneyCell(book.TotalCredit)
	return book
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
