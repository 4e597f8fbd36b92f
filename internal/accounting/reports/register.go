package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/accounting/vouchers"
)

// RegisterLine is one side of a journal voucher, debit rows first.
type RegisterLine struct {
	LedgerID   int64
	LedgerName string
	Side       vouchers.Side
	Amount     decimal.Decimal
	Narration  string
}

// RegisterEntry groups one voucher's lines for the register.
type RegisterEntry struct {
	VoucherID     int64
	VoucherNumber int64
	Date          time.Time
	Narration     string
	Lines         []RegisterLine
}

// JournalRegister lists the period's JOURNAL vouchers.
type JournalRegister struct {
	Month   time.Month
	Year    int
	Entries []RegisterEntry
}

// BuildJournalRegister groups journal voucher lines by voucher, showing
// each voucher Dr-then-Cr as in a written journal.
func BuildJournalRegister(month time.Month, year int, list []vouchers.Voucher, ledgerNames map[int64]string) JournalRegister {
	reg := JournalRegister{Month: month, Year: year}
	for _, v := range list {
		if v.Type != vouchers.TypeJournal {
			continue
		}
		entry := RegisterEntry{
			VoucherID:     v.ID,
			VoucherNumber: v.Number,
			Date:          v.Date,
			Narration:     v.Narration,
		}
		for _, line := range v.Lines {
			entry.Lines = append(entry.Lines, RegisterLine{
				LedgerID:   line.LedgerID,
				LedgerName: ledgerNames[line.LedgerID],
				Side:       line.Side,
				Amount:     line.Amount,
				Narration:  line.Narration,
			})
		}
		sort.SliceStable(entry.Lines, func(i, j int) bool {
			return entry.Lines[i].Side == vouchers.SideDebit && entry.Lines[j].Side == vouchers.SideCredit
		})
		reg.Entries = append(reg.Entries, entry)
	}
	sort.Slice(reg.Entries, func(i, j int) bool { return reg.Entries[i].VoucherNumber < reg.Entries[j].VoucherNumber })
	return reg
}
