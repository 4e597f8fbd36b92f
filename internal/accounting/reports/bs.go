package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/accounting/balance"
	"github.com/meridian-erp/meridian-erp/internal/accounting/coa"
)

// Balance sheet status strings surfaced to callers.
const (
	StatusBalanced    = "Books are Balanced"
	StatusDiscrepancy = "Discrepancy Detected"
)

// BalanceSheetRow is one ledger inside a section.
type BalanceSheetRow struct {
	LedgerID    int64
	LedgerName  string
	Balance     decimal.Decimal
	BalanceCell MoneyCell
}

// BalanceSheetSection holds the rows and total for one classification.
type BalanceSheetSection struct {
	Label     string
	Rows      []BalanceSheetRow
	Total     decimal.Decimal
	TotalCell MoneyCell
}

// BalanceSheet groups resolved balances by group kind. Assets split into
// current/fixed and liabilities into current/long-term via the explicit
// subgroup classification, never by name matching.
type BalanceSheet struct {
	CurrentAssets        BalanceSheetSection
	FixedAssets          BalanceSheetSection
	CurrentLiabilities   BalanceSheetSection
	LongTermLiabilities  BalanceSheetSection
	Equity               BalanceSheetSection
	NetIncome            decimal.Decimal
	NetIncomeCell        MoneyCell
	TotalAssets          decimal.Decimal
	TotalAssetsCell      MoneyCell
	TotalLiabilities     decimal.Decimal
	TotalLiabilitiesCell MoneyCell
	TotalEquity          decimal.Decimal
	TotalEquityCell      MoneyCell
	Balanced             bool
	Status               string
}

// BuildBalanceSheet aggregates the same resolved balances the trial
// balance uses. Income and expense activity folds into equity as net
// income, so the accounting equation can hold mid-period. When it does
// not, the discrepancy is surfaced, never silently rounded.
func BuildBalanceSheet(balances []balance.LedgerBalance) BalanceSheet {
	bs := BalanceSheet{
		CurrentAssets:       BalanceSheetSection{Label: "Current Assets", Total: decimal.Zero},
		FixedAssets:         BalanceSheetSection{Label: "Fixed Assets", Total: decimal.Zero},
		CurrentLiabilities:  BalanceSheetSection{Label: "Current Liabilities", Total: decimal.Zero},
		LongTermLiabilities: BalanceSheetSection{Label: "Long-Term Liabilities", Total: decimal.Zero},
		Equity:              BalanceSheetSection{Label: "Equity", Total: decimal.Zero},
		NetIncome:           decimal.Zero,
	}
	for _, lb := range balances {
		if !lb.Ledger.IsActive {
			continue
		}
		row := BalanceSheetRow{LedgerID: lb.Ledger.ID, LedgerName: lb.Ledger.Name, Balance: lb.Balance}
		switch lb.Ledger.Kind {
		case coa.KindAssets:
			if lb.Ledger.Classification == coa.ClassFixed {
				appendRow(&bs.FixedAssets, row)
			} else {
				appendRow(&bs.CurrentAssets, row)
			}
		case coa.KindLiabilities:
			if lb.Ledger.Classification == coa.ClassLongTerm {
				appendRow(&bs.LongTermLiabilities, row)
			} else {
				appendRow(&bs.CurrentLiabilities, row)
			}
		case coa.KindEquity:
			appendRow(&bs.Equity, row)
		case coa.KindIncome:
			bs.NetIncome = bs.NetIncome.Add(lb.Balance)
		case coa.KindExpenses:
			bs.NetIncome = bs.NetIncome.Sub(lb.Balance)
		}
	}
	for _, section := range []*BalanceSheetSection{
		&bs.CurrentAssets, &bs.FixedAssets, &bs.CurrentLiabilities, &bs.LongTermLiabilities, &bs.Equity,
	} {
		sort.Slice(section.Rows, func(i, j int) bool { return section.Rows[i].LedgerName < section.Rows[j].LedgerName })
		section.TotalCell = NewMoneyCell(section.Total)
	}

	bs.TotalAssets = bs.CurrentAssets.Total.Add(bs.FixedAssets.Total)
	bs.TotalLiabilities = bs.CurrentLiabilities.Total.Add(bs.LongTermLiabilities.Total)
	bs.TotalEquity = bs.Equity.Total.Add(bs.NetIncome)
	bs.NetIncomeCell = NewMoneyCell(bs.NetIncome)
	bs.TotalAssetsCell = NewMoneyCell(bs.TotalAssets)
	bs.TotalLiabilitiesCell = NewMoneyCell(bs.TotalLiabilities)
	bs.TotalEquityCell = NewMoneyCell(bs.TotalEquity)
	bs.Balanced = bs.TotalAssets.Sub(bs.TotalLiabilities.Add(bs.TotalEquity)).Abs().LessThanOrEqual(tbTolerance)
	if bs.Balanced {
		bs.Status = StatusBalanced
	} else {
		bs.Status = StatusDiscrepancy
	}
	return bs
}

func appendRow(section *BalanceSheetSection, row BalanceSheetRow) {
	row.BalanceCell = NewMoneyCell(row.Balance)
	section.Rows = append(section.Rows, row)
	section.Total = section.Total.Add(row.Balance)
}
