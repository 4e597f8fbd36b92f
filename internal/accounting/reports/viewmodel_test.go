package reports

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/accounting/balance"
	"github.com/meridian-erp/meridian-erp/internal/accounting/coa"
	"github.com/meridian-erp/meridian-erp/internal/accounting/vouchers"
)

func TestFormatMoneyGroupsThousands(t *testing.T) {
	require.Equal(t, "1,234,567.50", FormatMoney(dec("1234567.5")))
	require.Equal(t, "0.00", FormatMoney(dec("0")))
	require.Equal(t, "-9,800.25", FormatMoney(dec("-9800.25")))
}

func TestMoneyCellKeepsExactAmount(t *testing.T) {
	cell := NewMoneyCell(dec("12500"))
	require.Equal(t, "12500.00", cell.Amount)
	require.Equal(t, "12,500.00", cell.Display)
}

func TestTrialBalanceCarriesDisplayCells(t *testing.T) {
	cash := info(1, "Cash", coa.KindAssets, coa.ClassCurrent)
	capital := info(2, "Share Capital", coa.KindEquity, coa.ClassNone)

	tb, err := BuildTrialBalance([]balance.LedgerBalance{
		{Ledger: cash, Balance: dec("1250000")},
		{Ledger: capital, Balance: dec("1250000")},
	})
	require.NoError(t, err)

	require.Equal(t, "1,250,000.00", tb.Rows[0].DebitCell.Display)
	require.Equal(t, "0.00", tb.Rows[0].CreditCell.Display)
	require.Equal(t, "1,250,000.00", tb.TotalDebitCell.Display)
	require.Equal(t, "1,250,000.00", tb.TotalCreditCell.Display)
}

func TestBalanceSheetCarriesDisplayCells(t *testing.T) {
	bs := BuildBalanceSheet([]balance.LedgerBalance{
		{Ledger: info(1, "Cash", coa.KindAssets, coa.ClassCurrent), Balance: dec("7500")},
		{Ledger: info(2, "Share Capital", coa.KindEquity, coa.ClassNone), Balance: dec("7500")},
	})

	require.Equal(t, "7,500.00", bs.CurrentAssets.Rows[0].BalanceCell.Display)
	require.Equal(t, "7,500.00", bs.CurrentAssets.TotalCell.Display)
	require.Equal(t, "7,500.00", bs.TotalAssetsCell.Display)
	require.Equal(t, "7,500.00", bs.TotalEquityCell.Display)
	require.Equal(t, "0.00", bs.NetIncomeCell.Display)
}

func TestDayBookCarriesDisplayCells(t *testing.T) {
	date := day("2026-01-15")
	v := journalVoucher(1, 1, date, vouchers.TypeJournal, []vouchers.VoucherLine{
		{LedgerID: 1, Side: vouchers.SideDebit, Amount: dec("3200")},
		{LedgerID: 2, Side: vouchers.SideCredit, Amount: dec("3200")},
	})

	book := BuildDayBook(date, []vouchers.Voucher{v}, map[int64]string{1: "Cash", 2: "Sales"})
	require.Len(t, book.Entries, 2)
	require.Equal(t, "3,200.00", book.Entries[0].AmountCell.Display)
	require.Equal(t, "3,200.00", book.TotalDebitCell.Display)
	require.Equal(t, "3,200.00", book.TotalCreditCell.Display)
}
