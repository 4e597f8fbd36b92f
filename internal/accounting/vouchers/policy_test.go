package vouchers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/accounting/shared"
)

func TestContraRequiresCashLedgers(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	// Cash -> bank transfer is the canonical contra voucher.
	_, err := svc.PostVoucher(ctx, 1, PostingInput{
		Type: TypeContra,
		Date: day("2025-05-01"),
		Lines: []LineInput{
			{LedgerID: ledgerBank, Side: SideDebit, Amount: dec("300")},
			{LedgerID: ledgerCash, Side: SideCredit, Amount: dec("300")},
		},
	})
	require.NoError(t, err)

	_, err = svc.PostVoucher(ctx, 1, PostingInput{
		Type: TypeContra,
		Date: day("2025-05-01"),
		Lines: []LineInput{
			{LedgerID: ledgerRent, Side: SideDebit, Amount: dec("300")},
			{LedgerID: ledgerCash, Side: SideCredit, Amount: dec("300")},
		},
	})
	require.ErrorIs(t, err, shared.ErrInvalidShape)
}

func TestSaleShape(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	sale := PostingInput{
		Type: TypeSale,
		Date: day("2025-05-02"),
		Lines: []LineInput{
			{LedgerID: ledgerCash, Side: SideDebit, Amount: dec("750")},
			{LedgerID: ledgerSales, Side: SideCredit, Amount: dec("750")},
		},
	}
	_, err := svc.PostVoucher(ctx, 1, sale)
	require.ErrorIs(t, err, shared.ErrInvalidShape) // no counterparty

	sale.Counterparty = "Acme Traders"
	_, err = svc.PostVoucher(ctx, 1, sale)
	require.NoError(t, err)

	// A sale without a revenue credit is not a sale.
	noRevenue := PostingInput{
		Type:         TypeSale,
		Date:         day("2025-05-02"),
		Counterparty: "Acme Traders",
		Lines: []LineInput{
			{LedgerID: ledgerCash, Side: SideDebit, Amount: dec("750")},
			{LedgerID: ledgerPayable, Side: SideCredit, Amount: dec("750")},
		},
	}
	_, err = svc.PostVoucher(ctx, 1, noRevenue)
	require.ErrorIs(t, err, shared.ErrInvalidShape)
}

func TestExpenseAndPurchaseShape(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.PostVoucher(ctx, 1, PostingInput{
		Type: TypeExpense,
		Date: day("2025-05-03"),
		Lines: []LineInput{
			{LedgerID: ledgerBank, Side: SideDebit, Amount: dec("80")},
			{LedgerID: ledgerCash, Side: SideCredit, Amount: dec("80")},
		},
	})
	require.ErrorIs(t, err, shared.ErrInvalidShape) // no expense debit

	_, err = svc.PostVoucher(ctx, 1, PostingInput{
		Type: TypeExpense,
		Date: day("2025-05-03"),
		Lines: []LineInput{
			{LedgerID: ledgerRent, Side: SideDebit, Amount: dec("80")},
			{LedgerID: ledgerCash, Side: SideCredit, Amount: dec("80")},
		},
	})
	require.NoError(t, err)

	// A purchase may capitalize into an asset ledger instead of expense.
	_, err = svc.PostVoucher(ctx, 1, PostingInput{
		Type: TypePurchase,
		Date: day("2025-05-04"),
		Lines: []LineInput{
			{LedgerID: ledgerBank, Side: SideDebit, Amount: dec("1200")},
			{LedgerID: ledgerPayable, Side: SideCredit, Amount: dec("1200")},
		},
	})
	require.NoError(t, err)
}

func TestJournalHasNoExtraShapeRules(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.PostVoucher(context.Background(), 1, PostingInput{
		Type: TypeJournal,
		Date: day("2025-05-05"),
		Lines: []LineInput{
			{LedgerID: ledgerPayable, Side: SideDebit, Amount: dec("40")},
			{LedgerID: ledgerSales, Side: SideCredit, Amount: dec("40")},
		},
	})
	require.NoError(t, err)
}
