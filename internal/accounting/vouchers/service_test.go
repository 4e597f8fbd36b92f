package vouchers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/accounting/coa"
	"github.com/meridian-erp/meridian-erp/internal/accounting/shared"
)

type memoryRepo struct {
	ledgers   map[int64]coa.LedgerInfo
	vouchers  []Voucher
	lines     []VoucherLine
	sourceSet map[uuid.UUID]struct{}
	nextID    int64
	locks     int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		ledgers:   make(map[int64]coa.LedgerInfo),
		sourceSet: make(map[uuid.UUID]struct{}),
	}
}

func (r *memoryRepo) addLedger(id, companyID int64, kind coa.GroupKind, isCash bool) {
	r.ledgers[id] = coa.LedgerInfo{
		ID: id, CompanyID: companyID, Kind: kind,
		NormalSide: coa.NormalSideFor(kind), IsCash: isCash, IsActive: true,
	}
}

type memoryTx struct {
	repo *memoryRepo
	// staged writes, applied only when the tx function succeeds
	vouchers []Voucher
	lines    []VoucherLine
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{repo: r}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.vouchers = append(r.vouchers, tx.vouchers...)
	r.lines = append(r.lines, tx.lines...)
	for _, v := range tx.vouchers {
		r.sourceSet[v.SourceRef] = struct{}{}
	}
	return nil
}

func (r *memoryRepo) GetVoucherWithLines(ctx context.Context, companyID, id int64) (Voucher, error) {
	for _, v := range r.vouchers {
		if v.ID == id && v.CompanyID == companyID {
			out := v
			out.Lines = nil
			for _, l := range r.lines {
				if l.VoucherID == id {
					out.Lines = append(out.Lines, l)
				}
			}
			return out, nil
		}
	}
	return Voucher{}, shared.ErrNotFound
}

func (r *memoryRepo) List(ctx context.Context, companyID int64, filter ListFilter) ([]Voucher, error) {
	var out []Voucher
	for _, v := range r.vouchers {
		if v.CompanyID != companyID {
			continue
		}
		if filter.Type != "" && v.Type != filter.Type {
			continue
		}
		if filter.Year != 0 && v.Date.Year() != filter.Year {
			continue
		}
		if filter.Month != 0 && v.Date.Month() != filter.Month {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (tx *memoryTx) LockCompany(ctx context.Context, companyID int64) error {
	tx.repo.locks++
	return nil
}

func (tx *memoryTx) GetLedgerInfos(ctx context.Context, companyID int64, ids []int64) (map[int64]coa.LedgerInfo, error) {
	out := make(map[int64]coa.LedgerInfo)
	for _, id := range ids {
		if info, ok := tx.repo.ledgers[id]; ok && info.CompanyID == companyID {
			out[id] = info
		}
	}
	return out, nil
}

func (tx *memoryTx) NextVoucherNumber(ctx context.Context, companyID int64) (int64, error) {
	var max int64
	for _, v := range tx.repo.vouchers {
		if v.CompanyID == companyID && v.Number > max {
			max = v.Number
		}
	}
	return max + 1, nil
}

func (tx *memoryTx) InsertVoucher(ctx context.Context, v Voucher) (Voucher, error) {
	if _, ok := tx.repo.sourceSet[v.SourceRef]; ok {
		return Voucher{}, shared.ErrSourceAlreadyLinked
	}
	tx.repo.nextID++
	v.ID = tx.repo.nextID
	v.PostedAt = time.Now()
	tx.vouchers = append(tx.vouchers, v)
	return v, nil
}

func (tx *memoryTx) InsertLines(ctx context.Context, voucherID int64, lines []LineInput) error {
	for _, l := range lines {
		tx.repo.nextID++
		tx.lines = append(tx.lines, VoucherLine{
			ID: tx.repo.nextID, VoucherID: voucherID,
			LedgerID: l.LedgerID, Side: l.Side, Amount: l.Amount, Narration: l.Narration,
		})
	}
	return nil
}

type fakeInvalidator struct {
	companies []int64
}

func (f *fakeInvalidator) InvalidateCompany(ctx context.Context, companyID int64) error {
	f.companies = append(f.companies, companyID)
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

const (
	ledgerCash    int64 = 1
	ledgerBank    int64 = 2
	ledgerRent    int64 = 3
	ledgerSales   int64 = 4
	ledgerPayable int64 = 5
)

func seededRepo() *memoryRepo {
	repo := newMemoryRepo()
	repo.addLedger(ledgerCash, 1, coa.KindAssets, true)
	repo.addLedger(ledgerBank, 1, coa.KindAssets, true)
	repo.addLedger(ledgerRent, 1, coa.KindExpenses, false)
	repo.addLedger(ledgerSales, 1, coa.KindIncome, false)
	repo.addLedger(ledgerPayable, 1, coa.KindLiabilities, false)
	return repo
}

func TestPostVoucherCommitsAtomically(t *testing.T) {
	repo := seededRepo()
	inval := &fakeInvalidator{}
	svc := NewService(repo, inval, nil, nil)
	ctx := context.Background()

	voucher, err := svc.PostVoucher(ctx, 1, PostingInput{
		Type: TypeExpense,
		Date: day("2025-03-10"),
		Lines: []LineInput{
			{LedgerID: ledgerRent, Side: SideDebit, Amount: dec("200")},
			{LedgerID: ledgerCash, Side: SideCredit, Amount: dec("200")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), voucher.Number)
	require.Len(t, voucher.Lines, 2)
	require.Len(t, repo.vouchers, 1)
	require.Len(t, repo.lines, 2)
	require.Equal(t, []int64{1}, inval.companies)

	// Numbers are per company and strictly increasing.
	second, err := svc.PostVoucher(ctx, 1, PostingInput{
		Type: TypeJournal,
		Date: day("2025-03-11"),
		Lines: []LineInput{
			{LedgerID: ledgerBank, Side: SideDebit, Amount: dec("50")},
			{LedgerID: ledgerCash, Side: SideCredit, Amount: dec("50")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), second.Number)
}

func TestPostVoucherRejectsUnbalanced(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.PostVoucher(context.Background(), 1, PostingInput{
		Type: TypeJournal,
		Date: day("2025-03-10"),
		Lines: []LineInput{
			{LedgerID: ledgerRent, Side: SideDebit, Amount: dec("150")},
			{LedgerID: ledgerCash, Side: SideCredit, Amount: dec("140")},
		},
	})
	require.ErrorIs(t, err, shared.ErrUnbalanced)
	require.Empty(t, repo.vouchers)
	require.Empty(t, repo.lines)
}

func TestPostVoucherValidation(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.PostVoucher(ctx, 1, PostingInput{
		Type:  TypeJournal,
		Date:  day("2025-03-10"),
		Lines: []LineInput{{LedgerID: ledgerCash, Side: SideDebit, Amount: dec("10")}},
	})
	require.ErrorIs(t, err, shared.ErrTooFewLines)

	_, err = svc.PostVoucher(ctx, 1, PostingInput{
		Type: TypeJournal,
		Date: day("2025-03-10"),
		Lines: []LineInput{
			{LedgerID: ledgerCash, Side: SideDebit, Amount: dec("0")},
			{LedgerID: ledgerBank, Side: SideCredit, Amount: dec("0")},
		},
	})
	require.Error(t, err)

	// Rounding slack of one cent is tolerated.
	_, err = svc.PostVoucher(ctx, 1, PostingInput{
		Type: TypeJournal,
		Date: day("2025-03-10"),
		Lines: []LineInput{
			{LedgerID: ledgerBank, Side: SideDebit, Amount: dec("33.34")},
			{LedgerID: ledgerCash, Side: SideCredit, Amount: dec("33.33")},
		},
	})
	require.NoError(t, err)
}

func TestPostVoucherLedgerGuards(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.PostVoucher(ctx, 1, PostingInput{
		Type: TypeJournal,
		Date: day("2025-03-10"),
		Lines: []LineInput{
			{LedgerID: 999, Side: SideDebit, Amount: dec("10")},
			{LedgerID: ledgerCash, Side: SideCredit, Amount: dec("10")},
		},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)

	// Ledger of another company is invisible, not just inactive.
	repo.addLedger(77, 2, coa.KindAssets, false)
	_, err = svc.PostVoucher(ctx, 1, PostingInput{
		Type: TypeJournal,
		Date: day("2025-03-10"),
		Lines: []LineInput{
			{LedgerID: 77, Side: SideDebit, Amount: dec("10")},
			{LedgerID: ledgerCash, Side: SideCredit, Amount: dec("10")},
		},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)

	inactive := repo.ledgers[ledgerBank]
	inactive.IsActive = false
	repo.ledgers[ledgerBank] = inactive
	_, err = svc.PostVoucher(ctx, 1, PostingInput{
		Type: TypeJournal,
		Date: day("2025-03-10"),
		Lines: []LineInput{
			{LedgerID: ledgerBank, Side: SideDebit, Amount: dec("10")},
			{LedgerID: ledgerCash, Side: SideCredit, Amount: dec("10")},
		},
	})
	require.ErrorIs(t, err, shared.ErrInactiveLedger)
	require.Empty(t, repo.vouchers)
}

func TestPostVoucherIdempotency(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()
	ref := uuid.New()

	input := PostingInput{
		Type:      TypeJournal,
		Date:      day("2025-03-10"),
		SourceRef: ref,
		Lines: []LineInput{
			{LedgerID: ledgerBank, Side: SideDebit, Amount: dec("10")},
			{LedgerID: ledgerCash, Side: SideCredit, Amount: dec("10")},
		},
	}
	_, err := svc.PostVoucher(ctx, 1, input)
	require.NoError(t, err)
	_, err = svc.PostVoucher(ctx, 1, input)
	require.ErrorIs(t, err, shared.ErrSourceAlreadyLinked)
	require.Len(t, repo.vouchers, 1)
}

func TestReverseVoucherNetsToZero(t *testing.T) {
	repo := seededRepo()
	svc := NewService(repo, nil, nil, nil)
	ctx := context.Background()

	original, err := svc.PostVoucher(ctx, 1, PostingInput{
		Type:         TypeSale,
		Date:         day("2025-04-01"),
		Counterparty: "Acme Traders",
		Lines: []LineInput{
			{LedgerID: ledgerCash, Side: SideDebit, Amount: dec("500")},
			{LedgerID: ledgerSales, Side: SideCredit, Amount: dec("500")},
		},
	})
	require.NoError(t, err)

	reversal, err := svc.ReverseVoucher(ctx, 1, ReverseInput{VoucherID: original.ID})
	require.NoError(t, err)
	require.Equal(t, TypeJournal, reversal.Type)
	require.Equal(t, original.Date, reversal.Date)
	require.Len(t, reversal.Lines, 2)

	// Per-ledger net across the pair is zero.
	net := make(map[int64]decimal.Decimal)
	for _, l := range append(original.Lines, reversal.Lines...) {
		amt := l.Amount
		if l.Side == SideCredit {
			amt = amt.Neg()
		}
		net[l.LedgerID] = net[l.LedgerID].Add(amt)
	}
	for id, sum := range net {
		require.True(t, sum.IsZero(), "ledger %d nets to %s", id, sum)
	}
}
