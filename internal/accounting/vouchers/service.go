package vouchers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian-erp/internal/accounting/shared"
)

// BalanceInvalidator drops cached balances after a successful posting.
type BalanceInvalidator interface {
	InvalidateCompany(ctx context.Context, companyID int64) error
}

// Telemetry receives posting counters for the metrics registry.
type Telemetry interface {
	VoucherPosted(voucherType string)
}

// Service is the posting engine: the only writer of financial state.
type Service struct {
	repo    Repository
	cache   BalanceInvalidator
	metrics Telemetry
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(repo Repository, cache BalanceInvalidator, metrics Telemetry, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, metrics: metrics, logger: logger, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// PostVoucher validates and commits a voucher atomically. Every rule runs
// before any write; on failure nothing is persisted.
func (s *Service) PostVoucher(ctx context.Context, companyID int64, input PostingInput) (Voucher, error) {
	if err := input.Validate(); err != nil {
		return Voucher{}, err
	}
	if input.SourceRef == uuid.Nil {
		input.SourceRef = uuid.New()
	}

	var posted Voucher
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockCompany(ctx, companyID); err != nil {
			return err
		}
		ids := uniqueLedgerIDs(input.Lines)
		ledgers, err := tx.GetLedgerInfos(ctx, companyID, ids)
		if err != nil {
			return err
		}
		for _, id := range ids {
			info, ok := ledgers[id]
			if !ok {
				return fmt.Errorf("%w: ledger %d", shared.ErrNotFound, id)
			}
			if !info.IsActive {
				return fmt.Errorf("%w: ledger %d", shared.ErrInactiveLedger, id)
			}
		}
		if err := checkPolicy(input, ledgers); err != nil {
			return err
		}
		number, err := tx.NextVoucherNumber(ctx, companyID)
		if err != nil {
			return err
		}
		inserted, err := tx.InsertVoucher(ctx, Voucher{
			CompanyID:    companyID,
			Number:       number,
			Type:         input.Type,
			Date:         input.Date,
			Narration:    input.Narration,
			Counterparty: input.Counterparty,
			SourceRef:    input.SourceRef,
		})
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, inserted.ID, input.Lines); err != nil {
			return err
		}
		inserted.Lines = toLines(inserted.ID, input.Lines)
		posted = inserted
		return nil
	})
	if err != nil {
		return Voucher{}, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateCompany(ctx, companyID); err != nil && s.logger != nil {
			s.logger.Warn("balance cache invalidation failed", slog.Any("error", err), slog.Int64("company", companyID))
		}
	}
	if s.metrics != nil {
		s.metrics.VoucherPosted(string(posted.Type))
	}
	return posted, nil
}

// ReverseVoucher posts a mirror image of an existing voucher. The original
// is never touched: the pair nets to zero on every ledger it hit.
func (s *Service) ReverseVoucher(ctx context.Context, companyID int64, input ReverseInput) (Voucher, error) {
	if input.VoucherID == 0 {
		return Voucher{}, errors.New("vouchers: voucher id required")
	}
	original, err := s.repo.GetVoucherWithLines(ctx, companyID, input.VoucherID)
	if err != nil {
		return Voucher{}, err
	}
	narration := input.Narration
	if narration == "" {
		narration = fmt.Sprintf("Reversal of voucher #%d", original.Number)
	}
	// Reversals post as JOURNAL: mirrored lines would fail the original
	// type's shape policy (a reversed SALE has no revenue credit).
	reversal := PostingInput{
		Type:         TypeJournal,
		Date:         original.Date,
		Narration:    narration,
		Counterparty: original.Counterparty,
		SourceRef:    uuid.New(),
		Lines:        mirrorLines(original.Lines),
	}
	return s.PostVoucher(ctx, companyID, reversal)
}

// GetVoucher fetches a voucher with its lines.
func (s *Service) GetVoucher(ctx context.Context, companyID, id int64) (Voucher, error) {
	return s.repo.GetVoucherWithLines(ctx, companyID, id)
}

// List returns vouchers matching the filter, lines included.
func (s *Service) List(ctx context.Context, companyID int64, filter ListFilter) ([]Voucher, error) {
	return s.repo.List(ctx, companyID, filter)
}

func uniqueLedgerIDs(lines []LineInput) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.LedgerID]; ok {
			continue
		}
		seen[line.LedgerID] = struct{}{}
		ids = append(ids, line.LedgerID)
	}
	return ids
}

func mirrorLines(lines []VoucherLine) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		side := SideDebit
		if line.Side == SideDebit {
			side = SideCredit
		}
		out = append(out, LineInput{
			LedgerID:  line.LedgerID,
			Side:      side,
			Amount:    line.Amount,
			Narration: line.Narration,
		})
	}
	return out
}

func toLines(voucherID int64, lines []LineInput) []VoucherLine {
	out := make([]VoucherLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, VoucherLine{
			VoucherID: voucherID,
			LedgerID:  line.LedgerID,
			Side:      line.Side,
			Amount:    line.Amount,
			Narration: line.Narration,
		})
	}
	return out
}
