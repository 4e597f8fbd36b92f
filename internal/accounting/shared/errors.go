package shared

import "errors"

var (
	// ErrNotFound indicates a referenced group, subgroup, ledger or voucher
	// is absent or belongs to a different company.
	ErrNotFound = errors.New("accounting: not found")
	// ErrDuplicateName indicates a chart-of-accounts naming collision.
	ErrDuplicateName = errors.New("accounting: name already in use")
	// ErrInvalidParent indicates a ledger supplied both or neither parent.
	ErrInvalidParent = errors.New("accounting: ledger requires exactly one parent")
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = errors.New("accounting: voucher lines must balance")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("accounting: voucher requires at least two lines")
	// ErrInvalidShape indicates a voucher-type policy violation.
	ErrInvalidShape = errors.New("accounting: voucher shape invalid for its type")
	// ErrHasPostings indicates deletion blocked by posting history.
	ErrHasPostings = errors.New("accounting: ledger has postings")
	// ErrKindLocked indicates a group kind change after postings exist.
	ErrKindLocked = errors.New("accounting: group kind locked by postings")
	// ErrInactiveLedger indicates a posting against a soft-deleted ledger.
	ErrInactiveLedger = errors.New("accounting: ledger is inactive")
	// ErrSourceAlreadyLinked indicates idempotency conflict on source ref.
	ErrSourceAlreadyLinked = errors.New("accounting: source already posted")
	// ErrInconsistent indicates an internal invariant check failed. It must
	// never happen in correct operation and is escalated, not corrected.
	ErrInconsistent = errors.New("accounting: ledger invariant violated")
)
