package httpx

import (
	"errors"
	"net/http"

	acct "github.com/meridian-erp/meridian-erp/internal/accounting/shared"
)

// RespondError maps domain errors to RFC7807 responses. Validation failures
// are 4xx and fully recoverable by the caller; ErrInconsistent is the one
// case that is a server defect and surfaces as 500.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, acct.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, acct.ErrDuplicateName),
		errors.Is(err, acct.ErrHasPostings),
		errors.Is(err, acct.ErrKindLocked),
		errors.Is(err, acct.ErrSourceAlreadyLinked):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, acct.ErrUnbalanced),
		errors.Is(err, acct.ErrTooFewLines),
		errors.Is(err, acct.ErrInvalidShape),
		errors.Is(err, acct.ErrInactiveLedger):
		Problem(w, http.StatusUnprocessableEntity, "Invalid Voucher", err.Error())
	case errors.Is(err, acct.ErrInvalidParent):
		Problem(w, http.StatusBadRequest, "Invalid Parent", err.Error())
	case errors.Is(err, acct.ErrInconsistent):
		Problem(w, http.StatusInternalServerError, "Inconsistent", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
