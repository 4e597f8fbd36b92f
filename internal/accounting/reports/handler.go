package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

const dateLayout = "2006-01-02"

// Handler exposes the read-side reports as a JSON API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches the report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/balance-sheet", h.BalanceSheet)
	r.Get("/day-book", h.DayBook)
	r.Get("/journal-register", h.JournalRegister)
	r.Get("/cash-flow", h.CashFlow)
	r.Get("/tax-summary", h.TaxSummary)
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Company", "company header required")
		return
	}
	date, err := queryDate(r, "as_of")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "as_of must be YYYY-MM-DD")
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), companyID, date)
	if err != nil {
		h.logger.Error("trial balance", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Company", "company header required")
		return
	}
	date, err := queryDate(r, "as_of")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "as_of must be YYYY-MM-DD")
		return
	}
	bs, err := h.service.BalanceSheet(r.Context(), companyID, date)
	if err != nil {
		h.logger.Error("balance sheet", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) DayBook(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Company", "company header required")
		return
	}
	date, err := time.Parse(dateLayout, r.URL.Query().Get("date"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "date must be YYYY-MM-DD")
		return
	}
	book, err := h.service.DayBook(r.Context(), companyID, date)
	if err != nil {
		h.logger.Error("day book", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, book)
}

func (h *Handler) JournalRegister(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Company", "company header required")
		return
	}
	month, year, err := queryMonthYear(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	reg, err := h.service.JournalRegister(r.Context(), companyID, month, year)
	if err != nil {
		h.logger.Error("journal register", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reg)
}

func (h *Handler) CashFlow(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Company", "company header required")
		return
	}
	year, err := queryYear(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "year is required")
		return
	}
	cf, err := h.service.CashFlow(r.Context(), companyID, year)
	if err != nil {
		h.logger.Error("cash flow", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cf)
}

func (h *Handler) TaxSummary(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Company", "company header required")
		return
	}
	year, err := queryYear(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "year is required")
		return
	}
	ts, err := h.service.TaxSummary(r.Context(), companyID, year)
	if err != nil {
		h.logger.Error("tax summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ts)
}

// queryDate reads a date parameter, defaulting to today when absent.
func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(dateLayout, raw)
}

func queryYear(r *http.Request) (int, error) {
	return strconv.Atoi(r.URL.Query().Get("year"))
}

func queryMonthYear(r *http.Request) (time.Month, int, error) {
	m, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || m < 1 || m > 12 {
		return 0, 0, errInvalidPeriod
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return 0, 0, errInvalidPeriod
	}
	return time.Month(m), year, nil
}

var errInvalidPeriod = errors.New("month and year are required")
