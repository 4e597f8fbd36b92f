package vouchers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// Handler exposes the posting engine as a JSON API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

type lineRequest struct {
	LedgerID  int64  `json:"ledger_id" validate:"required"`
	Side      string `json:"side" validate:"required,oneof=DEBIT CREDIT"`
	Amount    string `json:"amount" validate:"required"`
	Narration string `json:"narration"`
}

type postRequest struct {
	Type         string        `json:"type" validate:"required,oneof=EXPENSE INCOME CONTRA JOURNAL SALE PURCHASE POS"`
	Date         string        `json:"date" validate:"required,datetime=2006-01-02"`
	Narration    string        `json:"narration"`
	Counterparty string        `json:"counterparty"`
	SourceRef    string        `json:"source_ref" validate:"omitempty,uuid"`
	Lines        []lineRequest `json:"lines" validate:"required,min=2,dive"`
}

type reverseRequest struct {
	Narration string `json:"narration"`
}

func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Company", "company header required")
		return
	}
	var req postRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := toPostingInput(req)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	voucher, err := h.service.PostVoucher(r.Context(), companyID, input)
	if err != nil {
		h.logger.Error("post voucher", slog.Any("error", err), slog.String("type", req.Type))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, voucher)
}

func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Company", "company header required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid voucher id")
		return
	}
	var req reverseRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
			return
		}
	}
	voucher, err := h.service.ReverseVoucher(r.Context(), companyID, ReverseInput{VoucherID: id, Narration: req.Narration})
	if err != nil {
		h.logger.Error("reverse voucher", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, voucher)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Company", "company header required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid voucher id")
		return
	}
	voucher, err := h.service.GetVoucher(r.Context(), companyID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, voucher)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Company", "company header required")
		return
	}
	var filter ListFilter
	filter.Type = VoucherType(r.URL.Query().Get("type"))
	if y := r.URL.Query().Get("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid year")
			return
		}
		filter.Year = year
	}
	if m := r.URL.Query().Get("month"); m != "" {
		month, err := strconv.Atoi(m)
		if err != nil || month < 1 || month > 12 {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid month")
			return
		}
		filter.Month = time.Month(month)
	}
	list, err := h.service.List(r.Context(), companyID, filter)
	if err != nil {
		h.logger.Error("list vouchers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func toPostingInput(req postRequest) (PostingInput, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return PostingInput{}, err
	}
	sourceRef := uuid.Nil
	if req.SourceRef != "" {
		if sourceRef, err = uuid.Parse(req.SourceRef); err != nil {
			return PostingInput{}, err
		}
	}
	lines := make([]LineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		amount, err := decimal.NewFromString(l.Amount)
		if err != nil {
			return PostingInput{}, err
		}
		lines = append(lines, LineInput{
			LedgerID:  l.LedgerID,
			Side:      Side(l.Side),
			Amount:    amount,
			Narration: l.Narration,
		})
	}
	return PostingInput{
		Type:         VoucherType(req.Type),
		Date:         date,
		Narration:    req.Narration,
		Counterparty: req.Counterparty,
		SourceRef:    sourceRef,
		Lines:        lines,
	}, nil
}
