package coa

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// Handler exposes the chart of accounts as a JSON API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes attaches the chart-of-accounts routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/hierarchy", h.Hierarchy)
	r.Post("/groups", h.CreateGroup)
	r.Put("/groups/{id}", h.UpdateGroup)
	r.Post("/subgroups", h.CreateSubGroup)
	r.Post("/ledgers", h.CreateLedger)
	r.Delete("/ledgers/{id}", h.DeleteLedger)
}

type groupRequest struct {
	Name string `json:"name" validate:"required"`
	Kind string `json:"kind" validate:"required,oneof=ASSETS LIABILITIES INCOME EXPENSES EQUITY"`
}

type subGroupRequest struct {
	Name           string `json:"name" validate:"required"`
	GroupID        int64  `json:"group_id" validate:"required"`
	Classification string `json:"classification" validate:"omitempty,oneof=CURRENT FIXED LONG_TERM NONE"`
}

type ledgerRequest struct {
	Name           string `json:"name" validate:"required"`
	GroupID        *int64 `json:"group_id"`
	SubGroupID     *int64 `json:"subgroup_id"`
	OpeningBalance string `json:"opening_balance"`
	IsCash         bool   `json:"is_cash"`
	IsTax          bool   `json:"is_tax"`
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Company", "company header required")
		return
	}
	var req groupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	group, err := h.service.CreateGroup(r.Context(), companyID, CreateGroupInput{Name: req.Name, Kind: GroupKind(req.Kind)})
	if err != nil {
		h.logger.Error("create group", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, group)
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Company", "company header required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid group id")
		return
	}
	var req groupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	group, err := h.service.UpdateGroup(r.Context(), companyID, id, CreateGroupInput{Name: req.Name, Kind: GroupKind(req.Kind)})
	if err != nil {
		h.logger.Error("update group", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, group)
}

func (h *Handler) CreateSubGroup(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Company", "company header required")
		return
	}
	var req subGroupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sub, err := h.service.CreateSubGroup(r.Context(), companyID, CreateSubGroupInput{
		Name:           req.Name,
		GroupID:        req.GroupID,
		Classification: Classification(req.Classification),
	})
	if err != nil {
		h.logger.Error("create subgroup", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sub)
}

func (h *Handler) CreateLedger(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Company", "company header required")
		return
	}
	var req ledgerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	opening := decimal.Zero
	if req.OpeningBalance != "" {
		var err error
		opening, err = decimal.NewFromString(req.OpeningBalance)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid opening balance")
			return
		}
	}
	ledger, err := h.service.CreateLedger(r.Context(), companyID, CreateLedgerInput{
		Name:           req.Name,
		GroupID:        req.GroupID,
		SubGroupID:     req.SubGroupID,
		OpeningBalance: opening,
		IsCash:         req.IsCash,
		IsTax:          req.IsTax,
	})
	if err != nil {
		h.logger.Error("create ledger", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ledger)
}

func (h *Handler) DeleteLedger(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Company", "company header required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid ledger id")
		return
	}
	if err := h.service.DeleteLedger(r.Context(), companyID, id); err != nil {
		h.logger.Error("delete ledger", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	companyID, ok := shared.CompanyFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Missing Company", "company header required")
		return
	}
	tree, err := h.service.ListHierarchy(r.Context(), companyID)
	if err != nil {
		h.logger.Error("list hierarchy", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tree)
}
