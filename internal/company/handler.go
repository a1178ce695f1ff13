package company

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stockmitra/stockmitra/internal/platform/httpx"
)

// Handler wires the company registry endpoints.
type Handler struct {
	logger    *slog.Logger
	registry  *Registry
	validator *validator.Validate
}

// NewHandler constructs the company handler.
func NewHandler(logger *slog.Logger, registry *Registry) *Handler {
	return &Handler{logger: logger, registry: registry, validator: validator.New()}
}

// MountRoutes registers the routes below /api/companies.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleAdd)
}

type listView struct {
	Companies []Company `json:"companies"`
	Warning   string    `json:"warning,omitempty"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	companies, warning, err := h.registry.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listView{Companies: companies, Warning: warning})
}

type addCompanyRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *Handler) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addCompanyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	c, err := h.registry.Add(r.Context(), req.Name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.logger.Info("company registered", "name", c.Name, "store_key", c.StoreKey)
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownCompany):
		httpx.Problem(w, http.StatusNotFound, "Unknown Company", err.Error())
	case errors.Is(err, ErrCompanyExists):
		httpx.Problem(w, http.StatusConflict, "Company Exists", err.Error())
	default:
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
