package stock

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/stockmitra/stockmitra/internal/company"
	"github.com/stockmitra/stockmitra/internal/platform/httpx"
	"github.com/stockmitra/stockmitra/internal/shared"
	"github.com/stockmitra/stockmitra/internal/txlog"
)

// CompanyResolver resolves a company path segment to its registry row.
type CompanyResolver interface {
	Lookup(ctx context.Context, name string) (company.Company, error)
}

// Handler wires the per-company stock and transaction endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	companies CompanyResolver
	validator *validator.Validate
}

// NewHandler constructs the stock handler.
func NewHandler(logger *slog.Logger, service *Service, companies CompanyResolver) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		companies: companies,
		validator: validator.New(),
	}
}

// MountRoutes registers the routes below /api/companies/{company}. The
// download endpoints live in the report package.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/stock", h.handleOverview)
	r.Get("/stock/find", h.handleFind)
	r.Post("/stock", h.handleAddStock)
	r.Post("/sales", h.handleSell)
	r.Put("/cartons/{cartonID}", h.handleUpdateCarton)
	r.Delete("/cartons/{cartonID}", h.handleDeleteCarton)
	r.Get("/transactions", h.handleHistory)
	r.Delete("/transactions", h.handleClearTransactions)
	r.Get("/reports/monthly", h.handleMonthly)
}

func (h *Handler) ledgerKey(r *http.Request) (string, error) {
	c, err := h.companies.Lookup(r.Context(), chi.URLParam(r, "company"))
	if err != nil {
		return "", err
	}
	return c.StoreKey, nil
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	key, err := h.ledgerKey(r)
	if err != nil {
		respondError(w, err)
		return
	}
	view, err := h.service.Dashboard(r.Context(), key)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	key, err := h.ledgerKey(r)
	if err != nil {
		respondError(w, err)
		return
	}
	view, err := h.service.Overview(r.Context(), key)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleFind(w http.ResponseWriter, r *http.Request) {
	key, err := h.ledgerKey(r)
	if err != nil {
		respondError(w, err)
		return
	}
	query := r.URL.Query().Get("q")
	if query == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "query parameter q is required")
		return
	}
	res, err := h.service.FindStock(r.Context(), key, query)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

type addStockRequest struct {
	ProductID     string          `json:"product_id" validate:"required"`
	ProductName   string          `json:"product_name" validate:"required"`
	Company       string          `json:"company"`
	NumCartons    int             `json:"num_cartons" validate:"omitempty,min=1"`
	Quantity      int             `json:"quantity_per_carton" validate:"required,min=1"`
	DamagedUnits  int             `json:"damaged_units" validate:"min=0"`
	Location      string          `json:"location" validate:"required"`
	DateInwarded  shared.Date     `json:"date_inwarded"`
	ExpiryDate    shared.Date     `json:"expiry_date"`
	MRP           decimal.Decimal `json:"mrp"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalesPrice    decimal.Decimal `json:"sales_price"`
}

func (h *Handler) handleAddStock(w http.ResponseWriter, r *http.Request) {
	key, err := h.ledgerKey(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req addStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(w, err)
		return
	}
	if req.NumCartons == 0 {
		req.NumCartons = 1
	}
	if req.DateInwarded.IsZero() {
		req.DateInwarded = shared.DateOf(h.service.clock())
	}
	res, err := h.service.AddStock(r.Context(), key, AddStockInput{
		NewCartonParams: NewCartonParams{
			ProductID:     req.ProductID,
			ProductName:   req.ProductName,
			Company:       req.Company,
			Quantity:      req.Quantity,
			DamagedUnits:  req.DamagedUnits,
			Location:      req.Location,
			DateInwarded:  req.DateInwarded,
			ExpiryDate:    req.ExpiryDate,
			MRP:           req.MRP,
			PurchasePrice: req.PurchasePrice,
			SalesPrice:    req.SalesPrice,
		},
		NumCartons: req.NumCartons,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

type sellRequest struct {
	Query       string `json:"query" validate:"required"`
	FullCartons int    `json:"full_cartons" validate:"min=0"`
	LoosePieces int    `json:"loose_pieces" validate:"min=0"`
}

func (h *Handler) handleSell(w http.ResponseWriter, r *http.Request) {
	key, err := h.ledgerKey(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req sellRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(w, err)
		return
	}
	res, err := h.service.Sell(r.Context(), key, SellInput{
		Query:       req.Query,
		FullCartons: req.FullCartons,
		LoosePieces: req.LoosePieces,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

type updateCartonRequest struct {
	ProductName   *string          `json:"product_name"`
	Quantity      *int             `json:"quantity_per_carton"`
	DamagedUnits  *int             `json:"damaged_units"`
	Location      *string          `json:"location"`
	ExpiryDate    *shared.Date     `json:"expiry_date"`
	MRP           *decimal.Decimal `json:"mrp"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalesPrice    *decimal.Decimal `json:"sales_price"`
}

func (h *Handler) handleUpdateCarton(w http.ResponseWriter, r *http.Request) {
	key, err := h.ledgerKey(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req updateCartonRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", err.Error())
		return
	}
	carton, err := h.service.UpdateCarton(r.Context(), key, chi.URLParam(r, "cartonID"), UpdateCartonInput{
		ProductName:   req.ProductName,
		Quantity:      req.Quantity,
		DamagedUnits:  req.DamagedUnits,
		Location:      req.Location,
		ExpiryDate:    req.ExpiryDate,
		MRP:           req.MRP,
		PurchasePrice: req.PurchasePrice,
		SalesPrice:    req.SalesPrice,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, carton)
}

func (h *Handler) handleDeleteCarton(w http.ResponseWriter, r *http.Request) {
	key, err := h.ledgerKey(r)
	if err != nil {
		respondError(w, err)
		return
	}
	carton, err := h.service.DeleteCarton(r.Context(), key, chi.URLParam(r, "cartonID"))
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, carton)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	key, err := h.ledgerKey(r)
	if err != nil {
		respondError(w, err)
		return
	}
	view, err := h.service.History(r.Context(), key)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleClearTransactions(w http.ResponseWriter, r *http.Request) {
	key, err := h.ledgerKey(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if r.URL.Query().Get("confirm") != "true" {
		httpx.Problem(w, http.StatusBadRequest, "Confirmation Required",
			"clearing transaction logs is irreversible; pass confirm=true")
		return
	}
	if err := h.service.ClearTransactions(r.Context(), key); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMonthly(w http.ResponseWriter, r *http.Request) {
	key, err := h.ledgerKey(r)
	if err != nil {
		respondError(w, err)
		return
	}
	view, err := h.service.Monthly(r.Context(), key, txlog.Scope(r.URL.Query().Get("scope")))
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}
