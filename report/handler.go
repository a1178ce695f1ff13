package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockmitra/stockmitra/internal/company"
	"github.com/stockmitra/stockmitra/internal/platform/httpx"
	"github.com/stockmitra/stockmitra/internal/stock"
	"github.com/stockmitra/stockmitra/internal/txlog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StockProvider supplies the aggregated views the exports render.
type StockProvider interface {
	Overview(ctx context.Context, ledgerKey string) (stock.CompanyView, error)
	Monthly(ctx context.Context, ledgerKey string, scope txlog.Scope) (stock.MonthlyView, error)
	History(ctx context.Context, ledgerKey string) (stock.HistoryView, error)
}

// CompanyResolver resolves a company path segment to its registry row.
type CompanyResolver interface {
	Lookup(ctx context.Context, name string) (company.Company, error)
}

// Handler serves the CSV and XLSX download endpoints.
type Handler struct {
	logger    *slog.Logger
	provider  StockProvider
	companies CompanyResolver
	money     *Formatter
}

// NewHandler constructs the report handler.
func NewHandler(logger *slog.Logger, provider StockProvider, companies CompanyResolver, money *Formatter) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, provider: provider, companies: companies, money: money}
}

// MountRoutes registers the export routes below /api/companies/{company}.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/exports/monthly", h.handleMonthlyExport)
	r.Get("/exports/stock", h.handleStockExport)
	r.Get("/exports/transactions", h.handleHistoryExport)
}

func (h *Handler) ledgerKey(r *http.Request) (string, error) {
	c, err := h.companies.Lookup(r.Context(), chi.URLParam(r, "company"))
	if err != nil {
		return "", err
	}
	return c.StoreKey, nil
}

func (h *Handler) handleMonthlyExport(w http.ResponseWriter, r *http.Request) {
	key, err := h.ledgerKey(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	view, err := h.provider.Monthly(r.Context(), key, txlog.Scope(r.URL.Query().Get("scope")))
	if err != nil {
		h.respondError(w, err)
		return
	}
	name := fmt.Sprintf("monthly_%s", view.Scope)
	switch r.URL.Query().Get("format") {
	case "xlsx":
		setDownloadHeaders(w, name+".xlsx", xlsxContentType)
		err = MonthlyXLSX(w, view.Rows, h.money)
	default:
		setDownloadHeaders(w, name+".csv", "text/csv")
		err = MonthlyCSV(w, view.Rows, h.money)
	}
	if err != nil {
		h.logger.Error("monthly export failed", "error", err)
	}
}

func (h *Handler) handleStockExport(w http.ResponseWriter, r *http.Request) {
	key, err := h.ledgerKey(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	view, err := h.provider.Overview(r.Context(), key)
	if err != nil {
		h.respondError(w, err)
		return
	}
	switch r.URL.Query().Get("format") {
	case "xlsx":
		setDownloadHeaders(w, "stock.xlsx", xlsxContentType)
		err = StockXLSX(w, view.Products, h.money)
	default:
		setDownloadHeaders(w, "stock.csv", "text/csv")
		err = StockCSV(w, view.Products, h.money)
	}
	if err != nil {
		h.logger.Error("stock export failed", "error", err)
	}
}

func (h *Handler) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	key, err := h.ledgerKey(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	view, err := h.provider.History(r.Context(), key)
	if err != nil {
		h.respondError(w, err)
		return
	}
	setDownloadHeaders(w, "transactions.csv", "text/csv")
	if err := HistoryCSV(w, view.Rows, h.money); err != nil {
		h.logger.Error("history export failed", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, company.ErrUnknownCompany) {
		httpx.Problem(w, http.StatusNotFound, "Unknown Company", err.Error())
		return
	}
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func setDownloadHeaders(w http.ResponseWriter, filename, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
