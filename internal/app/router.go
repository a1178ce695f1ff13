package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stockmitra/stockmitra/internal/company"
	"github.com/stockmitra/stockmitra/internal/stock"
	"github.com/stockmitra/stockmitra/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	CompanyHandler *company.Handler
	StockHandler   *stock.Handler
	ReportHandler  *report.Handler
}

// NewRouter constructs the chi.Router with the API routes.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/companies", func(r chi.Router) {
		params.CompanyHandler.MountRoutes(r)
		r.Route("/{company}", func(r chi.Router) {
			params.StockHandler.MountRoutes(r)
			params.ReportHandler.MountRoutes(r)
		})
	})

	return r
}
