package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/stockmitra/stockmitra/internal/app"
	"github.com/stockmitra/stockmitra/internal/company"
	"github.com/stockmitra/stockmitra/internal/stock"
	"github.com/stockmitra/stockmitra/internal/txlog"
	"github.com/stockmitra/stockmitra/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Default().Warn("load .env", slog.Any("error", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	registry := company.NewRegistry(cfg.DataDir, logger)
	service := stock.NewService(stock.NewFileLedger(), txlog.NewStore(), stock.ServiceConfig{
		Dashboard: &stock.DashboardConfig{
			LowStockThreshold: cfg.LowStockThreshold,
			ExpirySoonDays:    cfg.ExpirySoonDays,
		},
	}, logger)
	money := report.NewFormatter(cfg.CurrencySymbol)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		CompanyHandler: company.NewHandler(logger, registry),
		StockHandler:   stock.NewHandler(logger, service, registry),
		ReportHandler:  report.NewHandler(logger, service, registry, money),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("data_dir", cfg.DataDir))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
