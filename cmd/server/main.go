package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/rongwang/expense-tracker/internal/api"
	"github.com/rongwang/expense-tracker/internal/config"
	"github.com/rongwang/expense-tracker/internal/repository"
	"github.com/rongwang/expense-tracker/internal/service"
	"github.com/rongwang/expense-tracker/internal/session"
	"github.com/rongwang/expense-tracker/internal/share"
	"github.com/rongwang/expense-tracker/internal/utils"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}
	defer db.Close()

	sharer, err := share.New(cfg.Share, session.SystemClock{}, logger)
	if err != nil {
		return fmt.Errorf("failed to set up report sharing: %w", err)
	}
	defer sharer.Close()

	// Create repository
	repo := repository.NewSQLRepository(db)

	// Create service
	svc := service.NewDefaultService(repo, service.Options{
		JWTSecret:      cfg.Auth.JWTSecret,
		TokenDuration:  cfg.Auth.TokenTTL,
		BcryptCost:     cfg.Auth.BcryptCost,
		Clock:          session.SystemClock{},
		Sharer:         sharer,
		ReportTitle:    cfg.Report.Title,
		CurrencySymbol: cfg.Report.CurrencySymbol,
		ReportByMonth:  cfg.Report.ByMonth,
		Logger:         logger,
	})

	// Create API handler
	handler := api.NewHandler(svc)

	// Set up Gin router
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))

	// Set up routes
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", srv.Addr, "driver", cfg.Database.Driver, "share", cfg.Share.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
