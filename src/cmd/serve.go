// backend/src/cmd/serve.go
package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/expensetracker/backend/src/config"
	"github.com/username/expensetracker/backend/src/handlers"
	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/model"
	"github.com/username/expensetracker/backend/src/security"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout      = 15 * time.Second
	sessionSweepInterval = time.Hour
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), config.Cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.AppConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger.L.Info("Expense tracker backend starting...")

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	router := handlers.NewRouter(handlers.RouterConfig{
		DB:                  a.db,
		AuthService:         security.NewAuthService(cfg.JWTSecret, cfg.AccessTokenExpiry),
		PurchaseService:     a.purchases,
		StatsService:        a.stats,
		ImportExportService: a.importExport,
		RefreshTokenExpiry:  cfg.RefreshTokenExpiry,
		MaxUploadSizeBytes:  cfg.MaxUploadSizeBytes,
		AllowedOrigins:      cfg.AllowedOrigins,
		RateLimitRPS:        cfg.RateLimitRPS,
		RateLimitBurst:      cfg.RateLimitBurst,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.L.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.L.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				n, err := model.DeleteExpiredSessions(a.db, time.Now())
				if err != nil {
					logger.L.Error("Failed to delete expired sessions", "error", err)
					continue
				}
				if n > 0 {
					logger.L.Info("Expired sessions removed", "count", n)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.L.Error("Server stopped with error", "error", err)
		return err
	}
	logger.L.Info("Server stopped")
	return nil
}
