// backend/src/handlers/router.go
package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/username/expensetracker/backend/src/security"
	"github.com/username/expensetracker/backend/src/services"
)

// RouterConfig carries everything the HTTP API needs.
type RouterConfig struct {
	DB                  *sql.DB
	AuthService         *security.AuthService
	PurchaseService     services.PurchaseService
	StatsService        services.StatsService
	ImportExportService services.ImportExportService

	RefreshTokenExpiry time.Duration
	MaxUploadSizeBytes int64
	AllowedOrigins     []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// NewRouter builds the chi router serving the /api tree.
func NewRouter(cfg RouterConfig) http.Handler {
	userHandler := NewUserHandler(cfg.DB, cfg.AuthService, cfg.StatsService, cfg.RefreshTokenExpiry)
	purchaseHandler := NewPurchaseHandler(cfg.PurchaseService)
	statsHandler := NewStatsHandler(cfg.StatsService)
	importExportHandler := NewImportExportHandler(cfg.ImportExportService, cfg.MaxUploadSizeBytes)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(ContextualLoggerMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.RateLimitRPS > 0 {
		r.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", userHandler.HealthHandler)

		r.Post("/auth/register", userHandler.RegisterUserHandler)
		r.Post("/auth/login", userHandler.LoginUserHandler)
		r.Post("/auth/refresh", userHandler.RefreshTokenHandler)

		r.Group(func(r chi.Router) {
			r.Use(userHandler.AuthMiddleware)

			r.Post("/auth/logout", userHandler.LogoutUserHandler)
			r.Get("/user/me", userHandler.GetCurrentUserHandler)
			r.Get("/user/has-data", userHandler.HandleCheckUserData)
			r.Post("/user/change-password", userHandler.ChangePasswordHandler)
			r.Post("/user/delete-account", userHandler.DeleteAccountHandler)

			r.Get("/purchases", purchaseHandler.HandleListPurchases)
			r.Post("/purchases", purchaseHandler.HandleCreatePurchase)
			r.Get("/purchases/{id}", purchaseHandler.HandleGetPurchase)
			r.Put("/purchases/{id}", purchaseHandler.HandleUpdatePurchase)
			r.Delete("/purchases/{id}", purchaseHandler.HandleDeletePurchase)

			r.Get("/stats/by-category", statsHandler.HandleGetStatsByCategory)
			r.Get("/stats/summary", statsHandler.HandleGetSummary)

			r.Get("/import-export/export/{format}", importExportHandler.HandleExport)
			r.Post("/import-export/import/{format}", importExportHandler.HandleImport)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			sendJSONError(w, "Route not found", http.StatusNotFound)
		})
	})

	return r
}
