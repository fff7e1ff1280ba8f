// backend/src/handlers/user_handler.go

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/model"
	"github.com/username/expensetracker/backend/src/security"
	"github.com/username/expensetracker/backend/src/services"
)

type contextKey string

const userIDContextKey contextKey = "userID"

type UserHandler struct {
	db                 *sql.DB
	authService        *security.AuthService
	stats              services.StatsService
	refreshTokenExpiry time.Duration
}

func NewUserHandler(db *sql.DB, authService *security.AuthService, stats services.StatsService, refreshTokenExpiry time.Duration) *UserHandler {
	if refreshTokenExpiry <= 0 {
		refreshTokenExpiry = 7 * 24 * time.Hour
	}
	return &UserHandler{
		db:                 db,
		authService:        authService,
		stats:              stats,
		refreshTokenExpiry: refreshTokenExpiry,
	}
}

func sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	logger.L.Warn("Sending JSON error to client", "message", message, "statusCode", statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func sendJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L.Error("Error encoding JSON response", "error", err)
	}
}

func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}

// bearerToken extracts the token from the Authorization header. A bare token
// without the "Bearer " prefix is accepted.
func bearerToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return authHeader
}

// userView is the public shape of a user in API responses.
func userView(u *model.User) map[string]interface{} {
	return map[string]interface{}{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"created_at": u.CreatedAt,
	}
}

func (h *UserHandler) GetCurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	user, err := model.GetUserByID(h.db, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			sendJSONError(w, "User not found", http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Failed to load current user", "error", err)
		sendJSONError(w, "Failed to retrieve user information", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"user": userView(user)})
}

// HealthHandler reports whether the database answers.
func (h *UserHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		logger.FromContext(r.Context()).Error("Health check failed", "error", err)
		sendJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
