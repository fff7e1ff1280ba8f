package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/model"
)

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

// DeleteAccountHandler removes the caller together with all purchases and sessions.
func (h *UserHandler) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByID(h.db, userID)
	if err != nil {
		log.Error("Failed to get user for account deletion", "error", err)
		sendJSONError(w, "Failed to retrieve user information", http.StatusInternalServerError)
		return
	}
	if err := user.CheckPassword(req.Password); err != nil {
		log.Warn("Password mismatch for account deletion")
		sendJSONError(w, "Incorrect password. Account deletion failed.", http.StatusForbidden)
		return
	}

	txDB, err := h.db.BeginTx(r.Context(), nil)
	if err != nil {
		log.Error("Failed to begin transaction for account deletion", "error", err)
		sendJSONError(w, "Failed to delete account", http.StatusInternalServerError)
		return
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := txDB.Rollback(); rbErr != nil {
				log.Error("Error rolling back DB transaction for account deletion", "rollbackError", rbErr)
			}
		}
	}()

	for _, stmt := range []struct{ query, what string }{
		{"DELETE FROM purchases WHERE user_id = ?", "purchases"},
		{"DELETE FROM sessions WHERE user_id = ?", "sessions"},
		{"DELETE FROM users WHERE id = ?", "user"},
	} {
		if _, err = txDB.ExecContext(r.Context(), stmt.query, userID); err != nil {
			log.Error("Failed to delete account data", "table", stmt.what, "error", err)
			sendJSONError(w, "Failed to delete account", http.StatusInternalServerError)
			return
		}
	}

	if err = txDB.Commit(); err != nil {
		log.Error("Failed to commit transaction for account deletion", "error", err)
		sendJSONError(w, "Failed to finalize account deletion", http.StatusInternalServerError)
		return
	}
	committed = true

	if h.stats != nil {
		h.stats.InvalidateUserCache(userID)
	}
	log.Info("Account deleted successfully")
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) HandleCheckUserData(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	var count int
	err := h.db.QueryRowContext(r.Context(), "SELECT COUNT(*) FROM purchases WHERE user_id = ?", userID).Scan(&count)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error checking user data", "error", err)
		sendJSONError(w, "failed to check user data", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"hasData": count > 0, "count": count})
}
