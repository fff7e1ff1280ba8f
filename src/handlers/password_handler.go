package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/model"
	"github.com/username/expensetracker/backend/src/security/validation"
)

type ChangePasswordRequest struct {
	CurrentPassword    string `json:"current_password"`
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}

// ChangePasswordHandler replaces the caller's password and signs out every
// other session. A fresh token pair is returned for the current client.
func (h *UserHandler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.NewPassword != req.ConfirmNewPassword {
		sendJSONError(w, "New passwords do not match", http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByID(h.db, userID)
	if err != nil {
		log.Error("Failed to get user for password change", "error", err)
		sendJSONError(w, "Failed to retrieve user information", http.StatusInternalServerError)
		return
	}

	if err := user.CheckPassword(req.CurrentPassword); err != nil {
		log.Warn("Current password mismatch for password change")
		sendJSONError(w, "Incorrect current password", http.StatusForbidden)
		return
	}

	hashedNewPassword, err := h.authService.HashPassword(req.NewPassword)
	if err != nil {
		log.Error("Failed to hash new password", "error", err)
		sendJSONError(w, "Failed to process new password", http.StatusInternalServerError)
		return
	}

	if err := user.UpdatePassword(h.db, hashedNewPassword); err != nil {
		log.Error("Failed to update password in DB", "error", err)
		sendJSONError(w, "Failed to change password", http.StatusInternalServerError)
		return
	}

	if err := model.DeleteSessionsForUser(h.db, userID); err != nil {
		log.Error("Failed to revoke sessions after password change", "error", err)
	}
	accessToken, refreshToken, err := h.issueSession(r, userID)
	if err != nil {
		log.Error("Failed to create session after password change", "error", err)
		sendJSONError(w, "Password changed, please log in again", http.StatusInternalServerError)
		return
	}

	log.Info("Password changed successfully")
	sendJSON(w, http.StatusOK, map[string]string{
		"message":       "Password changed successfully.",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}
