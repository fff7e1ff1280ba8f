// backend/src/handlers/auth_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/model"
	"github.com/username/expensetracker/backend/src/security/validation"
)

// issueSession creates an access/refresh token pair and stores it as a session.
func (h *UserHandler) issueSession(r *http.Request, userID int64) (string, string, error) {
	accessToken, err := h.authService.GenerateToken(strconv.FormatInt(userID, 10))
	if err != nil {
		return "", "", err
	}
	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		return "", "", err
	}

	session := &model.Session{
		UserID:       userID,
		Token:        accessToken,
		RefreshToken: refreshToken,
		UserAgent:    r.UserAgent(),
		ClientIP:     r.RemoteAddr,
		ExpiresAt:    time.Now().Add(h.refreshTokenExpiry),
	}
	if err := model.CreateSession(h.db, session); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var credentials struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	credentials.Email = strings.ToLower(validation.SanitizeText(credentials.Email))
	if strings.TrimSpace(credentials.Username) == "" && strings.Contains(credentials.Email, "@") {
		credentials.Username = strings.Split(credentials.Email, "@")[0]
	}

	username, err := validation.ValidateTextField(credentials.Username, validation.MaxUsernameLength, "username")
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateEmail(credentials.Email); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePassword(credentials.Password); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	exists, err := model.UserExists(h.db, credentials.Email, username)
	if err != nil {
		log.Error("Error checking user uniqueness", "error", err)
		sendJSONError(w, "Failed to process registration", http.StatusInternalServerError)
		return
	}
	if exists {
		sendJSONError(w, "User with this email or username already exists", http.StatusConflict)
		return
	}

	hashedPassword, err := h.authService.HashPassword(credentials.Password)
	if err != nil {
		log.Error("Failed to hash password", "error", err)
		sendJSONError(w, "Failed to process registration", http.StatusInternalServerError)
		return
	}

	user := &model.User{Username: username, Email: credentials.Email, Password: hashedPassword}
	if err := user.CreateUser(h.db); err != nil {
		if errors.Is(err, model.ErrDuplicateUser) {
			sendJSONError(w, "User with this email or username already exists", http.StatusConflict)
			return
		}
		log.Error("Failed to create user in DB", "error", err)
		sendJSONError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	accessToken, refreshToken, err := h.issueSession(r, user.ID)
	if err != nil {
		log.Error("Failed to create session after registration", "userID", user.ID, "error", err)
		sendJSONError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	log.Info("User registered", "userID", user.ID)
	sendJSON(w, http.StatusCreated, map[string]interface{}{
		"message":       "User registered successfully",
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          userView(user),
	})
}

func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.Warn("Invalid request body for login", "error", err)
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	credentials.Email = strings.ToLower(validation.SanitizeText(credentials.Email))
	if credentials.Email == "" || credentials.Password == "" {
		sendJSONError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByEmail(h.db, credentials.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("User lookup by email failed for login", "error", err)
		}
		sendJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	if err := user.CheckPassword(credentials.Password); err != nil {
		log.Warn("Password check failed for login", "userID", user.ID)
		sendJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	accessToken, refreshToken, err := h.issueSession(r, user.ID)
	if err != nil {
		log.Error("Failed to create session", "userID", user.ID, "error", err)
		sendJSONError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	log.Info("User login successful, tokens generated", "userID", user.ID)
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          userView(user),
	})
}

func (h *UserHandler) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var requestBody struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if requestBody.RefreshToken == "" {
		sendJSONError(w, "Refresh token is required", http.StatusBadRequest)
		return
	}

	session, err := model.GetSessionByRefreshToken(h.db, requestBody.RefreshToken)
	if err != nil {
		log.Warn("Refresh token lookup failed or token invalid/expired", "error", err)
		sendJSONError(w, "Invalid or expired refresh token", http.StatusUnauthorized)
		return
	}

	newAccessToken, err := h.authService.GenerateToken(strconv.FormatInt(session.UserID, 10))
	if err != nil {
		log.Error("Failed to generate new access token on refresh", "userID", session.UserID, "error", err)
		sendJSONError(w, "Failed to generate new access token", http.StatusInternalServerError)
		return
	}
	newRefreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		log.Error("Failed to generate new refresh token on refresh", "userID", session.UserID, "error", err)
		sendJSONError(w, "Failed to generate new refresh token", http.StatusInternalServerError)
		return
	}

	if err := model.RotateSession(h.db, session, newAccessToken, newRefreshToken, time.Now().Add(h.refreshTokenExpiry)); err != nil {
		log.Error("Failed to rotate session on refresh", "userID", session.UserID, "error", err)
		sendJSONError(w, "Failed to refresh session", http.StatusInternalServerError)
		return
	}

	log.Info("Token refreshed successfully", "userID", session.UserID)
	sendJSON(w, http.StatusOK, map[string]string{
		"access_token":  newAccessToken,
		"refresh_token": newRefreshToken,
	})
}

func (h *UserHandler) LogoutUserHandler(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if tokenString := bearerToken(r); tokenString != "" {
		if err := model.DeleteSessionByToken(h.db, tokenString); err != nil {
			log.Warn("Failed to delete session on logout", "error", err)
		} else {
			log.Info("Session invalidated on logout")
		}
	}

	// A client may also hand back its refresh token; an empty body is fine.
	var requestBody struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err == nil && requestBody.RefreshToken != "" {
		if err := model.DeleteSessionByRefreshToken(h.db, requestBody.RefreshToken); err != nil {
			log.Warn("Failed to delete session by refresh token on logout", "error", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
