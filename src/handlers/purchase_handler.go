// backend/src/handlers/purchase_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/models"
	"github.com/username/expensetracker/backend/src/repository"
	"github.com/username/expensetracker/backend/src/services"
)

type PurchaseHandler struct {
	purchaseService services.PurchaseService
}

func NewPurchaseHandler(purchaseService services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

// sendServiceError maps service errors onto status codes. Internal details are
// logged, never sent.
func sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		sendJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repository.ErrNotFound):
		sendJSONError(w, "Purchase not found", http.StatusNotFound)
	default:
		logger.FromContext(r.Context()).Error("Request failed", "path", r.URL.Path, "error", err)
		sendJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func parseDateQuery(r *http.Request, name string) (*models.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a date in YYYY-MM-DD format", name)
	}
	return &d, nil
}

// parsePurchaseFilter reads category, start_date and end_date.
func parsePurchaseFilter(r *http.Request) (models.PurchaseFilter, error) {
	var filter models.PurchaseFilter
	var err error
	filter.Category = strings.TrimSpace(r.URL.Query().Get("category"))
	if filter.StartDate, err = parseDateQuery(r, "start_date"); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parseDateQuery(r, "end_date"); err != nil {
		return filter, err
	}
	return filter, nil
}

// queryInt returns the integer query parameter name, or 0 when absent or invalid.
func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

func purchaseIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func decodePurchaseInput(r *http.Request) (services.PurchaseInput, error) {
	var input services.PurchaseInput
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	err := dec.Decode(&input)
	return input, err
}

func (h *PurchaseHandler) HandleListPurchases(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	filter, err := parsePurchaseFilter(r)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	page := models.Page{Page: queryInt(r, "page"), Limit: queryInt(r, "limit")}

	purchases, pagination, err := h.purchaseService.List(r.Context(), userID, filter, page)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	if purchases == nil {
		purchases = []models.Purchase{}
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"data":       purchases,
		"pagination": pagination,
	})
}

func (h *PurchaseHandler) HandleGetPurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	id, ok := purchaseIDParam(r)
	if !ok {
		sendJSONError(w, "Invalid purchase ID", http.StatusBadRequest)
		return
	}

	purchase, err := h.purchaseService.Get(r.Context(), userID, id)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"purchase": purchase})
}

func (h *PurchaseHandler) HandleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	input, err := decodePurchaseInput(r)
	if err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	purchase, err := h.purchaseService.Create(r.Context(), userID, input)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Purchase added",
		"purchase": purchase,
	})
}

func (h *PurchaseHandler) HandleUpdatePurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	id, ok := purchaseIDParam(r)
	if !ok {
		sendJSONError(w, "Invalid purchase ID", http.StatusBadRequest)
		return
	}

	input, err := decodePurchaseInput(r)
	if err != nil {
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	purchase, err := h.purchaseService.Update(r.Context(), userID, id, input)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Purchase updated",
		"purchase": purchase,
	})
}

func (h *PurchaseHandler) HandleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	id, ok := purchaseIDParam(r)
	if !ok {
		sendJSONError(w, "Invalid purchase ID", http.StatusBadRequest)
		return
	}

	if err := h.purchaseService.Delete(r.Context(), userID, id); err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"message": "Purchase deleted"})
}
