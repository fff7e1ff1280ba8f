// backend/src/handlers/stats_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/username/expensetracker/backend/src/models"
	"github.com/username/expensetracker/backend/src/services"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) HandleGetStatsByCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var filter models.PurchaseFilter
	var err error
	if filter.StartDate, err = parseDateQuery(r, "start_date"); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if filter.EndDate, err = parseDateQuery(r, "end_date"); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.statsService.ByCategory(r.Context(), userID, filter)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, report)
}

func (h *StatsHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	month, ok := optionalIntQuery(r, "month", 1, 12)
	if !ok {
		sendJSONError(w, "month must be a number between 1 and 12", http.StatusBadRequest)
		return
	}
	year, ok := optionalIntQuery(r, "year", 1, 9999)
	if !ok {
		sendJSONError(w, "year must be a valid year", http.StatusBadRequest)
		return
	}

	report, err := h.statsService.Summary(r.Context(), userID, month, year)
	if err != nil {
		sendServiceError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, report)
}

// optionalIntQuery returns 0 for an absent parameter and false for one outside [min, max].
func optionalIntQuery(r *http.Request, name string, min, max int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return 0, false
	}
	return v, true
}
