package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/moneypot/moneypot/internal/ctxkeys"
	"github.com/moneypot/moneypot/internal/service"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	dashboard, err := h.analyticsService.Dashboard(userID)
	if err != nil {
		slog.Error("failed to build dashboard", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

func (h *AnalyticsHandler) SpendingTrends(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusUnprocessableEntity, "Invalid days")
			return
		}
		days = parsed
	}

	trend, err := h.analyticsService.SpendingTrends(userID, days)
	if err != nil {
		slog.Error("failed to build spending trends", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load spending trends")
		return
	}

	writeJSON(w, http.StatusOK, trend)
}

func (h *AnalyticsHandler) PotDistribution(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	distribution, err := h.analyticsService.PotDistribution(userID)
	if err != nil {
		slog.Error("failed to build pot distribution", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load pot distribution")
		return
	}

	writeJSON(w, http.StatusOK, distribution)
}

func (h *AnalyticsHandler) GoalProgress(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	progress, err := h.analyticsService.GoalProgress(userID)
	if err != nil {
		slog.Error("failed to build goal progress", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load goal progress")
		return
	}

	writeJSON(w, http.StatusOK, progress)
}
