package handler

import (
	"log/slog"
	"net/http"

	"github.com/moneypot/moneypot/internal/ctxkeys"
	"github.com/moneypot/moneypot/internal/service"
)

type InsightHandler struct {
	insightService *service.InsightService
}

func NewInsightHandler(insightService *service.InsightService) *InsightHandler {
	return &InsightHandler{
		insightService: insightService,
	}
}

func (h *InsightHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	insights, err := h.insightService.Insights(userID)
	if err != nil {
		slog.Error("failed to build insights", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load insights")
		return
	}

	writeJSON(w, http.StatusOK, insights)
}
