package handler

import (
	"log/slog"
	"net/http"

	"github.com/moneypot/moneypot/internal/ctxkeys"
	"github.com/moneypot/moneypot/internal/repository"
	"github.com/moneypot/moneypot/internal/service"
)

type ImpactHandler struct {
	impactService *service.ImpactService
}

func NewImpactHandler(impactService *service.ImpactService) *ImpactHandler {
	return &ImpactHandler{
		impactService: impactService,
	}
}

type impactRequest struct {
	Amount      float64 `json:"amount"`
	PotID       string  `json:"potId"`
	Description string  `json:"description"`
}

func (h *ImpactHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req impactRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Amount <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "Amount must be positive")
		return
	}

	analysis, err := h.impactService.AnalyzePurchase(userID, req.Amount, req.PotID, req.Description)
	if err == repository.ErrPotNotFound {
		writeError(w, http.StatusNotFound, "Pot not found")
		return
	}
	if err != nil {
		slog.Error("failed to analyze purchase", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to analyze purchase")
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

type tradeOffRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

func (h *ImpactHandler) TradeOffs(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req tradeOffRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Amount <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "Amount must be positive")
		return
	}

	tradeOff, err := h.impactService.TradeOffs(userID, req.Amount, req.Description)
	if err != nil {
		slog.Error("failed to build trade-offs", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to build trade-offs")
		return
	}

	writeJSON(w, http.StatusOK, tradeOff)
}
