package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/moneypot/moneypot/internal/ctxkeys"
	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
	"github.com/moneypot/moneypot/internal/service"
)

type potResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Percentage    float64   `json:"percentage"`
	CurrentAmount float64   `json:"currentAmount"`
	TargetAmount  float64   `json:"targetAmount"`
	Color         string    `json:"color"`
	Icon          string    `json:"icon"`
	CreatedAt     time.Time `json:"createdAt"`
}

func newPotResponse(pot *model.Pot) potResponse {
	return potResponse{
		ID:            pot.ID,
		Name:          pot.Name,
		Category:      pot.Category,
		Percentage:    pot.Percentage,
		CurrentAmount: pot.CurrentAmount,
		TargetAmount:  pot.TargetAmount,
		Color:         pot.Color,
		Icon:          pot.Icon,
		CreatedAt:     pot.CreatedAt,
	}
}

type PotHandler struct {
	potService *service.PotService
}

func NewPotHandler(potService *service.PotService) *PotHandler {
	return &PotHandler{
		potService: potService,
	}
}

func (h *PotHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	pots, err := h.potService.Pots(userID)
	if err != nil {
		slog.Error("failed to list pots", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load pots")
		return
	}

	responses := make([]potResponse, len(pots))
	for i, pot := range pots {
		responses[i] = newPotResponse(pot)
	}

	writeJSON(w, http.StatusOK, responses)
}

type potCreateRequest struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Percentage   float64 `json:"percentage"`
	TargetAmount float64 `json:"targetAmount"`
	Color        string  `json:"color"`
	Icon         string  `json:"icon"`
}

func (h *PotHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req potCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "Name is required")
		return
	}
	if !model.ValidPotCategory(req.Category) {
		writeError(w, http.StatusUnprocessableEntity, "Invalid pot category: "+req.Category)
		return
	}

	pot, err := h.potService.Create(userID, service.PotSpec{
		Name:         req.Name,
		Category:     req.Category,
		Percentage:   req.Percentage,
		TargetAmount: req.TargetAmount,
		Color:        req.Color,
		Icon:         req.Icon,
	})
	if err != nil {
		slog.Error("failed to create pot", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to create pot")
		return
	}

	writeJSON(w, http.StatusCreated, newPotResponse(pot))
}

func (h *PotHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	potID := r.PathValue("id")

	pot, err := h.potService.ByID(userID, potID)
	if err == repository.ErrPotNotFound {
		writeError(w, http.StatusNotFound, "Pot not found")
		return
	}
	if err != nil {
		slog.Error("failed to get pot", "error", err, "user_id", userID, "pot_id", potID)
		writeError(w, http.StatusInternalServerError, "Failed to load pot")
		return
	}

	writeJSON(w, http.StatusOK, newPotResponse(pot))
}

type potUpdateRequest struct {
	Name         *string  `json:"name"`
	Category     *string  `json:"category"`
	Percentage   *float64 `json:"percentage"`
	TargetAmount *float64 `json:"targetAmount"`
	Color        *string  `json:"color"`
	Icon         *string  `json:"icon"`
}

func (h *PotHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	potID := r.PathValue("id")

	var req potUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Category != nil && !model.ValidPotCategory(*req.Category) {
		writeError(w, http.StatusUnprocessableEntity, "Invalid pot category: "+*req.Category)
		return
	}

	pot, err := h.potService.Update(userID, potID, service.PotUpdate{
		Name:         req.Name,
		Category:     req.Category,
		Percentage:   req.Percentage,
		TargetAmount: req.TargetAmount,
		Color:        req.Color,
		Icon:         req.Icon,
	})
	if err == repository.ErrPotNotFound {
		writeError(w, http.StatusNotFound, "Pot not found")
		return
	}
	if err != nil {
		slog.Error("failed to update pot", "error", err, "user_id", userID, "pot_id", potID)
		writeError(w, http.StatusInternalServerError, "Failed to update pot")
		return
	}

	writeJSON(w, http.StatusOK, newPotResponse(pot))
}

func (h *PotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	potID := r.PathValue("id")

	err := h.potService.Delete(userID, potID)
	if err == repository.ErrPotNotFound {
		writeError(w, http.StatusNotFound, "Pot not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete pot", "error", err, "user_id", userID, "pot_id", potID)
		writeError(w, http.StatusInternalServerError, "Failed to delete pot")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type transferRequest struct {
	ToPotID string  `json:"toPotId"`
	Amount  float64 `json:"amount"`
}

type transferResponse struct {
	FromPot potResponse `json:"fromPot"`
	ToPot   potResponse `json:"toPot"`
}

func (h *PotHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	potID := r.PathValue("id")

	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Amount <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "Amount must be positive")
		return
	}

	fromPot, toPot, err := h.potService.Transfer(userID, potID, req.ToPotID, req.Amount)
	if err == repository.ErrPotNotFound {
		writeError(w, http.StatusNotFound, "Pot not found")
		return
	}
	if errors.Is(err, service.ErrInsufficientFunds) || errors.Is(err, service.ErrSameSourceAndDestination) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to transfer between pots", "error", err, "user_id", userID, "pot_id", potID)
		writeError(w, http.StatusInternalServerError, "Failed to transfer")
		return
	}

	writeJSON(w, http.StatusOK, transferResponse{
		FromPot: newPotResponse(fromPot),
		ToPot:   newPotResponse(toPot),
	})
}
