package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/moneypot/moneypot/internal/ctxkeys"
	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/service"
)

type userResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Avatar              *string   `json:"avatar,omitempty"`
	MonthlyIncome       float64   `json:"monthlyIncome"`
	Currency            string    `json:"currency"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	CreatedAt           time.Time `json:"createdAt"`
}

func newUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:                  user.ID,
		Name:                user.Name,
		Email:               user.Email,
		Avatar:              user.Avatar,
		MonthlyIncome:       user.MonthlyIncome,
		Currency:            user.Currency,
		OnboardingCompleted: user.OnboardingCompleted,
		CreatedAt:           user.CreatedAt,
	}
}

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	user, err := h.userService.GetOrCreate(userID)
	if err != nil {
		slog.Error("failed to get user", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

type userUpdateRequest struct {
	Name          *string  `json:"name"`
	Email         *string  `json:"email"`
	Avatar        *string  `json:"avatar"`
	MonthlyIncome *float64 `json:"monthlyIncome"`
	Currency      *string  `json:"currency"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req userUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userService.GetOrCreate(userID)
	if err != nil {
		slog.Error("failed to get user", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	user, err = h.userService.Update(user, service.UserUpdate{
		Name:          req.Name,
		Email:         req.Email,
		Avatar:        req.Avatar,
		MonthlyIncome: req.MonthlyIncome,
		Currency:      req.Currency,
	})
	if err != nil {
		slog.Error("failed to update user", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

type potAllocationRequest struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Percentage float64 `json:"percentage"`
	Color      string  `json:"color"`
	Icon       string  `json:"icon"`
}

type onboardingRequest struct {
	Name          string                 `json:"name"`
	MonthlyIncome float64                `json:"monthlyIncome"`
	Currency      string                 `json:"currency"`
	Pots          []potAllocationRequest `json:"pots"`
}

func (h *UserHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req onboardingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	for _, pot := range req.Pots {
		if !model.ValidPotCategory(pot.Category) {
			writeError(w, http.StatusUnprocessableEntity, "Invalid pot category: "+pot.Category)
			return
		}
	}

	user, err := h.userService.GetOrCreate(userID)
	if err != nil {
		slog.Error("failed to get user", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load user")
		return
	}

	allocations := make([]service.PotAllocation, len(req.Pots))
	for i, pot := range req.Pots {
		allocations[i] = service.PotAllocation{
			Name:       pot.Name,
			Category:   pot.Category,
			Percentage: pot.Percentage,
			Color:      pot.Color,
			Icon:       pot.Icon,
		}
	}

	user, err = h.userService.CompleteOnboarding(user, service.OnboardingData{
		Name:          req.Name,
		MonthlyIncome: req.MonthlyIncome,
		Currency:      req.Currency,
		Pots:          allocations,
	})
	if err != nil {
		slog.Error("failed to complete onboarding", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to complete onboarding")
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}
