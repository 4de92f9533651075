package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/moneypot/moneypot/internal/ctxkeys"
	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
	"github.com/moneypot/moneypot/internal/service"
)

type milestoneResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	TargetAmount float64    `json:"targetAmount"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completedAt"`
}

func newMilestoneResponse(milestone *model.Milestone) milestoneResponse {
	return milestoneResponse{
		ID:           milestone.ID,
		Title:        milestone.Title,
		TargetAmount: milestone.TargetAmount,
		Completed:    milestone.Completed,
		CompletedAt:  milestone.CompletedAt,
	}
}

type goalResponse struct {
	ID            string     `json:"id"`
	PotID         string     `json:"potId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	TargetAmount  float64    `json:"targetAmount"`
	CurrentAmount float64    `json:"currentAmount"`
	Progress      float64    `json:"progress"`
	Deadline      *time.Time `json:"deadline"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func newGoalResponse(goal *model.Goal) goalResponse {
	return goalResponse{
		ID:            goal.ID,
		PotID:         goal.PotID,
		Title:         goal.Title,
		Description:   goal.Description,
		TargetAmount:  goal.TargetAmount,
		CurrentAmount: goal.CurrentAmount,
		Progress:      goal.Progress(),
		Deadline:      goal.Deadline,
		Priority:      goal.Priority,
		Status:        goal.Status,
		CreatedAt:     goal.CreatedAt,
	}
}

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	goals, err := h.goalService.Goals(userID)
	if err != nil {
		slog.Error("failed to list goals", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load goals")
		return
	}

	responses := make([]goalResponse, len(goals))
	for i, goal := range goals {
		responses[i] = newGoalResponse(goal)
	}

	writeJSON(w, http.StatusOK, responses)
}

type milestoneCreateRequest struct {
	Title        string  `json:"title"`
	TargetAmount float64 `json:"targetAmount"`
}

type goalCreateRequest struct {
	PotID        string                   `json:"potId"`
	Title        string                   `json:"title"`
	Description  string                   `json:"description"`
	TargetAmount float64                  `json:"targetAmount"`
	Deadline     *time.Time               `json:"deadline"`
	Priority     string                   `json:"priority"`
	Milestones   []milestoneCreateRequest `json:"milestones"`
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req goalCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Title == "" {
		writeError(w, http.StatusUnprocessableEntity, "Title is required")
		return
	}
	if req.TargetAmount <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "Target amount must be positive")
		return
	}
	if req.Priority != "" && !model.ValidGoalPriority(req.Priority) {
		writeError(w, http.StatusUnprocessableEntity, "Invalid priority: "+req.Priority)
		return
	}

	milestones := make([]service.MilestoneSpec, len(req.Milestones))
	for i, m := range req.Milestones {
		milestones[i] = service.MilestoneSpec{
			Title:        m.Title,
			TargetAmount: m.TargetAmount,
		}
	}

	goal, err := h.goalService.Create(userID, service.GoalSpec{
		PotID:        req.PotID,
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		Deadline:     req.Deadline,
		Priority:     req.Priority,
		Milestones:   milestones,
	})
	if err == repository.ErrPotNotFound {
		writeError(w, http.StatusNotFound, "Pot not found")
		return
	}
	if err != nil {
		slog.Error("failed to create goal", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to create goal")
		return
	}

	writeJSON(w, http.StatusCreated, newGoalResponse(goal))
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	goal, err := h.goalService.ByID(userID, goalID)
	if err == repository.ErrGoalNotFound {
		writeError(w, http.StatusNotFound, "Goal not found")
		return
	}
	if err != nil {
		slog.Error("failed to get goal", "error", err, "user_id", userID, "goal_id", goalID)
		writeError(w, http.StatusInternalServerError, "Failed to load goal")
		return
	}

	writeJSON(w, http.StatusOK, newGoalResponse(goal))
}

type goalUpdateRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	TargetAmount *float64   `json:"targetAmount"`
	Deadline     *time.Time `json:"deadline"`
	Priority     *string    `json:"priority"`
	Status       *string    `json:"status"`
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	var req goalUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Priority != nil && !model.ValidGoalPriority(*req.Priority) {
		writeError(w, http.StatusUnprocessableEntity, "Invalid priority: "+*req.Priority)
		return
	}
	if req.Status != nil && !model.ValidGoalStatus(*req.Status) {
		writeError(w, http.StatusUnprocessableEntity, "Invalid status: "+*req.Status)
		return
	}

	goal, err := h.goalService.Update(userID, goalID, service.GoalUpdate{
		Title:        req.Title,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
		Deadline:     req.Deadline,
		Priority:     req.Priority,
		Status:       req.Status,
	})
	if err == repository.ErrGoalNotFound {
		writeError(w, http.StatusNotFound, "Goal not found")
		return
	}
	if err != nil {
		slog.Error("failed to update goal", "error", err, "user_id", userID, "goal_id", goalID)
		writeError(w, http.StatusInternalServerError, "Failed to update goal")
		return
	}

	writeJSON(w, http.StatusOK, newGoalResponse(goal))
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	err := h.goalService.Delete(userID, goalID)
	if err == repository.ErrGoalNotFound {
		writeError(w, http.StatusNotFound, "Goal not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete goal", "error", err, "user_id", userID, "goal_id", goalID)
		writeError(w, http.StatusInternalServerError, "Failed to delete goal")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type contributeRequest struct {
	Amount float64 `json:"amount"`
}

func (h *GoalHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	var req contributeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Amount <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "Amount must be positive")
		return
	}

	goal, err := h.goalService.Contribute(userID, goalID, req.Amount)
	if err == repository.ErrGoalNotFound {
		writeError(w, http.StatusNotFound, "Goal not found")
		return
	}
	if err != nil {
		slog.Error("failed to contribute to goal", "error", err, "user_id", userID, "goal_id", goalID)
		writeError(w, http.StatusInternalServerError, "Failed to contribute")
		return
	}

	writeJSON(w, http.StatusOK, newGoalResponse(goal))
}

func (h *GoalHandler) ListMilestones(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	if _, err := h.goalService.ByID(userID, goalID); err != nil {
		if err == repository.ErrGoalNotFound {
			writeError(w, http.StatusNotFound, "Goal not found")
			return
		}
		slog.Error("failed to get goal", "error", err, "user_id", userID, "goal_id", goalID)
		writeError(w, http.StatusInternalServerError, "Failed to load milestones")
		return
	}

	milestones, err := h.goalService.Milestones(goalID)
	if err != nil {
		slog.Error("failed to list milestones", "error", err, "goal_id", goalID)
		writeError(w, http.StatusInternalServerError, "Failed to load milestones")
		return
	}

	responses := make([]milestoneResponse, len(milestones))
	for i, milestone := range milestones {
		responses[i] = newMilestoneResponse(milestone)
	}

	writeJSON(w, http.StatusOK, responses)
}

func (h *GoalHandler) CreateMilestone(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")

	var req milestoneCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Title == "" {
		writeError(w, http.StatusUnprocessableEntity, "Title is required")
		return
	}
	if req.TargetAmount <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "Target amount must be positive")
		return
	}

	milestone, err := h.goalService.AddMilestone(userID, goalID, service.MilestoneSpec{
		Title:        req.Title,
		TargetAmount: req.TargetAmount,
	})
	if err == repository.ErrGoalNotFound {
		writeError(w, http.StatusNotFound, "Goal not found")
		return
	}
	if err != nil {
		slog.Error("failed to create milestone", "error", err, "user_id", userID, "goal_id", goalID)
		writeError(w, http.StatusInternalServerError, "Failed to create milestone")
		return
	}

	writeJSON(w, http.StatusCreated, newMilestoneResponse(milestone))
}

type milestoneUpdateRequest struct {
	Title        *string  `json:"title"`
	TargetAmount *float64 `json:"targetAmount"`
	Completed    *bool    `json:"completed"`
}

func (h *GoalHandler) UpdateMilestone(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	goalID := r.PathValue("id")
	milestoneID := r.PathValue("milestoneId")

	var req milestoneUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	milestone, err := h.goalService.UpdateMilestone(userID, goalID, milestoneID, service.MilestoneUpdate{
		Title:        req.Title,
		TargetAmount: req.TargetAmount,
		Completed:    req.Completed,
	})
	if err == repository.ErrGoalNotFound {
		writeError(w, http.StatusNotFound, "Goal not found")
		return
	}
	if err == repository.ErrMilestoneNotFound {
		writeError(w, http.StatusNotFound, "Milestone not found")
		return
	}
	if err != nil {
		slog.Error("failed to update milestone", "error", err, "user_id", userID, "milestone_id", milestoneID)
		writeError(w, http.StatusInternalServerError, "Failed to update milestone")
		return
	}

	writeJSON(w, http.StatusOK, newMilestoneResponse(milestone))
}
