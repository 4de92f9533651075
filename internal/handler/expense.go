package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/moneypot/moneypot/internal/ctxkeys"
	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
	"github.com/moneypot/moneypot/internal/service"
)

type expenseResponse struct {
	ID          string    `json:"id"`
	PotID       string    `json:"potId"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Recurring   bool      `json:"recurring"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newExpenseResponse(expense *model.Expense) expenseResponse {
	return expenseResponse{
		ID:          expense.ID,
		PotID:       expense.PotID,
		Description: expense.Description,
		Amount:      expense.Amount,
		Category:    expense.Category,
		Date:        expense.Date,
		Recurring:   expense.Recurring,
		Notes:       expense.Notes,
		CreatedAt:   expense.CreatedAt,
	}
}

type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
	}
}

// List supports query filtering by pot, category, date range, recurring
// flag, and limit/offset pagination.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	query := r.URL.Query()

	filter := repository.ExpenseFilter{
		PotID:    query.Get("potId"),
		Category: query.Get("category"),
	}
	if v := query.Get("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Invalid from date")
			return
		}
		filter.From = &from
	}
	if v := query.Get("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Invalid to date")
			return
		}
		filter.To = &to
	}
	if v := query.Get("recurring"); v != "" {
		recurring, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Invalid recurring flag")
			return
		}
		filter.Recurring = &recurring
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			writeError(w, http.StatusUnprocessableEntity, "Invalid limit")
			return
		}
		filter.Limit = limit
	}
	if v := query.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			writeError(w, http.StatusUnprocessableEntity, "Invalid offset")
			return
		}
		filter.Offset = offset
	}

	expenses, err := h.expenseService.Expenses(userID, filter)
	if err != nil {
		slog.Error("failed to list expenses", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load expenses")
		return
	}

	responses := make([]expenseResponse, len(expenses))
	for i, expense := range expenses {
		responses[i] = newExpenseResponse(expense)
	}

	writeJSON(w, http.StatusOK, responses)
}

type expenseCreateRequest struct {
	PotID       string     `json:"potId"`
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`
	Category    string     `json:"category"`
	Date        *time.Time `json:"date"`
	Recurring   bool       `json:"recurring"`
	Notes       *string    `json:"notes"`
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req expenseCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Description == "" {
		writeError(w, http.StatusUnprocessableEntity, "Description is required")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "Amount must be positive")
		return
	}
	if !model.ValidExpenseCategory(req.Category) {
		writeError(w, http.StatusUnprocessableEntity, "Invalid expense category: "+req.Category)
		return
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}

	expense, err := h.expenseService.Create(userID, service.ExpenseSpec{
		PotID:       req.PotID,
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        date,
		Recurring:   req.Recurring,
		Notes:       req.Notes,
	})
	if err == repository.ErrPotNotFound {
		writeError(w, http.StatusNotFound, "Pot not found")
		return
	}
	if err != nil {
		slog.Error("failed to create expense", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to create expense")
		return
	}

	writeJSON(w, http.StatusCreated, newExpenseResponse(expense))
}

func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	expenseID := r.PathValue("id")

	expense, err := h.expenseService.ByID(userID, expenseID)
	if err == repository.ErrExpenseNotFound {
		writeError(w, http.StatusNotFound, "Expense not found")
		return
	}
	if err != nil {
		slog.Error("failed to get expense", "error", err, "user_id", userID, "expense_id", expenseID)
		writeError(w, http.StatusInternalServerError, "Failed to load expense")
		return
	}

	writeJSON(w, http.StatusOK, newExpenseResponse(expense))
}

type expenseUpdateRequest struct {
	PotID       *string    `json:"potId"`
	Description *string    `json:"description"`
	Amount      *float64   `json:"amount"`
	Category    *string    `json:"category"`
	Date        *time.Time `json:"date"`
	Recurring   *bool      `json:"recurring"`
	Notes       *string    `json:"notes"`
}

func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	expenseID := r.PathValue("id")

	var req expenseUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Amount != nil && *req.Amount <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "Amount must be positive")
		return
	}
	if req.Category != nil && !model.ValidExpenseCategory(*req.Category) {
		writeError(w, http.StatusUnprocessableEntity, "Invalid expense category: "+*req.Category)
		return
	}

	expense, err := h.expenseService.Update(userID, expenseID, service.ExpenseUpdate{
		PotID:       req.PotID,
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Date:        req.Date,
		Recurring:   req.Recurring,
		Notes:       req.Notes,
	})
	if err == repository.ErrExpenseNotFound {
		writeError(w, http.StatusNotFound, "Expense not found")
		return
	}
	if err == repository.ErrPotNotFound {
		writeError(w, http.StatusNotFound, "Pot not found")
		return
	}
	if err != nil {
		slog.Error("failed to update expense", "error", err, "user_id", userID, "expense_id", expenseID)
		writeError(w, http.StatusInternalServerError, "Failed to update expense")
		return
	}

	writeJSON(w, http.StatusOK, newExpenseResponse(expense))
}

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	expenseID := r.PathValue("id")

	err := h.expenseService.Delete(userID, expenseID)
	if err == repository.ErrExpenseNotFound {
		writeError(w, http.StatusNotFound, "Expense not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete expense", "error", err, "user_id", userID, "expense_id", expenseID)
		writeError(w, http.StatusInternalServerError, "Failed to delete expense")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type expenseSummaryResponse struct {
	Total       float64            `json:"total"`
	ByCategory  map[string]float64 `json:"byCategory"`
	PeriodStart time.Time          `json:"periodStart"`
	PeriodEnd   time.Time          `json:"periodEnd"`
}

// Summary totals spending for a period; defaults to the current month.
func (h *ExpenseHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	query := r.URL.Query()

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := now

	if v := query.Get("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Invalid from date")
			return
		}
		from = parsed
	}
	if v := query.Get("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Invalid to date")
			return
		}
		to = parsed
	}

	summary, err := h.expenseService.Summary(userID, from, to)
	if err != nil {
		slog.Error("failed to summarize expenses", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load summary")
		return
	}

	writeJSON(w, http.StatusOK, expenseSummaryResponse{
		Total:       summary.Total,
		ByCategory:  summary.ByCategory,
		PeriodStart: summary.PeriodStart,
		PeriodEnd:   summary.PeriodEnd,
	})
}
