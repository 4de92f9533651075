package routes

import (
	"net/http"

	"github.com/moneypot/moneypot/internal/app"
	"github.com/moneypot/moneypot/internal/handler"
	"github.com/moneypot/moneypot/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	user := handler.NewUserHandler(app.UserService)
	pot := handler.NewPotHandler(app.PotService)
	goal := handler.NewGoalHandler(app.GoalService)
	expense := handler.NewExpenseHandler(app.ExpenseService)
	analytics := handler.NewAnalyticsHandler(app.AnalyticsService)
	impact := handler.NewImpactHandler(app.ImpactService)
	insight := handler.NewInsightHandler(app.InsightService)
	chat := handler.NewChatHandler(app.CoachService)

	api := http.NewServeMux()

	// Users
	api.HandleFunc("GET /users/me", user.Me)
	api.HandleFunc("PUT /users/me", user.Update)
	api.HandleFunc("POST /users/me/onboarding", user.CompleteOnboarding)

	// Pots
	api.HandleFunc("GET /pots", pot.List)
	api.HandleFunc("POST /pots", pot.Create)
	api.HandleFunc("GET /pots/{id}", pot.Get)
	api.HandleFunc("PUT /pots/{id}", pot.Update)
	api.HandleFunc("DELETE /pots/{id}", pot.Delete)
	api.HandleFunc("POST /pots/{id}/transfer", pot.Transfer)

	// Goals
	api.HandleFunc("GET /goals", goal.List)
	api.HandleFunc("POST /goals", goal.Create)
	api.HandleFunc("GET /goals/{id}", goal.Get)
	api.HandleFunc("PUT /goals/{id}", goal.Update)
	api.HandleFunc("DELETE /goals/{id}", goal.Delete)
	api.HandleFunc("POST /goals/{id}/contribute", goal.Contribute)
	api.HandleFunc("GET /goals/{id}/milestones", goal.ListMilestones)
	api.HandleFunc("POST /goals/{id}/milestones", goal.CreateMilestone)
	api.HandleFunc("PUT /goals/{id}/milestones/{milestoneId}", goal.UpdateMilestone)

	// Expenses
	api.HandleFunc("GET /expenses", expense.List)
	api.HandleFunc("POST /expenses", expense.Create)
	api.HandleFunc("GET /expenses/summary", expense.Summary)
	api.HandleFunc("GET /expenses/{id}", expense.Get)
	api.HandleFunc("PUT /expenses/{id}", expense.Update)
	api.HandleFunc("DELETE /expenses/{id}", expense.Delete)

	// Analytics
	api.HandleFunc("GET /analytics/dashboard", analytics.Dashboard)
	api.HandleFunc("GET /analytics/spending-trends", analytics.SpendingTrends)
	api.HandleFunc("GET /analytics/pot-distribution", analytics.PotDistribution)
	api.HandleFunc("GET /analytics/goal-progress", analytics.GoalProgress)
	api.HandleFunc("GET /analytics/insights", insight.List)

	// Impact
	api.HandleFunc("POST /impact/analyze", impact.Analyze)
	api.HandleFunc("POST /impact/trade-off", impact.TradeOffs)

	// Chat
	api.HandleFunc("GET /chat/sessions", chat.ListSessions)
	api.HandleFunc("POST /chat/sessions", chat.CreateSession)
	api.HandleFunc("GET /chat/sessions/{id}", chat.GetSession)
	api.HandleFunc("DELETE /chat/sessions/{id}", chat.DeleteSession)
	api.HandleFunc("POST /chat/sessions/{id}/messages", chat.SendMessage)

	apiHandler := middleware.Chain(
		http.StripPrefix("/api/v1", api),
		middleware.RequestLogging,
		middleware.RequireUser,
	)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/", apiHandler)
	mux.HandleFunc("GET /health", handler.Health)

	return mux
}
