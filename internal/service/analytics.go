package service

import (
	"time"

	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
)

// categoryColors matches the chart palette rendered client-side.
var categoryColors = map[string]string{
	model.ExpenseCategoryFood:          "#ef4444",
	model.ExpenseCategoryTransport:     "#f97316",
	model.ExpenseCategoryUtilities:     "#eab308",
	model.ExpenseCategoryEntertainment: "#22c55e",
	model.ExpenseCategoryShopping:      "#06b6d4",
	model.ExpenseCategoryHealth:        "#3b82f6",
	model.ExpenseCategoryEducation:     "#8b5cf6",
	model.ExpenseCategoryOther:         "#6b7280",
}

type ChartDataPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Fill  string  `json:"fill"`
}

type DashboardData struct {
	TotalBalance           float64          `json:"totalBalance"`
	MonthlyIncome          float64          `json:"monthlyIncome"`
	TotalExpensesThisMonth float64          `json:"totalExpensesThisMonth"`
	SavingsRate            float64          `json:"savingsRate"`
	PotDistribution        []ChartDataPoint `json:"potDistribution"`
	SpendingByCategory     []ChartDataPoint `json:"spendingByCategory"`
	ActiveGoalsCount       int              `json:"activeGoalsCount"`
	CompletedGoalsCount    int              `json:"completedGoalsCount"`
}

type TimeSeriesDataPoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type SpendingTrend struct {
	Data             []TimeSeriesDataPoint `json:"data"`
	TotalThisPeriod  float64               `json:"totalThisPeriod"`
	TotalLastPeriod  float64               `json:"totalLastPeriod"`
	ChangePercentage float64               `json:"changePercentage"`
}

type PotDistribution struct {
	Data        []ChartDataPoint `json:"data"`
	TotalAmount float64          `json:"totalAmount"`
}

type GoalProgressData struct {
	GoalID             string     `json:"goalId"`
	Title              string     `json:"title"`
	TargetAmount       float64    `json:"targetAmount"`
	CurrentAmount      float64    `json:"currentAmount"`
	ProgressPercentage float64    `json:"progressPercentage"`
	Status             string     `json:"status"`
	Deadline           *time.Time `json:"deadline,omitempty"`
	DaysRemaining      *int       `json:"daysRemaining,omitempty"`
}

type AnalyticsService struct {
	userRepo    repository.UserRepository
	potRepo     repository.PotRepository
	goalRepo    repository.GoalRepository
	expenseRepo repository.ExpenseRepository
}

func NewAnalyticsService(
	userRepo repository.UserRepository,
	potRepo repository.PotRepository,
	goalRepo repository.GoalRepository,
	expenseRepo repository.ExpenseRepository,
) *AnalyticsService {
	return &AnalyticsService{
		userRepo:    userRepo,
		potRepo:     potRepo,
		goalRepo:    goalRepo,
		expenseRepo: expenseRepo,
	}
}

func (s *AnalyticsService) Dashboard(userID string) (*DashboardData, error) {
	user, err := s.userRepo.ByID(userID)
	if err != nil {
		return nil, err
	}

	pots, err := s.potRepo.Pots(userID)
	if err != nil {
		return nil, err
	}

	totalBalance := 0.0
	potDistribution := []ChartDataPoint{}
	for _, pot := range pots {
		totalBalance += pot.CurrentAmount
		potDistribution = append(potDistribution, ChartDataPoint{
			Name:  pot.Name,
			Value: pot.CurrentAmount,
			Fill:  pot.Color,
		})
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	totalExpenses, err := s.expenseRepo.TotalBetween(userID, monthStart, now)
	if err != nil {
		return nil, err
	}

	categoryTotals, err := s.expenseRepo.TotalsByCategory(userID, monthStart, now)
	if err != nil {
		return nil, err
	}

	spendingByCategory := []ChartDataPoint{}
	for _, total := range categoryTotals {
		fill, ok := categoryColors[total.Category]
		if !ok {
			fill = categoryColors[model.ExpenseCategoryOther]
		}
		spendingByCategory = append(spendingByCategory, ChartDataPoint{
			Name:  total.Category,
			Value: total.Total,
			Fill:  fill,
		})
	}

	goalCounts, err := s.goalRepo.CountByStatus(userID)
	if err != nil {
		return nil, err
	}

	savingsRate := 0.0
	if user.MonthlyIncome > 0 {
		savingsRate = (user.MonthlyIncome - totalExpenses) / user.MonthlyIncome * 100
		if savingsRate < 0 {
			savingsRate = 0
		}
	}

	return &DashboardData{
		TotalBalance:           totalBalance,
		MonthlyIncome:          user.MonthlyIncome,
		TotalExpensesThisMonth: totalExpenses,
		SavingsRate:            savingsRate,
		PotDistribution:        potDistribution,
		SpendingByCategory:     spendingByCategory,
		ActiveGoalsCount:       goalCounts[model.GoalStatusActive],
		CompletedGoalsCount:    goalCounts[model.GoalStatusCompleted],
	}, nil
}

func (s *AnalyticsService) SpendingTrends(userID string, days int) (*SpendingTrend, error) {
	if days <= 0 {
		days = 30
	}

	now := time.Now()
	periodStart := now.AddDate(0, 0, -days)
	prevPeriodStart := periodStart.AddDate(0, 0, -days)

	dailyTotals, err := s.expenseRepo.DailyTotals(userID, periodStart)
	if err != nil {
		return nil, err
	}

	data := []TimeSeriesDataPoint{}
	for _, total := range dailyTotals {
		data = append(data, TimeSeriesDataPoint{Date: total.Day, Amount: total.Total})
	}

	totalThisPeriod, err := s.expenseRepo.TotalBetween(userID, periodStart, now)
	if err != nil {
		return nil, err
	}

	totalLastPeriod, err := s.expenseRepo.TotalBetween(userID, prevPeriodStart, periodStart)
	if err != nil {
		return nil, err
	}

	changePercentage := 0.0
	if totalLastPeriod > 0 {
		changePercentage = (totalThisPeriod - totalLastPeriod) / totalLastPeriod * 100
	}

	return &SpendingTrend{
		Data:             data,
		TotalThisPeriod:  totalThisPeriod,
		TotalLastPeriod:  totalLastPeriod,
		ChangePercentage: changePercentage,
	}, nil
}

func (s *AnalyticsService) PotDistribution(userID string) (*PotDistribution, error) {
	pots, err := s.potRepo.Pots(userID)
	if err != nil {
		return nil, err
	}

	total := 0.0
	data := []ChartDataPoint{}
	for _, pot := range pots {
		total += pot.CurrentAmount
		data = append(data, ChartDataPoint{
			Name:  pot.Name,
			Value: pot.CurrentAmount,
			Fill:  pot.Color,
		})
	}

	return &PotDistribution{Data: data, TotalAmount: total}, nil
}

func (s *AnalyticsService) GoalProgress(userID string) ([]GoalProgressData, error) {
	goals, err := s.goalRepo.Goals(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := []GoalProgressData{}

	for _, goal := range goals {
		progress := goal.Progress()
		if progress > 100 {
			progress = 100
		}

		data := GoalProgressData{
			GoalID:             goal.ID,
			Title:              goal.Title,
			TargetAmount:       goal.TargetAmount,
			CurrentAmount:      goal.CurrentAmount,
			ProgressPercentage: progress,
			Status:             goal.Status,
			Deadline:           goal.Deadline,
		}

		if goal.Deadline != nil {
			days := int(goal.Deadline.Sub(now).Hours() / 24)
			if days < 0 {
				days = 0
			}
			data.DaysRemaining = &days
		}

		result = append(result, data)
	}

	return result, nil
}
