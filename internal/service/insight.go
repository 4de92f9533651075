package service

import (
	"fmt"
	"time"

	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
)

const (
	InsightTypeTip         = "tip"
	InsightTypeWarning     = "warning"
	InsightTypeAchievement = "achievement"
)

// Insight is a short advisory item derived from the user's snapshot.
// The timestamp is borrowed from the record that triggered it.
type Insight struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"createdAt"`
}

type InsightService struct {
	userRepo    repository.UserRepository
	potRepo     repository.PotRepository
	goalRepo    repository.GoalRepository
	expenseRepo repository.ExpenseRepository
}

func NewInsightService(
	userRepo repository.UserRepository,
	potRepo repository.PotRepository,
	goalRepo repository.GoalRepository,
	expenseRepo repository.ExpenseRepository,
) *InsightService {
	return &InsightService{
		userRepo:    userRepo,
		potRepo:     potRepo,
		goalRepo:    goalRepo,
		expenseRepo: expenseRepo,
	}
}

// Insights scans the user's pots, goals, and 10 most recent expenses for
// noteworthy conditions, emitting at most 5 items.
func (s *InsightService) Insights(userID string) ([]Insight, error) {
	user, err := s.userRepo.ByID(userID)
	if err != nil {
		return nil, err
	}

	pots, err := s.potRepo.Pots(userID)
	if err != nil {
		return nil, err
	}

	goals, err := s.goalRepo.Goals(userID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenseRepo.Recent(userID, 10)
	if err != nil {
		return nil, err
	}

	insights := []Insight{}

	if len(expenses) > 0 {
		total := 0.0
		for _, expense := range expenses {
			total += expense.Amount
		}
		avg := total / float64(len(expenses))

		insights = append(insights, Insight{
			ID:    "insight_" + shortID(),
			Title: "Spending Pattern",
			Description: fmt.Sprintf("Your average expense is %s%.2f. "+
				"Consider if each purchase aligns with your goals.", user.Currency, avg),
			Type:      InsightTypeTip,
			CreatedAt: expenses[0].CreatedAt,
		})
	}

	var closest *model.Goal
	for _, goal := range goals {
		if goal.Status != model.GoalStatusActive {
			continue
		}
		if closest == nil || goal.TargetAmount-goal.CurrentAmount < closest.TargetAmount-closest.CurrentAmount {
			closest = goal
		}
	}
	if closest != nil {
		remaining := closest.TargetAmount - closest.CurrentAmount
		insights = append(insights, Insight{
			ID:    "insight_" + shortID(),
			Title: "Almost There!",
			Description: fmt.Sprintf("You're %s%.2f away from completing '%s'. Keep going!",
				user.Currency, remaining, closest.Title),
			Type:      InsightTypeAchievement,
			CreatedAt: closest.CreatedAt,
		})
	}

	for _, pot := range pots {
		// A pot with no target is never considered low.
		ratio := 1.0
		if pot.TargetAmount > 0 {
			ratio = pot.CurrentAmount / pot.TargetAmount
		}
		if ratio >= 0.2 || pot.Category != model.PotCategoryNecessities {
			continue
		}

		insights = append(insights, Insight{
			ID:    "insight_" + shortID(),
			Title: "Low Balance Alert",
			Description: fmt.Sprintf("Your %s pot is running low. "+
				"Consider transferring funds or reducing spending.", pot.Name),
			Type:      InsightTypeWarning,
			CreatedAt: pot.UpdatedAt,
		})
	}

	if len(insights) > 5 {
		insights = insights[:5]
	}

	return insights, nil
}
