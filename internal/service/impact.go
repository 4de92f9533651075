package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
)

// PotImpact projects one pot's balance under a hypothetical purchase.
type PotImpact struct {
	PotID           string  `json:"potId"`
	PotName         string  `json:"potName"`
	CurrentAmount   float64 `json:"currentAmount"`
	ProjectedAmount float64 `json:"projectedAmount"`
	Change          float64 `json:"change"`
}

// GoalImpact estimates how a hypothetical purchase shifts a goal's
// timeline. Progress itself is untouched; the purchase hits the pot,
// not the goal.
type GoalImpact struct {
	GoalID            string  `json:"goalId"`
	GoalTitle         string  `json:"goalTitle"`
	CurrentProgress   float64 `json:"currentProgress"`
	ProjectedProgress float64 `json:"projectedProgress"`
	DelayDays         *int    `json:"delayDays,omitempty"`
}

type ImpactAnalysis struct {
	Action         string       `json:"action"`
	PotImpacts     []PotImpact  `json:"potImpacts"`
	GoalImpacts    []GoalImpact `json:"goalImpacts"`
	Recommendation string       `json:"recommendation"`
}

type TradeOffOption struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Impact      string `json:"impact"`
	Recommended bool   `json:"recommended"`
}

type TradeOff struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Options     []TradeOffOption `json:"options"`
}

type ImpactService struct {
	potRepo  repository.PotRepository
	goalRepo repository.GoalRepository
}

func NewImpactService(potRepo repository.PotRepository, goalRepo repository.GoalRepository) *ImpactService {
	return &ImpactService{
		potRepo:  potRepo,
		goalRepo: goalRepo,
	}
}

// AnalyzePurchase projects a hypothetical purchase across the user's
// pots and goals. When potID is empty, every pot is treated as affected
// by the full amount.
func (s *ImpactService) AnalyzePurchase(userID string, amount float64, potID, description string) (*ImpactAnalysis, error) {
	pots, err := s.potRepo.Pots(userID)
	if err != nil {
		return nil, err
	}

	potImpacts := []PotImpact{}
	goalImpacts := []GoalImpact{}
	now := time.Now()

	for _, pot := range pots {
		if potID != "" && pot.ID != potID {
			potImpacts = append(potImpacts, PotImpact{
				PotID:           pot.ID,
				PotName:         pot.Name,
				CurrentAmount:   pot.CurrentAmount,
				ProjectedAmount: pot.CurrentAmount,
				Change:          0,
			})
			continue
		}

		potImpacts = append(potImpacts, PotImpact{
			PotID:           pot.ID,
			PotName:         pot.Name,
			CurrentAmount:   pot.CurrentAmount,
			ProjectedAmount: math.Max(0, pot.CurrentAmount-amount),
			Change:          -amount,
		})

		goals, err := s.goalRepo.GoalsByPot(pot.ID)
		if err != nil {
			return nil, err
		}

		for _, goal := range goals {
			if goal.Status != model.GoalStatusActive {
				continue
			}

			impact := GoalImpact{
				GoalID:            goal.ID,
				GoalTitle:         goal.Title,
				CurrentProgress:   goal.Progress(),
				ProjectedProgress: goal.Progress(),
			}

			if goal.Deadline != nil {
				remainingDays := int(goal.Deadline.Sub(now).Hours() / 24)
				if remainingDays > 0 {
					dailyRate := (goal.TargetAmount - goal.CurrentAmount) / float64(remainingDays)
					if dailyRate > 0 {
						delayDays := int(amount / dailyRate)
						impact.DelayDays = &delayDays
					}
				}
			}

			goalImpacts = append(goalImpacts, impact)
		}
	}

	return &ImpactAnalysis{
		Action:         description,
		PotImpacts:     potImpacts,
		GoalImpacts:    goalImpacts,
		Recommendation: recommendation(potImpacts, goalImpacts),
	}, nil
}

// recommendation picks the first matching advisory, in priority order:
// overdraw, long goal delay, low remaining balance, all clear.
func recommendation(potImpacts []PotImpact, goalImpacts []GoalImpact) string {
	for _, impact := range potImpacts {
		if impact.Change < 0 && impact.CurrentAmount+impact.Change < 0 {
			return fmt.Sprintf("This purchase would overdraw your %s pot. "+
				"Consider reducing the amount or using a different pot.", impact.PotName)
		}
	}

	var delayed []GoalImpact
	for _, impact := range goalImpacts {
		if impact.DelayDays != nil && *impact.DelayDays > 7 {
			delayed = append(delayed, impact)
		}
	}
	if len(delayed) > 0 {
		names := delayed
		if len(names) > 2 {
			names = names[:2]
		}
		titles := make([]string, len(names))
		for i, impact := range names {
			titles[i] = impact.GoalTitle
		}
		return fmt.Sprintf("This purchase may delay your goals (%s) by "+
			"approximately %d days. Consider if this purchase is worth the delay.",
			strings.Join(titles, ", "), *delayed[0].DelayDays)
	}

	for _, impact := range potImpacts {
		if impact.Change < 0 && impact.ProjectedAmount < impact.CurrentAmount*0.2 {
			return fmt.Sprintf("After this purchase, your %s pot will be "+
				"below 20%% of its current balance. Make sure you have enough "+
				"for upcoming expenses.", impact.PotName)
		}
	}

	return "This purchase looks reasonable given your current financial state."
}

// TradeOffs proposes up to 4 alternatives for a hypothetical purchase,
// kept in generation order: skip, use a covering pot, split, delay.
func (s *ImpactService) TradeOffs(userID string, amount float64, description string) (*TradeOff, error) {
	pots, err := s.potRepo.Pots(userID)
	if err != nil {
		return nil, err
	}

	options := []TradeOffOption{
		{
			ID:     "skip",
			Label:  "Skip this purchase",
			Impact: fmt.Sprintf("Save $%.2f and keep your goals on track", amount),
		},
	}

	positivePots := 0
	for _, pot := range pots {
		if pot.CurrentAmount > 0 {
			positivePots++
		}
		if pot.CurrentAmount < amount {
			continue
		}

		options = append(options, TradeOffOption{
			ID:          "use_" + pot.ID,
			Label:       fmt.Sprintf("Use %s pot", pot.Name),
			Impact:      fmt.Sprintf("Uses %.1f%% of %s funds", amount/pot.CurrentAmount*100, pot.Name),
			Recommended: pot.Category == model.PotCategoryWants,
		})
	}

	if positivePots > 1 {
		options = append(options, TradeOffOption{
			ID:     "split",
			Label:  "Split across pots",
			Impact: "Distribute the impact across multiple pots",
		})
	}

	options = append(options, TradeOffOption{
		ID:          "delay",
		Label:       "Delay by 2 weeks",
		Impact:      "Wait until next income to afford this comfortably",
		Recommended: true,
	})

	if len(options) > 4 {
		options = options[:4]
	}

	return &TradeOff{
		ID:          "trade_off_" + shortID(),
		Title:       "Options for " + description,
		Description: fmt.Sprintf("Here are some alternatives for your $%.2f %s", amount, description),
		Options:     options,
	}, nil
}

// shortID returns the first 8 hex characters of a fresh UUID.
func shortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
