package model

import (
	"time"
)

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusPaused    = "paused"
)

const (
	GoalPriorityHigh   = "high"
	GoalPriorityMedium = "medium"
	GoalPriorityLow    = "low"
)

func ValidGoalStatus(status string) bool {
	return status == GoalStatusActive || status == GoalStatusCompleted || status == GoalStatusPaused
}

func ValidGoalPriority(priority string) bool {
	return priority == GoalPriorityHigh || priority == GoalPriorityMedium || priority == GoalPriorityLow
}

type Goal struct {
	ID            string     `db:"id"`
	PotID         string     `db:"pot_id"`
	Title         string     `db:"title"`
	Description   string     `db:"description"`
	TargetAmount  float64    `db:"target_amount"`
	CurrentAmount float64    `db:"current_amount"`
	Deadline      *time.Time `db:"deadline"`
	Priority      string     `db:"priority"`
	Status        string     `db:"status"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// Progress returns goal completion as a percentage, 0 when the target is 0.
func (g *Goal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return g.CurrentAmount / g.TargetAmount * 100
}

type Milestone struct {
	ID           string     `db:"id"`
	GoalID       string     `db:"goal_id"`
	Title        string     `db:"title"`
	TargetAmount float64    `db:"target_amount"`
	Completed    bool       `db:"completed"`
	CompletedAt  *time.Time `db:"completed_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}
