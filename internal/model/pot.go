package model

import (
	"time"
)

const (
	PotCategoryNecessities = "necessities"
	PotCategoryWants       = "wants"
	PotCategorySavings     = "savings"
	PotCategoryInvestments = "investments"
	PotCategoryEmergency   = "emergency"
)

// PotCategories lists every valid pot category; unknown values are
// rejected at the handler boundary.
var PotCategories = []string{
	PotCategoryNecessities,
	PotCategoryWants,
	PotCategorySavings,
	PotCategoryInvestments,
	PotCategoryEmergency,
}

func ValidPotCategory(category string) bool {
	for _, c := range PotCategories {
		if c == category {
			return true
		}
	}
	return false
}

type Pot struct {
	ID            string    `db:"id"`
	UserID        string    `db:"user_id"`
	Name          string    `db:"name"`
	Category      string    `db:"category"`
	Percentage    float64   `db:"percentage"`
	CurrentAmount float64   `db:"current_amount"`
	TargetAmount  float64   `db:"target_amount"`
	Color         string    `db:"color"`
	Icon          string    `db:"icon"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}
