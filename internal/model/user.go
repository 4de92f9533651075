package model

import (
	"time"
)

type User struct {
	ID                  string    `db:"id"`
	Name                string    `db:"name"`
	Email               string    `db:"email"`
	Avatar              *string   `db:"avatar"`
	MonthlyIncome       float64   `db:"monthly_income"`
	Currency            string    `db:"currency"`
	OnboardingCompleted bool      `db:"onboarding_completed"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}
