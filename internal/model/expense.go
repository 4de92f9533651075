package model

import (
	"time"
)

const (
	ExpenseCategoryFood          = "food"
	ExpenseCategoryTransport     = "transport"
	ExpenseCategoryUtilities     = "utilities"
	ExpenseCategoryEntertainment = "entertainment"
	ExpenseCategoryShopping      = "shopping"
	ExpenseCategoryHealth        = "health"
	ExpenseCategoryEducation     = "education"
	ExpenseCategoryOther         = "other"
)

var ExpenseCategories = []string{
	ExpenseCategoryFood,
	ExpenseCategoryTransport,
	ExpenseCategoryUtilities,
	ExpenseCategoryEntertainment,
	ExpenseCategoryShopping,
	ExpenseCategoryHealth,
	ExpenseCategoryEducation,
	ExpenseCategoryOther,
}

func ValidExpenseCategory(category string) bool {
	for _, c := range ExpenseCategories {
		if c == category {
			return true
		}
	}
	return false
}

type Expense struct {
	ID          string    `db:"id"`
	PotID       string    `db:"pot_id"`
	Description string    `db:"description"`
	Amount      float64   `db:"amount"`
	Category    string    `db:"category"`
	Date        time.Time `db:"date"`
	Recurring   bool      `db:"recurring"`
	Notes       *string   `db:"notes"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}
