package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
)

type ExpenseService struct {
	db      *sqlx.DB
	repo    repository.ExpenseRepository
	potRepo repository.PotRepository
}

func NewExpenseService(db *sqlx.DB, repo repository.ExpenseRepository, potRepo repository.PotRepository) *ExpenseService {
	return &ExpenseService{
		db:      db,
		repo:    repo,
		potRepo: potRepo,
	}
}

type ExpenseSpec struct {
	PotID       string
	Description string
	Amount      float64
	Category    string
	Date        time.Time
	Recurring   bool
	Notes       *string
}

// Create records an expense and debits the owning pot in one
// transaction. The balance is allowed to go negative; no floor is
// enforced.
func (s *ExpenseService) Create(userID string, spec ExpenseSpec) (*model.Expense, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx, "record expense")

	potRepo := s.potRepo.WithTx(tx)
	_, err = potRepo.ByID(userID, spec.PotID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expense := &model.Expense{
		ID:          uuid.New().String(),
		PotID:       spec.PotID,
		Description: spec.Description,
		Amount:      spec.Amount,
		Category:    spec.Category,
		Date:        spec.Date,
		Recurring:   spec.Recurring,
		Notes:       spec.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.repo.WithTx(tx).Create(expense)
	if err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	err = potRepo.AddToBalance(spec.PotID, -spec.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to debit pot: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return nil, fmt.Errorf("failed to commit expense: %w", err)
	}

	return expense, nil
}

func (s *ExpenseService) ByID(userID, expenseID string) (*model.Expense, error) {
	return s.repo.ByID(userID, expenseID)
}

func (s *ExpenseService) Expenses(userID string, filter repository.ExpenseFilter) ([]*model.Expense, error) {
	return s.repo.Expenses(userID, filter)
}

type ExpenseUpdate struct {
	PotID       *string
	Description *string
	Amount      *float64
	Category    *string
	Date        *time.Time
	Recurring   *bool
	Notes       *string
}

// Update edits an expense, keeping pot balances symmetric with the
// ledger event. Moving the expense to another pot reverses the old
// debit and applies the (new or unchanged) amount to the new pot;
// changing only the amount applies the delta to the current pot. Other
// field changes leave balances alone.
func (s *ExpenseService) Update(userID, expenseID string, changes ExpenseUpdate) (*model.Expense, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx, "update expense")

	repo := s.repo.WithTx(tx)
	potRepo := s.potRepo.WithTx(tx)

	expense, err := repo.ByID(userID, expenseID)
	if err != nil {
		return nil, err
	}

	oldAmount := expense.Amount
	oldPotID := expense.PotID

	if changes.PotID != nil && *changes.PotID != oldPotID {
		_, err = potRepo.ByID(userID, *changes.PotID)
		if err != nil {
			return nil, err
		}

		newAmount := oldAmount
		if changes.Amount != nil {
			newAmount = *changes.Amount
		}

		err = potRepo.AddToBalance(oldPotID, oldAmount)
		if err != nil {
			return nil, fmt.Errorf("failed to credit old pot: %w", err)
		}

		err = potRepo.AddToBalance(*changes.PotID, -newAmount)
		if err != nil {
			return nil, fmt.Errorf("failed to debit new pot: %w", err)
		}

		expense.PotID = *changes.PotID
	} else if changes.Amount != nil {
		err = potRepo.AddToBalance(oldPotID, -(*changes.Amount - oldAmount))
		if err != nil {
			return nil, fmt.Errorf("failed to apply amount delta: %w", err)
		}
	}

	if changes.Description != nil {
		expense.Description = *changes.Description
	}
	if changes.Amount != nil {
		expense.Amount = *changes.Amount
	}
	if changes.Category != nil {
		expense.Category = *changes.Category
	}
	if changes.Date != nil {
		expense.Date = *changes.Date
	}
	if changes.Recurring != nil {
		expense.Recurring = *changes.Recurring
	}
	if changes.Notes != nil {
		expense.Notes = changes.Notes
	}
	expense.UpdatedAt = time.Now()

	err = repo.Update(expense)
	if err != nil {
		return nil, err
	}

	err = tx.Commit()
	if err != nil {
		return nil, fmt.Errorf("failed to commit expense update: %w", err)
	}

	return expense, nil
}

// Delete removes an expense and credits its amount back to the owning
// pot, so a create-then-delete round trip leaves the balance unchanged.
func (s *ExpenseService) Delete(userID, expenseID string) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx, "delete expense")

	repo := s.repo.WithTx(tx)

	expense, err := repo.ByID(userID, expenseID)
	if err != nil {
		return err
	}

	err = s.potRepo.WithTx(tx).AddToBalance(expense.PotID, expense.Amount)
	if err != nil {
		return fmt.Errorf("failed to credit pot: %w", err)
	}

	err = repo.Delete(expense.ID)
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit expense deletion: %w", err)
	}

	return nil
}

type ExpenseSummary struct {
	Total       float64
	ByCategory  map[string]float64
	PeriodStart time.Time
	PeriodEnd   time.Time
}

func (s *ExpenseService) Summary(userID string, from, to time.Time) (*ExpenseSummary, error) {
	total, err := s.repo.TotalBetween(userID, from, to)
	if err != nil {
		return nil, err
	}

	totals, err := s.repo.TotalsByCategory(userID, from, to)
	if err != nil {
		return nil, err
	}

	byCategory := map[string]float64{}
	for _, t := range totals {
		byCategory[t.Category] = t.Total
	}

	return &ExpenseSummary{
		Total:       total,
		ByCategory:  byCategory,
		PeriodStart: from,
		PeriodEnd:   to,
	}, nil
}
