package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
)

var (
	ErrInsufficientFunds        = errors.New("insufficient funds in source pot")
	ErrSameSourceAndDestination = errors.New("cannot transfer to the same pot")
)

const (
	defaultPotColor = "#6366f1"
	defaultPotIcon  = "wallet"
)

type PotService struct {
	db   *sqlx.DB
	repo repository.PotRepository
}

func NewPotService(db *sqlx.DB, repo repository.PotRepository) *PotService {
	return &PotService{
		db:   db,
		repo: repo,
	}
}

type PotSpec struct {
	Name         string
	Category     string
	Percentage   float64
	TargetAmount float64
	Color        string
	Icon         string
}

// Create opens a new pot with a zero balance. Allocation percentages are
// not validated to sum to 100 across a user's pots; that is a UI concern.
func (s *PotService) Create(userID string, spec PotSpec) (*model.Pot, error) {
	if spec.Color == "" {
		spec.Color = defaultPotColor
	}
	if spec.Icon == "" {
		spec.Icon = defaultPotIcon
	}

	now := time.Now()
	pot := &model.Pot{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         spec.Name,
		Category:     spec.Category,
		Percentage:   spec.Percentage,
		TargetAmount: spec.TargetAmount,
		Color:        spec.Color,
		Icon:         spec.Icon,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.repo.Create(pot)
	if err != nil {
		return nil, fmt.Errorf("failed to create pot: %w", err)
	}

	return pot, nil
}

func (s *PotService) ByID(userID, potID string) (*model.Pot, error) {
	return s.repo.ByID(userID, potID)
}

func (s *PotService) Pots(userID string) ([]*model.Pot, error) {
	return s.repo.Pots(userID)
}

type PotUpdate struct {
	Name         *string
	Category     *string
	Percentage   *float64
	TargetAmount *float64
	Color        *string
	Icon         *string
}

func (s *PotService) Update(userID, potID string, changes PotUpdate) (*model.Pot, error) {
	pot, err := s.repo.ByID(userID, potID)
	if err != nil {
		return nil, err
	}

	if changes.Name != nil {
		pot.Name = *changes.Name
	}
	if changes.Category != nil {
		pot.Category = *changes.Category
	}
	if changes.Percentage != nil {
		pot.Percentage = *changes.Percentage
	}
	if changes.TargetAmount != nil {
		pot.TargetAmount = *changes.TargetAmount
	}
	if changes.Color != nil {
		pot.Color = *changes.Color
	}
	if changes.Icon != nil {
		pot.Icon = *changes.Icon
	}
	pot.UpdatedAt = time.Now()

	err = s.repo.Update(pot)
	if err != nil {
		return nil, err
	}

	return pot, nil
}

func (s *PotService) Delete(userID, potID string) error {
	return s.repo.Delete(userID, potID)
}

// Transfer moves amount from one pot to another atomically. Both pots
// resolve through the user-scoped lookup, so a destination owned by a
// different user reads as not found. The two balances always move by
// equal and opposite amounts or not at all.
func (s *PotService) Transfer(userID, fromPotID, toPotID string, amount float64) (*model.Pot, *model.Pot, error) {
	if fromPotID == toPotID {
		return nil, nil, ErrSameSourceAndDestination
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx, "pot transfer")

	repo := s.repo.WithTx(tx)

	fromPot, err := repo.ByID(userID, fromPotID)
	if err != nil {
		return nil, nil, err
	}

	toPot, err := repo.ByID(userID, toPotID)
	if err != nil {
		return nil, nil, err
	}

	if amount > fromPot.CurrentAmount {
		return nil, nil, ErrInsufficientFunds
	}

	err = repo.AddToBalance(fromPot.ID, -amount)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to debit source pot: %w", err)
	}

	err = repo.AddToBalance(toPot.ID, amount)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to credit destination pot: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	fromPot.CurrentAmount -= amount
	toPot.CurrentAmount += amount

	return fromPot, toPot, nil
}
