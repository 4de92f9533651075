package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
)

type UserService struct {
	repo    repository.UserRepository
	potRepo repository.PotRepository
}

func NewUserService(repo repository.UserRepository, potRepo repository.PotRepository) *UserService {
	return &UserService{
		repo:    repo,
		potRepo: potRepo,
	}
}

func (s *UserService) ByID(userID string) (*model.User, error) {
	return s.repo.ByID(userID)
}

// GetOrCreate returns the user, creating a placeholder row on first
// contact. The caller-supplied identifier is the identity; no signup
// flow exists.
func (s *UserService) GetOrCreate(userID string) (*model.User, error) {
	user, err := s.repo.ByID(userID)
	if err == nil {
		return user, nil
	}
	if err != repository.ErrUserNotFound {
		return nil, err
	}

	now := time.Now()
	user = &model.User{
		ID:        userID,
		Name:      "New User",
		Email:     userID + "@placeholder.local",
		Currency:  "USD",
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.repo.Create(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

type UserUpdate struct {
	Name          *string
	Email         *string
	Avatar        *string
	MonthlyIncome *float64
	Currency      *string
}

func (s *UserService) Update(user *model.User, changes UserUpdate) (*model.User, error) {
	if changes.Name != nil {
		user.Name = *changes.Name
	}
	if changes.Email != nil {
		user.Email = *changes.Email
	}
	if changes.Avatar != nil {
		user.Avatar = changes.Avatar
	}
	if changes.MonthlyIncome != nil {
		user.MonthlyIncome = *changes.MonthlyIncome
	}
	if changes.Currency != nil {
		user.Currency = *changes.Currency
	}
	user.UpdatedAt = time.Now()

	err := s.repo.Update(user)
	if err != nil {
		return nil, err
	}

	return user, nil
}

type PotAllocation struct {
	Name       string
	Category   string
	Percentage float64
	Color      string
	Icon       string
}

type OnboardingData struct {
	Name          string
	MonthlyIncome float64
	Currency      string
	Pots          []PotAllocation
}

// CompleteOnboarding sets the user's profile and creates their initial
// pots. Each pot's target is the slice of monthly income its allocation
// percentage claims.
func (s *UserService) CompleteOnboarding(user *model.User, data OnboardingData) (*model.User, error) {
	user.Name = data.Name
	user.MonthlyIncome = data.MonthlyIncome
	user.Currency = data.Currency
	user.OnboardingCompleted = true
	user.UpdatedAt = time.Now()

	err := s.repo.Update(user)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	now := time.Now()
	for _, allocation := range data.Pots {
		pot := &model.Pot{
			ID:           uuid.New().String(),
			UserID:       user.ID,
			Name:         allocation.Name,
			Category:     allocation.Category,
			Percentage:   allocation.Percentage,
			TargetAmount: data.MonthlyIncome * allocation.Percentage / 100,
			Color:        allocation.Color,
			Icon:         allocation.Icon,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		err = s.potRepo.Create(pot)
		if err != nil {
			return nil, fmt.Errorf("failed to create pot: %w", err)
		}
	}

	return user, nil
}
