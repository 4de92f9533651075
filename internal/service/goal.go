package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
)

type GoalService struct {
	db            *sqlx.DB
	repo          repository.GoalRepository
	milestoneRepo repository.MilestoneRepository
	potRepo       repository.PotRepository
}

func NewGoalService(
	db *sqlx.DB,
	repo repository.GoalRepository,
	milestoneRepo repository.MilestoneRepository,
	potRepo repository.PotRepository,
) *GoalService {
	return &GoalService{
		db:            db,
		repo:          repo,
		milestoneRepo: milestoneRepo,
		potRepo:       potRepo,
	}
}

type MilestoneSpec struct {
	Title        string
	TargetAmount float64
}

type GoalSpec struct {
	PotID        string
	Title        string
	Description  string
	TargetAmount float64
	Deadline     *time.Time
	Priority     string
	Milestones   []MilestoneSpec
}

func (s *GoalService) Create(userID string, spec GoalSpec) (*model.Goal, error) {
	_, err := s.potRepo.ByID(userID, spec.PotID)
	if err != nil {
		return nil, err
	}

	if spec.Priority == "" {
		spec.Priority = model.GoalPriorityMedium
	}

	now := time.Now()
	goal := &model.Goal{
		ID:           uuid.New().String(),
		PotID:        spec.PotID,
		Title:        spec.Title,
		Description:  spec.Description,
		TargetAmount: spec.TargetAmount,
		Deadline:     spec.Deadline,
		Priority:     spec.Priority,
		Status:       model.GoalStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.repo.Create(goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	for _, milestoneSpec := range spec.Milestones {
		milestone := &model.Milestone{
			ID:           uuid.New().String(),
			GoalID:       goal.ID,
			Title:        milestoneSpec.Title,
			TargetAmount: milestoneSpec.TargetAmount,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		err = s.milestoneRepo.Create(milestone)
		if err != nil {
			return nil, fmt.Errorf("failed to create milestone: %w", err)
		}
	}

	return goal, nil
}

func (s *GoalService) ByID(userID, goalID string) (*model.Goal, error) {
	return s.repo.ByID(userID, goalID)
}

func (s *GoalService) Goals(userID string) ([]*model.Goal, error) {
	return s.repo.Goals(userID)
}

func (s *GoalService) Milestones(goalID string) ([]*model.Milestone, error) {
	return s.milestoneRepo.Milestones(goalID)
}

type GoalUpdate struct {
	Title        *string
	Description  *string
	TargetAmount *float64
	Deadline     *time.Time
	Priority     *string
	Status       *string
}

func (s *GoalService) Update(userID, goalID string, changes GoalUpdate) (*model.Goal, error) {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	if changes.Title != nil {
		goal.Title = *changes.Title
	}
	if changes.Description != nil {
		goal.Description = *changes.Description
	}
	if changes.TargetAmount != nil {
		goal.TargetAmount = *changes.TargetAmount
	}
	if changes.Deadline != nil {
		goal.Deadline = changes.Deadline
	}
	if changes.Priority != nil {
		goal.Priority = *changes.Priority
	}
	if changes.Status != nil {
		goal.Status = *changes.Status
	}
	goal.UpdatedAt = time.Now()

	err = s.repo.Update(goal)
	if err != nil {
		return nil, err
	}

	return goal, nil
}

func (s *GoalService) Delete(userID, goalID string) error {
	return s.repo.Delete(userID, goalID)
}

// Contribute adds amount to the goal's progress in one transaction. The
// goal completes once progress reaches its target, and every incomplete
// milestone whose target is covered transitions independently with a
// stamped completion time. Completed milestones never revert and keep
// their original stamp.
func (s *GoalService) Contribute(userID, goalID string, amount float64) (*model.Goal, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx, "goal contribution")

	repo := s.repo.WithTx(tx)
	milestoneRepo := s.milestoneRepo.WithTx(tx)

	goal, err := repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	goal.CurrentAmount += amount
	if goal.CurrentAmount >= goal.TargetAmount {
		goal.Status = model.GoalStatusCompleted
	}
	goal.UpdatedAt = time.Now()

	err = repo.Update(goal)
	if err != nil {
		return nil, err
	}

	milestones, err := milestoneRepo.Milestones(goalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for _, milestone := range milestones {
		if milestone.Completed || goal.CurrentAmount < milestone.TargetAmount {
			continue
		}

		milestone.Completed = true
		milestone.CompletedAt = &now
		milestone.UpdatedAt = now

		err = milestoneRepo.Update(milestone)
		if err != nil {
			return nil, err
		}
	}

	err = tx.Commit()
	if err != nil {
		return nil, fmt.Errorf("failed to commit contribution: %w", err)
	}

	return goal, nil
}

// AddMilestone attaches a milestone to a goal. A milestone whose target
// the goal has already reached is created completed with a stamped time.
func (s *GoalService) AddMilestone(userID, goalID string, spec MilestoneSpec) (*model.Milestone, error) {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	milestone := &model.Milestone{
		ID:           uuid.New().String(),
		GoalID:       goal.ID,
		Title:        spec.Title,
		TargetAmount: spec.TargetAmount,
		Completed:    goal.CurrentAmount >= spec.TargetAmount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if milestone.Completed {
		milestone.CompletedAt = &now
	}

	err = s.milestoneRepo.Create(milestone)
	if err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}

	return milestone, nil
}

type MilestoneUpdate struct {
	Title        *string
	TargetAmount *float64
	Completed    *bool
}

func (s *GoalService) UpdateMilestone(userID, goalID, milestoneID string, changes MilestoneUpdate) (*model.Milestone, error) {
	goal, err := s.repo.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	milestone, err := s.milestoneRepo.ByID(goal.ID, milestoneID)
	if err != nil {
		return nil, err
	}

	if changes.Title != nil {
		milestone.Title = *changes.Title
	}
	if changes.TargetAmount != nil {
		milestone.TargetAmount = *changes.TargetAmount
	}
	if changes.Completed != nil {
		if *changes.Completed && !milestone.Completed {
			now := time.Now()
			milestone.CompletedAt = &now
		}
		milestone.Completed = *changes.Completed
	}
	milestone.UpdatedAt = time.Now()

	err = s.milestoneRepo.Update(milestone)
	if err != nil {
		return nil, err
	}

	return milestone, nil
}
