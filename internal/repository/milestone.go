package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/moneypot/moneypot/internal/model"
)

var (
	ErrMilestoneNotFound = errors.New("milestone not found")
)

type MilestoneRepository interface {
	Create(milestone *model.Milestone) error
	ByID(goalID, milestoneID string) (*model.Milestone, error)
	Milestones(goalID string) ([]*model.Milestone, error)
	Update(milestone *model.Milestone) error
	WithTx(tx *sqlx.Tx) MilestoneRepository
}

type milestoneRepository struct {
	db sqlx.Ext
}

func NewMilestoneRepository(db *sqlx.DB) MilestoneRepository {
	return &milestoneRepository{db: db}
}

func (r *milestoneRepository) WithTx(tx *sqlx.Tx) MilestoneRepository {
	return &milestoneRepository{db: tx}
}

func (r *milestoneRepository) Create(milestone *model.Milestone) error {
	query := `INSERT INTO milestones (id, goal_id, title, target_amount, completed, completed_at, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(query,
		milestone.ID,
		milestone.GoalID,
		milestone.Title,
		milestone.TargetAmount,
		milestone.Completed,
		milestone.CompletedAt,
		milestone.CreatedAt,
		milestone.UpdatedAt,
	)

	return err
}

func (r *milestoneRepository) ByID(goalID, milestoneID string) (*model.Milestone, error) {
	milestone := &model.Milestone{}
	query := `SELECT * FROM milestones WHERE id = $1 AND goal_id = $2`

	err := sqlx.Get(r.db, milestone, query, milestoneID, goalID)
	if err == sql.ErrNoRows {
		return nil, ErrMilestoneNotFound
	}

	return milestone, err
}

func (r *milestoneRepository) Milestones(goalID string) ([]*model.Milestone, error) {
	var milestones []*model.Milestone
	query := `SELECT * FROM milestones WHERE goal_id = $1 ORDER BY target_amount`

	err := sqlx.Select(r.db, &milestones, query, goalID)
	if err != nil {
		return nil, err
	}

	return milestones, nil
}

func (r *milestoneRepository) Update(milestone *model.Milestone) error {
	query := `UPDATE milestones
	          SET title = $1, target_amount = $2, completed = $3, completed_at = $4, updated_at = $5
	          WHERE id = $6`

	result, err := r.db.Exec(query,
		milestone.Title,
		milestone.TargetAmount,
		milestone.Completed,
		milestone.CompletedAt,
		time.Now(),
		milestone.ID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrMilestoneNotFound
	}

	return nil
}
