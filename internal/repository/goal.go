package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/moneypot/moneypot/internal/model"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
)

type GoalRepository interface {
	Create(goal *model.Goal) error
	ByID(userID, goalID string) (*model.Goal, error)
	Goals(userID string) ([]*model.Goal, error)
	GoalsByPot(potID string) ([]*model.Goal, error)
	CountByStatus(userID string) (map[string]int, error)
	Update(goal *model.Goal) error
	Delete(userID, goalID string) error
	WithTx(tx *sqlx.Tx) GoalRepository
}

type goalRepository struct {
	db sqlx.Ext
}

func NewGoalRepository(db *sqlx.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) WithTx(tx *sqlx.Tx) GoalRepository {
	return &goalRepository{db: tx}
}

func (r *goalRepository) Create(goal *model.Goal) error {
	query := `INSERT INTO goals (id, pot_id, title, description, target_amount, current_amount, deadline, priority, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(query,
		goal.ID,
		goal.PotID,
		goal.Title,
		goal.Description,
		goal.TargetAmount,
		goal.CurrentAmount,
		goal.Deadline,
		goal.Priority,
		goal.Status,
		goal.CreatedAt,
		goal.UpdatedAt,
	)

	return err
}

// ByID resolves a goal through its pot's owner, so a cross-user goal ID
// reads as not found.
func (r *goalRepository) ByID(userID, goalID string) (*model.Goal, error) {
	goal := &model.Goal{}
	query := `SELECT goals.* FROM goals
	          JOIN pots ON pots.id = goals.pot_id
	          WHERE goals.id = $1 AND pots.user_id = $2`

	err := sqlx.Get(r.db, goal, query, goalID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrGoalNotFound
	}

	return goal, err
}

func (r *goalRepository) Goals(userID string) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT goals.* FROM goals
	          JOIN pots ON pots.id = goals.pot_id
	          WHERE pots.user_id = $1
	          ORDER BY goals.created_at DESC`

	err := sqlx.Select(r.db, &goals, query, userID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) GoalsByPot(potID string) ([]*model.Goal, error) {
	var goals []*model.Goal
	query := `SELECT * FROM goals WHERE pot_id = $1 ORDER BY created_at`

	err := sqlx.Select(r.db, &goals, query, potID)
	if err != nil {
		return nil, err
	}

	return goals, nil
}

func (r *goalRepository) CountByStatus(userID string) (map[string]int, error) {
	rows, err := r.db.Queryx(`SELECT goals.status, COUNT(goals.id) FROM goals
	                          JOIN pots ON pots.id = goals.pot_id
	                          WHERE pots.user_id = $1
	                          GROUP BY goals.status`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

func (r *goalRepository) Update(goal *model.Goal) error {
	query := `UPDATE goals
	          SET title = $1, description = $2, target_amount = $3, current_amount = $4, deadline = $5, priority = $6, status = $7, updated_at = $8
	          WHERE id = $9`

	result, err := r.db.Exec(query,
		goal.Title,
		goal.Description,
		goal.TargetAmount,
		goal.CurrentAmount,
		goal.Deadline,
		goal.Priority,
		goal.Status,
		time.Now(),
		goal.ID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}

func (r *goalRepository) Delete(userID, goalID string) error {
	query := `DELETE FROM goals WHERE id = $1 AND pot_id IN (SELECT id FROM pots WHERE user_id = $2)`
	result, err := r.db.Exec(query, goalID, userID)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrGoalNotFound
	}

	return nil
}
