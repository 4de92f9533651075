package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/moneypot/moneypot/internal/model"
)

var (
	ErrPotNotFound = errors.New("pot not found")
)

type PotRepository interface {
	Create(pot *model.Pot) error
	ByID(userID, potID string) (*model.Pot, error)
	Pots(userID string) ([]*model.Pot, error)
	Update(pot *model.Pot) error
	AddToBalance(potID string, delta float64) error
	Delete(userID, potID string) error
	WithTx(tx *sqlx.Tx) PotRepository
}

type potRepository struct {
	db sqlx.Ext
}

func NewPotRepository(db *sqlx.DB) PotRepository {
	return &potRepository{db: db}
}

func (r *potRepository) WithTx(tx *sqlx.Tx) PotRepository {
	return &potRepository{db: tx}
}

func (r *potRepository) Create(pot *model.Pot) error {
	query := `INSERT INTO pots (id, user_id, name, category, percentage, current_amount, target_amount, color, icon, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(query,
		pot.ID,
		pot.UserID,
		pot.Name,
		pot.Category,
		pot.Percentage,
		pot.CurrentAmount,
		pot.TargetAmount,
		pot.Color,
		pot.Icon,
		pot.CreatedAt,
		pot.UpdatedAt,
	)

	return err
}

func (r *potRepository) ByID(userID, potID string) (*model.Pot, error) {
	pot := &model.Pot{}
	query := `SELECT * FROM pots WHERE id = $1 AND user_id = $2`

	err := sqlx.Get(r.db, pot, query, potID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrPotNotFound
	}

	return pot, err
}

func (r *potRepository) Pots(userID string) ([]*model.Pot, error) {
	var pots []*model.Pot
	query := `SELECT * FROM pots WHERE user_id = $1 ORDER BY created_at`

	err := sqlx.Select(r.db, &pots, query, userID)
	if err != nil {
		return nil, err
	}

	return pots, nil
}

func (r *potRepository) Update(pot *model.Pot) error {
	query := `UPDATE pots
	          SET name = $1, category = $2, percentage = $3, target_amount = $4, color = $5, icon = $6, updated_at = $7
	          WHERE id = $8 AND user_id = $9`

	result, err := r.db.Exec(query,
		pot.Name,
		pot.Category,
		pot.Percentage,
		pot.TargetAmount,
		pot.Color,
		pot.Icon,
		time.Now(),
		pot.ID,
		pot.UserID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrPotNotFound
	}

	return nil
}

// AddToBalance applies a signed delta to the pot's running balance. It is
// the only write path for current_amount, so every balance change stays
// paired with the ledger operation that produced it.
func (r *potRepository) AddToBalance(potID string, delta float64) error {
	query := `UPDATE pots SET current_amount = current_amount + $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, delta, time.Now(), potID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrPotNotFound
	}

	return nil
}

func (r *potRepository) Delete(userID, potID string) error {
	query := `DELETE FROM pots WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(query, potID, userID)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrPotNotFound
	}

	return nil
}
