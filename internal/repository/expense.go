package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/moneypot/moneypot/internal/model"
)

var (
	ErrExpenseNotFound = errors.New("expense not found")
)

// ExpenseFilter narrows Expenses listings. Zero values mean "no filter".
type ExpenseFilter struct {
	PotID     string
	Category  string
	From      *time.Time
	To        *time.Time
	Recurring *bool
	Limit     int
	Offset    int
}

type CategoryTotal struct {
	Category string  `db:"category"`
	Total    float64 `db:"total"`
}

type DailyTotal struct {
	Day   string  `db:"day"`
	Total float64 `db:"total"`
}

type ExpenseRepository interface {
	Create(expense *model.Expense) error
	ByID(userID, expenseID string) (*model.Expense, error)
	Expenses(userID string, filter ExpenseFilter) ([]*model.Expense, error)
	Recent(userID string, limit int) ([]*model.Expense, error)
	Update(expense *model.Expense) error
	Delete(expenseID string) error
	TotalBetween(userID string, from, to time.Time) (float64, error)
	TotalsByCategory(userID string, from, to time.Time) ([]CategoryTotal, error)
	DailyTotals(userID string, since time.Time) ([]DailyTotal, error)
	WithTx(tx *sqlx.Tx) ExpenseRepository
}

type expenseRepository struct {
	db sqlx.Ext
}

func NewExpenseRepository(db *sqlx.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) WithTx(tx *sqlx.Tx) ExpenseRepository {
	return &expenseRepository{db: tx}
}

func (r *expenseRepository) Create(expense *model.Expense) error {
	query := `INSERT INTO expenses (id, pot_id, description, amount, category, date, recurring, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(query,
		expense.ID,
		expense.PotID,
		expense.Description,
		expense.Amount,
		expense.Category,
		expense.Date,
		expense.Recurring,
		expense.Notes,
		expense.CreatedAt,
		expense.UpdatedAt,
	)

	return err
}

// ByID resolves an expense through its pot's owner, so a cross-user
// expense ID reads as not found.
func (r *expenseRepository) ByID(userID, expenseID string) (*model.Expense, error) {
	expense := &model.Expense{}
	query := `SELECT expenses.* FROM expenses
	          JOIN pots ON pots.id = expenses.pot_id
	          WHERE expenses.id = $1 AND pots.user_id = $2`

	err := sqlx.Get(r.db, expense, query, expenseID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrExpenseNotFound
	}

	return expense, err
}

func (r *expenseRepository) Expenses(userID string, filter ExpenseFilter) ([]*model.Expense, error) {
	conditions := []string{"pots.user_id = $1"}
	args := []any{userID}

	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.PotID != "" {
		addCondition("expenses.pot_id = $%d", filter.PotID)
	}
	if filter.Category != "" {
		addCondition("expenses.category = $%d", filter.Category)
	}
	if filter.From != nil {
		addCondition("expenses.date >= $%d", *filter.From)
	}
	if filter.To != nil {
		addCondition("expenses.date <= $%d", *filter.To)
	}
	if filter.Recurring != nil {
		addCondition("expenses.recurring = $%d", *filter.Recurring)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`SELECT expenses.* FROM expenses
	          JOIN pots ON pots.id = expenses.pot_id
	          WHERE %s
	          ORDER BY expenses.date DESC
	          LIMIT %d OFFSET %d`,
		strings.Join(conditions, " AND "), limit, filter.Offset)

	var expenses []*model.Expense
	err := sqlx.Select(r.db, &expenses, query, args...)
	if err != nil {
		return nil, err
	}

	return expenses, nil
}

func (r *expenseRepository) Recent(userID string, limit int) ([]*model.Expense, error) {
	var expenses []*model.Expense
	query := `SELECT expenses.* FROM expenses
	          JOIN pots ON pots.id = expenses.pot_id
	          WHERE pots.user_id = $1
	          ORDER BY expenses.date DESC
	          LIMIT $2`

	err := sqlx.Select(r.db, &expenses, query, userID, limit)
	if err != nil {
		return nil, err
	}

	return expenses, nil
}

func (r *expenseRepository) Update(expense *model.Expense) error {
	query := `UPDATE expenses
	          SET pot_id = $1, description = $2, amount = $3, category = $4, date = $5, recurring = $6, notes = $7, updated_at = $8
	          WHERE id = $9`

	result, err := r.db.Exec(query,
		expense.PotID,
		expense.Description,
		expense.Amount,
		expense.Category,
		expense.Date,
		expense.Recurring,
		expense.Notes,
		time.Now(),
		expense.ID,
	)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrExpenseNotFound
	}

	return nil
}

func (r *expenseRepository) Delete(expenseID string) error {
	query := `DELETE FROM expenses WHERE id = $1`
	result, err := r.db.Exec(query, expenseID)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrExpenseNotFound
	}

	return nil
}

func (r *expenseRepository) TotalBetween(userID string, from, to time.Time) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(expenses.amount), 0) FROM expenses
	          JOIN pots ON pots.id = expenses.pot_id
	          WHERE pots.user_id = $1 AND expenses.date >= $2 AND expenses.date <= $3`

	err := r.db.QueryRowx(query, userID, from, to).Scan(&total)
	return total, err
}

func (r *expenseRepository) TotalsByCategory(userID string, from, to time.Time) ([]CategoryTotal, error) {
	var totals []CategoryTotal
	query := `SELECT expenses.category AS category, SUM(expenses.amount) AS total FROM expenses
	          JOIN pots ON pots.id = expenses.pot_id
	          WHERE pots.user_id = $1 AND expenses.date >= $2 AND expenses.date <= $3
	          GROUP BY expenses.category`

	err := sqlx.Select(r.db, &totals, query, userID, from, to)
	if err != nil {
		return nil, err
	}

	return totals, nil
}

func (r *expenseRepository) DailyTotals(userID string, since time.Time) ([]DailyTotal, error) {
	var totals []DailyTotal
	query := `SELECT DATE(expenses.date) AS day, SUM(expenses.amount) AS total FROM expenses
	          JOIN pots ON pots.id = expenses.pot_id
	          WHERE pots.user_id = $1 AND expenses.date >= $2
	          GROUP BY DATE(expenses.date)
	          ORDER BY DATE(expenses.date)`

	err := sqlx.Select(r.db, &totals, query, userID, since)
	if err != nil {
		return nil, err
	}

	return totals, nil
}
