package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/moneypot/moneypot/internal/db"
	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
)

// newTestDB opens an in-memory SQLite database with the full schema
// applied. Single connection so every query sees the same memory DB.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite", "file::memory:?_pragma=foreign_keys(1)&_time_format=sqlite")
	require.NoError(t, err, "failed to open test database")
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })

	err = db.RunMigrations(database.DB, "sqlite")
	require.NoError(t, err, "failed to run migrations")

	return database
}

func createTestUser(t *testing.T, database *sqlx.DB) *model.User {
	t.Helper()

	now := time.Now()
	user := &model.User{
		ID:            uuid.New().String(),
		Name:          "Test User",
		Email:         uuid.New().String() + "@example.com",
		MonthlyIncome: 3000,
		Currency:      "$",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, repository.NewUserRepository(database).Create(user))

	return user
}

func createTestPot(t *testing.T, database *sqlx.DB, userID, name, category string, current, target float64) *model.Pot {
	t.Helper()

	now := time.Now()
	pot := &model.Pot{
		ID:            uuid.New().String(),
		UserID:        userID,
		Name:          name,
		Category:      category,
		CurrentAmount: current,
		TargetAmount:  target,
		Color:         "#6366f1",
		Icon:          "wallet",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, repository.NewPotRepository(database).Create(pot))

	return pot
}
