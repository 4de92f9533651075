package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
)

type UserServiceTestSuite struct {
	suite.Suite
	db      *sqlx.DB
	potRepo repository.PotRepository
	svc     *UserService
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.potRepo = repository.NewPotRepository(suite.db)
	suite.svc = NewUserService(repository.NewUserRepository(suite.db), suite.potRepo)
}

func (suite *UserServiceTestSuite) TestGetOrCreatePlaceholder() {
	userID := uuid.New().String()

	user, err := suite.svc.GetOrCreate(userID)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), userID, user.ID)
	assert.Equal(suite.T(), "New User", user.Name)
	assert.Equal(suite.T(), userID+"@placeholder.local", user.Email)
	assert.Equal(suite.T(), "USD", user.Currency)
	assert.False(suite.T(), user.OnboardingCompleted)
}

func (suite *UserServiceTestSuite) TestGetOrCreateIdempotent() {
	userID := uuid.New().String()

	first, err := suite.svc.GetOrCreate(userID)
	require.NoError(suite.T(), err)

	name := "Alex"
	_, err = suite.svc.Update(first, UserUpdate{Name: &name})
	require.NoError(suite.T(), err)

	// Second contact returns the existing row, edits intact.
	second, err := suite.svc.GetOrCreate(userID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Alex", second.Name)
}

func (suite *UserServiceTestSuite) TestCompleteOnboarding() {
	user, err := suite.svc.GetOrCreate(uuid.New().String())
	require.NoError(suite.T(), err)

	updated, err := suite.svc.CompleteOnboarding(user, OnboardingData{
		Name:          "Alex",
		MonthlyIncome: 4000,
		Currency:      "EUR",
		Pots: []PotAllocation{
			{Name: "Essentials", Category: model.PotCategoryNecessities, Percentage: 50},
			{Name: "Fun", Category: model.PotCategoryWants, Percentage: 30},
			{Name: "Savings", Category: model.PotCategorySavings, Percentage: 20},
		},
	})
	require.NoError(suite.T(), err)

	assert.True(suite.T(), updated.OnboardingCompleted)
	assert.Equal(suite.T(), 4000.0, updated.MonthlyIncome)

	pots, err := suite.potRepo.Pots(updated.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), pots, 3)

	// Each pot's target is its share of monthly income.
	targets := map[string]float64{}
	for _, pot := range pots {
		targets[pot.Name] = pot.TargetAmount
		assert.Equal(suite.T(), 0.0, pot.CurrentAmount)
	}
	assert.Equal(suite.T(), 2000.0, targets["Essentials"])
	assert.Equal(suite.T(), 1200.0, targets["Fun"])
	assert.Equal(suite.T(), 800.0, targets["Savings"])
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
