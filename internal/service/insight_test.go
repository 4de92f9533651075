package service

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
)

type InsightServiceTestSuite struct {
	suite.Suite
	db         *sqlx.DB
	goalRepo   repository.GoalRepository
	expenseSvc *ExpenseService
	svc        *InsightService
	user       *model.User
}

func (suite *InsightServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.goalRepo = repository.NewGoalRepository(suite.db)
	potRepo := repository.NewPotRepository(suite.db)
	expenseRepo := repository.NewExpenseRepository(suite.db)
	suite.expenseSvc = NewExpenseService(suite.db, expenseRepo, potRepo)
	suite.svc = NewInsightService(repository.NewUserRepository(suite.db), potRepo, suite.goalRepo, expenseRepo)
	suite.user = createTestUser(suite.T(), suite.db)
}

func (suite *InsightServiceTestSuite) findByTitle(insights []Insight, title string) *Insight {
	for i := range insights {
		if insights[i].Title == title {
			return &insights[i]
		}
	}
	return nil
}

func (suite *InsightServiceTestSuite) TestEmptyStateYieldsNoInsights() {
	insights, err := suite.svc.Insights(suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), insights)
}

func (suite *InsightServiceTestSuite) TestSpendingPatternAverage() {
	pot := createTestPot(suite.T(), suite.db, suite.user.ID, "Groceries", model.PotCategoryNecessities, 500, 600)
	for _, amount := range []float64{10, 20, 30} {
		_, err := suite.expenseSvc.Create(suite.user.ID, ExpenseSpec{
			PotID:       pot.ID,
			Description: "Shop",
			Amount:      amount,
			Category:    model.ExpenseCategoryFood,
			Date:        time.Now(),
		})
		require.NoError(suite.T(), err)
	}

	insights, err := suite.svc.Insights(suite.user.ID)
	require.NoError(suite.T(), err)

	tip := suite.findByTitle(insights, "Spending Pattern")
	require.NotNil(suite.T(), tip)
	assert.Equal(suite.T(), InsightTypeTip, tip.Type)
	assert.Contains(suite.T(), tip.Description, "$20.00")
}

func (suite *InsightServiceTestSuite) TestClosestActiveGoalHighlighted() {
	pot := createTestPot(suite.T(), suite.db, suite.user.ID, "Savings", model.PotCategorySavings, 900, 1000)
	now := time.Now()
	for _, g := range []struct {
		title   string
		target  float64
		current float64
		status  string
	}{
		{"Far Away", 5000, 100, model.GoalStatusActive},
		{"Nearly Done", 1000, 950, model.GoalStatusActive},
		{"Closest But Done", 500, 499, model.GoalStatusCompleted},
	} {
		require.NoError(suite.T(), suite.goalRepo.Create(&model.Goal{
			ID:            "goal-" + shortID(),
			PotID:         pot.ID,
			Title:         g.title,
			TargetAmount:  g.target,
			CurrentAmount: g.current,
			Priority:      model.GoalPriorityMedium,
			Status:        g.status,
			CreatedAt:     now,
			UpdatedAt:     now,
		}))
	}

	insights, err := suite.svc.Insights(suite.user.ID)
	require.NoError(suite.T(), err)

	achievement := suite.findByTitle(insights, "Almost There!")
	require.NotNil(suite.T(), achievement)
	assert.Equal(suite.T(), InsightTypeAchievement, achievement.Type)
	assert.Contains(suite.T(), achievement.Description, "Nearly Done")
	assert.Contains(suite.T(), achievement.Description, "$50.00")
}

func (suite *InsightServiceTestSuite) TestLowNecessitiesPotWarns() {
	createTestPot(suite.T(), suite.db, suite.user.ID, "Groceries", model.PotCategoryNecessities, 100, 1000)

	insights, err := suite.svc.Insights(suite.user.ID)
	require.NoError(suite.T(), err)

	warning := suite.findByTitle(insights, "Low Balance Alert")
	require.NotNil(suite.T(), warning)
	assert.Equal(suite.T(), InsightTypeWarning, warning.Type)
	assert.Contains(suite.T(), warning.Description, "Groceries")
}

func (suite *InsightServiceTestSuite) TestLowWantsPotDoesNotWarn() {
	createTestPot(suite.T(), suite.db, suite.user.ID, "Fun", model.PotCategoryWants, 100, 1000)

	insights, err := suite.svc.Insights(suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), suite.findByTitle(insights, "Low Balance Alert"))
}

func (suite *InsightServiceTestSuite) TestZeroTargetPotNeverLow() {
	createTestPot(suite.T(), suite.db, suite.user.ID, "Groceries", model.PotCategoryNecessities, 0, 0)

	insights, err := suite.svc.Insights(suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), suite.findByTitle(insights, "Low Balance Alert"))
}

func (suite *InsightServiceTestSuite) TestCappedAtFive() {
	// Several low necessities pots plus expenses and a goal push past the cap.
	for _, name := range []string{"Rent", "Groceries", "Utilities", "Transport"} {
		createTestPot(suite.T(), suite.db, suite.user.ID, name, model.PotCategoryNecessities, 10, 1000)
	}
	pot := createTestPot(suite.T(), suite.db, suite.user.ID, "Buffer", model.PotCategoryNecessities, 50, 1000)
	_, err := suite.expenseSvc.Create(suite.user.ID, ExpenseSpec{
		PotID:       pot.ID,
		Description: "Shop",
		Amount:      25,
		Category:    model.ExpenseCategoryFood,
		Date:        time.Now(),
	})
	require.NoError(suite.T(), err)

	now := time.Now()
	require.NoError(suite.T(), suite.goalRepo.Create(&model.Goal{
		ID:            "goal-" + shortID(),
		PotID:         pot.ID,
		Title:         "Vacation",
		TargetAmount:  1000,
		CurrentAmount: 100,
		Priority:      model.GoalPriorityMedium,
		Status:        model.GoalStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))

	insights, err := suite.svc.Insights(suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), insights, 5)
}

func TestInsightServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InsightServiceTestSuite))
}
