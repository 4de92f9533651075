package service

import (
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
)

type ImpactServiceTestSuite struct {
	suite.Suite
	db       *sqlx.DB
	goalRepo repository.GoalRepository
	svc      *ImpactService
	user     *model.User
}

func (suite *ImpactServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.goalRepo = repository.NewGoalRepository(suite.db)
	suite.svc = NewImpactService(repository.NewPotRepository(suite.db), suite.goalRepo)
	suite.user = createTestUser(suite.T(), suite.db)
}

func (suite *ImpactServiceTestSuite) createGoal(potID string, target, current float64, deadline *time.Time) *model.Goal {
	now := time.Now()
	goal := &model.Goal{
		ID:            "goal-" + shortID(),
		PotID:         potID,
		Title:         "Vacation",
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      deadline,
		Priority:      model.GoalPriorityMedium,
		Status:        model.GoalStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(suite.T(), suite.goalRepo.Create(goal))
	return goal
}

func (suite *ImpactServiceTestSuite) TestProjectedBalanceFloorsAtZero() {
	pot := createTestPot(suite.T(), suite.db, suite.user.ID, "Groceries", model.PotCategoryNecessities, 100, 600)

	analysis, err := suite.svc.AnalyzePurchase(suite.user.ID, 30, pot.ID, "dinner out")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), analysis.PotImpacts, 1)
	assert.Equal(suite.T(), 70.0, analysis.PotImpacts[0].ProjectedAmount)
	assert.Equal(suite.T(), -30.0, analysis.PotImpacts[0].Change)

	analysis, err = suite.svc.AnalyzePurchase(suite.user.ID, 150, pot.ID, "new phone")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0.0, analysis.PotImpacts[0].ProjectedAmount)
	assert.Equal(suite.T(), -150.0, analysis.PotImpacts[0].Change)
}

func (suite *ImpactServiceTestSuite) TestNoPotMeansAllPotsAffected() {
	createTestPot(suite.T(), suite.db, suite.user.ID, "Groceries", model.PotCategoryNecessities, 100, 600)
	createTestPot(suite.T(), suite.db, suite.user.ID, "Fun", model.PotCategoryWants, 200, 300)

	analysis, err := suite.svc.AnalyzePurchase(suite.user.ID, 50, "", "mystery box")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), analysis.PotImpacts, 2)
	for _, impact := range analysis.PotImpacts {
		assert.Equal(suite.T(), -50.0, impact.Change)
	}
}

func (suite *ImpactServiceTestSuite) TestTargetedPotLeavesOthersUntouched() {
	target := createTestPot(suite.T(), suite.db, suite.user.ID, "Groceries", model.PotCategoryNecessities, 100, 600)
	createTestPot(suite.T(), suite.db, suite.user.ID, "Fun", model.PotCategoryWants, 200, 300)

	analysis, err := suite.svc.AnalyzePurchase(suite.user.ID, 50, target.ID, "dinner out")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), analysis.PotImpacts, 2)

	for _, impact := range analysis.PotImpacts {
		if impact.PotID == target.ID {
			assert.Equal(suite.T(), -50.0, impact.Change)
		} else {
			assert.Equal(suite.T(), 0.0, impact.Change)
			assert.Equal(suite.T(), impact.CurrentAmount, impact.ProjectedAmount)
		}
	}
}

func (suite *ImpactServiceTestSuite) TestGoalDelayEstimate() {
	pot := createTestPot(suite.T(), suite.db, suite.user.ID, "Savings", model.PotCategorySavings, 900, 1000)
	// 180 remaining over 20 days: 9/day. A 45 purchase delays by 5 days.
	deadline := time.Now().Add(20*24*time.Hour + time.Hour)
	suite.createGoal(pot.ID, 1000, 820, &deadline)

	analysis, err := suite.svc.AnalyzePurchase(suite.user.ID, 45, pot.ID, "concert tickets")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), analysis.GoalImpacts, 1)

	impact := analysis.GoalImpacts[0]
	assert.InDelta(suite.T(), 82.0, impact.CurrentProgress, 0.0001)
	assert.Equal(suite.T(), impact.CurrentProgress, impact.ProjectedProgress)
	require.NotNil(suite.T(), impact.DelayDays)
	assert.Equal(suite.T(), 5, *impact.DelayDays)
}

func (suite *ImpactServiceTestSuite) TestInactiveGoalsExcluded() {
	pot := createTestPot(suite.T(), suite.db, suite.user.ID, "Savings", model.PotCategorySavings, 900, 1000)
	goal := suite.createGoal(pot.ID, 1000, 820, nil)
	goal.Status = model.GoalStatusPaused
	require.NoError(suite.T(), suite.goalRepo.Update(goal))

	analysis, err := suite.svc.AnalyzePurchase(suite.user.ID, 45, pot.ID, "concert tickets")
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), analysis.GoalImpacts)
}

func (suite *ImpactServiceTestSuite) TestRecommendationOverdraw() {
	pot := createTestPot(suite.T(), suite.db, suite.user.ID, "Groceries", model.PotCategoryNecessities, 100, 600)

	analysis, err := suite.svc.AnalyzePurchase(suite.user.ID, 150, pot.ID, "new phone")
	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), analysis.Recommendation, "overdraw your Groceries pot")
}

func (suite *ImpactServiceTestSuite) TestRecommendationLongDelay() {
	pot := createTestPot(suite.T(), suite.db, suite.user.ID, "Savings", model.PotCategorySavings, 900, 1000)
	deadline := time.Now().Add(20*24*time.Hour + time.Hour)
	suite.createGoal(pot.ID, 1000, 820, &deadline)

	// 90 at 9/day is a 10 day delay, past the 7 day threshold.
	analysis, err := suite.svc.AnalyzePurchase(suite.user.ID, 90, pot.ID, "concert tickets")
	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), analysis.Recommendation, "Vacation")
	assert.Contains(suite.T(), analysis.Recommendation, "approximately 10 days")
}

func (suite *ImpactServiceTestSuite) TestRecommendationLowRemainingBalance() {
	pot := createTestPot(suite.T(), suite.db, suite.user.ID, "Groceries", model.PotCategoryNecessities, 100, 600)

	analysis, err := suite.svc.AnalyzePurchase(suite.user.ID, 90, pot.ID, "dinner out")
	require.NoError(suite.T(), err)
	assert.Contains(suite.T(), analysis.Recommendation, "below 20%")
}

func (suite *ImpactServiceTestSuite) TestRecommendationReasonable() {
	createTestPot(suite.T(), suite.db, suite.user.ID, "Groceries", model.PotCategoryNecessities, 500, 600)

	analysis, err := suite.svc.AnalyzePurchase(suite.user.ID, 20, "", "coffee")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "This purchase looks reasonable given your current financial state.", analysis.Recommendation)
}

func (suite *ImpactServiceTestSuite) TestTradeOffsSkipFirstDelayLast() {
	createTestPot(suite.T(), suite.db, suite.user.ID, "Fun", model.PotCategoryWants, 200, 300)

	tradeOff, err := suite.svc.TradeOffs(suite.user.ID, 50, "board game")
	require.NoError(suite.T(), err)

	require.NotEmpty(suite.T(), tradeOff.Options)
	assert.True(suite.T(), strings.HasPrefix(tradeOff.ID, "trade_off_"))
	assert.Equal(suite.T(), "skip", tradeOff.Options[0].ID)
	assert.Equal(suite.T(), "delay", tradeOff.Options[len(tradeOff.Options)-1].ID)
	assert.True(suite.T(), tradeOff.Options[len(tradeOff.Options)-1].Recommended)
}

func (suite *ImpactServiceTestSuite) TestTradeOffsWantsPotRecommended() {
	wants := createTestPot(suite.T(), suite.db, suite.user.ID, "Fun", model.PotCategoryWants, 200, 300)

	tradeOff, err := suite.svc.TradeOffs(suite.user.ID, 50, "board game")
	require.NoError(suite.T(), err)

	var found bool
	for _, option := range tradeOff.Options {
		if option.ID == "use_"+wants.ID {
			found = true
			assert.True(suite.T(), option.Recommended)
			assert.Contains(suite.T(), option.Impact, "25.0%")
		}
	}
	assert.True(suite.T(), found, "expected a use-pot option for the wants pot")
}

func (suite *ImpactServiceTestSuite) TestTradeOffsCappedAtFour() {
	createTestPot(suite.T(), suite.db, suite.user.ID, "A", model.PotCategoryNecessities, 500, 600)
	createTestPot(suite.T(), suite.db, suite.user.ID, "B", model.PotCategoryWants, 500, 600)
	createTestPot(suite.T(), suite.db, suite.user.ID, "C", model.PotCategorySavings, 500, 600)
	createTestPot(suite.T(), suite.db, suite.user.ID, "D", model.PotCategoryEmergency, 500, 600)

	tradeOff, err := suite.svc.TradeOffs(suite.user.ID, 50, "board game")
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), tradeOff.Options, 4)
}

func TestImpactServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ImpactServiceTestSuite))
}
