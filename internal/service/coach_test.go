package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/moneypot/moneypot/internal/ai"
	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
)

// scriptedClient plays back a fixed set of chunks, optionally failing
// afterwards. It records the messages it was asked to complete.
type scriptedClient struct {
	chunks   []string
	err      error
	messages []ai.Message
}

func (c *scriptedClient) StreamChat(ctx context.Context, messages []ai.Message) (<-chan string, <-chan error) {
	c.messages = messages

	contentChan := make(chan string)
	errorChan := make(chan error, 1)

	go func() {
		defer close(contentChan)
		defer close(errorChan)

		for _, chunk := range c.chunks {
			select {
			case contentChan <- chunk:
			case <-ctx.Done():
				errorChan <- ctx.Err()
				return
			}
		}
		errorChan <- c.err
	}()

	return contentChan, errorChan
}

type CoachServiceTestSuite struct {
	suite.Suite
	db       *sqlx.DB
	chatRepo repository.ChatRepository
	client   *scriptedClient
	svc      *CoachService
	user     *model.User
}

func (suite *CoachServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.chatRepo = repository.NewChatRepository(suite.db)
	suite.client = &scriptedClient{}
	suite.svc = NewCoachService(
		suite.chatRepo,
		repository.NewUserRepository(suite.db),
		repository.NewPotRepository(suite.db),
		repository.NewGoalRepository(suite.db),
		repository.NewExpenseRepository(suite.db),
		suite.client,
	)
	suite.user = createTestUser(suite.T(), suite.db)
}

func (suite *CoachServiceTestSuite) collectEvents(sessionID, content string) []TurnEvent {
	events, err := suite.svc.SendMessage(context.Background(), suite.user.ID, sessionID, content)
	require.NoError(suite.T(), err)

	var collected []TurnEvent
	for event := range events {
		collected = append(collected, event)
	}
	return collected
}

func (suite *CoachServiceTestSuite) TestCreateSessionDefaultTitle() {
	session, err := suite.svc.CreateSession(suite.user.ID, "")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Chat", session.Title)
}

func (suite *CoachServiceTestSuite) TestTurnStreamsChunksThenDone() {
	suite.client.chunks = []string{"Hello", ", ", "saver!"}
	session, err := suite.svc.CreateSession(suite.user.ID, "")
	require.NoError(suite.T(), err)

	events := suite.collectEvents(session.ID, "How am I doing?")
	require.Len(suite.T(), events, 4)

	for i, chunk := range suite.client.chunks {
		assert.Equal(suite.T(), TurnEventMessage, events[i].Type)
		assert.Equal(suite.T(), chunk, events[i].Chunk)
	}

	done := events[3]
	assert.Equal(suite.T(), TurnEventDone, done.Type)

	// One stable ID across the whole turn.
	for _, event := range events {
		assert.Equal(suite.T(), done.ID, event.ID)
	}

	// The accumulated reply is persisted under that ID.
	messages, err := suite.chatRepo.Messages(session.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), messages, 2)
	assert.Equal(suite.T(), model.MessageRoleUser, messages[0].Role)
	assert.Equal(suite.T(), "How am I doing?", messages[0].Content)
	assert.Equal(suite.T(), model.MessageRoleAssistant, messages[1].Role)
	assert.Equal(suite.T(), "Hello, saver!", messages[1].Content)
	assert.Equal(suite.T(), done.ID, messages[1].ID)
}

func (suite *CoachServiceTestSuite) TestFirstMessageNamesSession() {
	session, err := suite.svc.CreateSession(suite.user.ID, "")
	require.NoError(suite.T(), err)

	suite.collectEvents(session.ID, "Can I afford a new bike?")

	updated, err := suite.chatRepo.SessionByID(suite.user.ID, session.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Can I afford a new bike?", updated.Title)

	// Second message leaves the title alone.
	suite.collectEvents(session.ID, "What about a car?")

	updated, err = suite.chatRepo.SessionByID(suite.user.ID, session.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Can I afford a new bike?", updated.Title)
}

func (suite *CoachServiceTestSuite) TestLongFirstMessageTruncatedTitle() {
	session, err := suite.svc.CreateSession(suite.user.ID, "")
	require.NoError(suite.T(), err)

	long := strings.Repeat("a", 80)
	suite.collectEvents(session.ID, long)

	updated, err := suite.chatRepo.SessionByID(suite.user.ID, session.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), strings.Repeat("a", 50)+"...", updated.Title)
}

func (suite *CoachServiceTestSuite) TestContextIncludesSnapshot() {
	createTestPot(suite.T(), suite.db, suite.user.ID, "Groceries", model.PotCategoryNecessities, 300, 600)
	suite.client.chunks = []string{"ok"}
	session, err := suite.svc.CreateSession(suite.user.ID, "")
	require.NoError(suite.T(), err)

	suite.collectEvents(session.ID, "How am I doing?")

	require.NotEmpty(suite.T(), suite.client.messages)
	system := suite.client.messages[0]
	assert.Equal(suite.T(), "system", system.Role)
	assert.Contains(suite.T(), system.Content, "Groceries")
	assert.Contains(suite.T(), system.Content, suite.user.Name)

	// The history ends with the new user message, exactly once.
	last := suite.client.messages[len(suite.client.messages)-1]
	assert.Equal(suite.T(), "user", last.Role)
	assert.Equal(suite.T(), "How am I doing?", last.Content)
	count := 0
	for _, msg := range suite.client.messages {
		if msg.Content == "How am I doing?" {
			count++
		}
	}
	assert.Equal(suite.T(), 1, count)
}

func (suite *CoachServiceTestSuite) TestProviderFailureEmitsApology() {
	suite.client.chunks = []string{"partial"}
	suite.client.err = errors.New("upstream exploded")
	session, err := suite.svc.CreateSession(suite.user.ID, "")
	require.NoError(suite.T(), err)

	events := suite.collectEvents(session.ID, "How am I doing?")
	require.Len(suite.T(), events, 3)

	assert.Equal(suite.T(), TurnEventMessage, events[0].Type)
	assert.Equal(suite.T(), "partial", events[0].Chunk)
	assert.Equal(suite.T(), TurnEventMessage, events[1].Type)
	assert.Equal(suite.T(), apologyMessage, events[1].Chunk)
	assert.Equal(suite.T(), TurnEventError, events[2].Type)
	assert.Equal(suite.T(), "upstream exploded", events[2].Err)

	// The apology, not the raw error, lands in the transcript.
	messages, err := suite.chatRepo.Messages(session.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), messages, 2)
	assert.Equal(suite.T(), apologyMessage, messages[1].Content)
}

func (suite *CoachServiceTestSuite) TestUnknownSession() {
	_, err := suite.svc.SendMessage(context.Background(), suite.user.ID, "no-such-session", "hi")
	assert.ErrorIs(suite.T(), err, repository.ErrSessionNotFound)
}

func (suite *CoachServiceTestSuite) TestQuickActionsStaticBaseline() {
	actions, err := suite.svc.QuickActions(suite.user.ID)
	require.NoError(suite.T(), err)

	require.Len(suite.T(), actions, 2)
	assert.Equal(suite.T(), "add_expense", actions[0].ID)
	assert.Equal(suite.T(), "check_impact", actions[1].ID)
}

func (suite *CoachServiceTestSuite) TestQuickActionsLowPotAndNearGoal() {
	low := createTestPot(suite.T(), suite.db, suite.user.ID, "Groceries", model.PotCategoryNecessities, 50, 1000)
	pot := createTestPot(suite.T(), suite.db, suite.user.ID, "Savings", model.PotCategorySavings, 900, 1000)

	goalRepo := repository.NewGoalRepository(suite.db)
	goal := &model.Goal{
		ID:            "goal-" + shortID(),
		PotID:         pot.ID,
		Title:         "Vacation",
		TargetAmount:  1000,
		CurrentAmount: 850,
		Priority:      model.GoalPriorityMedium,
		Status:        model.GoalStatusActive,
	}
	require.NoError(suite.T(), goalRepo.Create(goal))

	actions, err := suite.svc.QuickActions(suite.user.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), actions, 4)

	assert.Equal(suite.T(), "low_pot_"+low.ID, actions[0].ID)
	assert.Equal(suite.T(), "complete_goal_"+goal.ID, actions[1].ID)
	assert.Equal(suite.T(), "contribute_to_goal:"+goal.ID+":150.00", actions[1].Action)
	assert.Equal(suite.T(), "add_expense", actions[2].ID)
	assert.Equal(suite.T(), "check_impact", actions[3].ID)
}

func (suite *CoachServiceTestSuite) TestQuickActionsCappedAtFour() {
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		createTestPot(suite.T(), suite.db, suite.user.ID, name, model.PotCategoryNecessities, 10, 1000)
	}

	actions, err := suite.svc.QuickActions(suite.user.ID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), actions, 4)
}

func TestCoachServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CoachServiceTestSuite))
}
