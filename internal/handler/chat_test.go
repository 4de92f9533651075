package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moneypot/moneypot/internal/ai"
	"github.com/moneypot/moneypot/internal/ctxkeys"
	"github.com/moneypot/moneypot/internal/db"
	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
	"github.com/moneypot/moneypot/internal/service"
)

type fixedClient struct {
	chunks []string
}

func (c *fixedClient) StreamChat(ctx context.Context, messages []ai.Message) (<-chan string, <-chan error) {
	contentChan := make(chan string)
	errorChan := make(chan error, 1)
	go func() {
		defer close(contentChan)
		defer close(errorChan)
		for _, chunk := range c.chunks {
			contentChan <- chunk
		}
		errorChan <- nil
	}()
	return contentChan, errorChan
}

func newChatHandler(t *testing.T, client ai.Client) (*ChatHandler, *model.User, *model.ChatSession) {
	t.Helper()

	database, err := sqlx.Connect("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	now := time.Now()
	user := &model.User{
		ID:        uuid.New().String(),
		Name:      "Test User",
		Email:     "test@example.com",
		Currency:  "$",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repository.NewUserRepository(database).Create(user))

	coach := service.NewCoachService(
		repository.NewChatRepository(database),
		repository.NewUserRepository(database),
		repository.NewPotRepository(database),
		repository.NewGoalRepository(database),
		repository.NewExpenseRepository(database),
		client,
	)

	session, err := coach.CreateSession(user.ID, "")
	require.NoError(t, err)

	return NewChatHandler(coach), user, session
}

func TestSendMessageStreamsSSE(t *testing.T) {
	handler, user, session := newChatHandler(t, &fixedClient{chunks: []string{"Hello", " there"}})

	req := httptest.NewRequest(http.MethodPost, "/chat/sessions/"+session.ID+"/messages",
		strings.NewReader(`{"content": "How am I doing?"}`))
	req.SetPathValue("id", session.ID)
	req = req.WithContext(ctxkeys.WithUserID(req.Context(), user.ID))

	rec := httptest.NewRecorder()
	handler.SendMessage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	frames := strings.Split(strings.TrimSpace(body), "\n\n")
	require.Len(t, frames, 3)

	assert.True(t, strings.HasPrefix(frames[0], "event: message\n"))
	assert.Contains(t, frames[0], `"chunk":"Hello"`)
	assert.True(t, strings.HasPrefix(frames[1], "event: message\n"))
	assert.Contains(t, frames[1], `"chunk":" there"`)
	assert.True(t, strings.HasPrefix(frames[2], "event: done\n"))
	assert.Contains(t, frames[2], `"quickActions"`)
}

func TestSendMessageEmptyContent(t *testing.T) {
	handler, user, session := newChatHandler(t, &fixedClient{})

	req := httptest.NewRequest(http.MethodPost, "/chat/sessions/"+session.ID+"/messages",
		strings.NewReader(`{"content": ""}`))
	req.SetPathValue("id", session.ID)
	req = req.WithContext(ctxkeys.WithUserID(req.Context(), user.ID))

	rec := httptest.NewRecorder()
	handler.SendMessage(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSendMessageUnknownSession(t *testing.T) {
	handler, user, _ := newChatHandler(t, &fixedClient{})

	req := httptest.NewRequest(http.MethodPost, "/chat/sessions/nope/messages",
		strings.NewReader(`{"content": "hi"}`))
	req.SetPathValue("id", "nope")
	req = req.WithContext(ctxkeys.WithUserID(req.Context(), user.ID))

	rec := httptest.NewRecorder()
	handler.SendMessage(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
