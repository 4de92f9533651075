package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/moneypot/moneypot/internal/model"
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
)

type ChatRepository interface {
	CreateSession(session *model.ChatSession) error
	SessionByID(userID, sessionID string) (*model.ChatSession, error)
	Sessions(userID string) ([]*model.ChatSession, error)
	UpdateSessionTitle(sessionID, title string) error
	DeleteSession(userID, sessionID string) error
	CreateMessage(message *model.ChatMessage) error
	Messages(sessionID string) ([]*model.ChatMessage, error)
	CountMessages(sessionID string) (int, error)
}

type chatRepository struct {
	db *sqlx.DB
}

func NewChatRepository(db *sqlx.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateSession(session *model.ChatSession) error {
	query := `INSERT INTO chat_sessions (id, user_id, title, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(query,
		session.ID,
		session.UserID,
		session.Title,
		session.CreatedAt,
		session.UpdatedAt,
	)

	return err
}

func (r *chatRepository) SessionByID(userID, sessionID string) (*model.ChatSession, error) {
	session := &model.ChatSession{}
	query := `SELECT * FROM chat_sessions WHERE id = $1 AND user_id = $2`

	err := r.db.Get(session, query, sessionID, userID)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}

	return session, err
}

func (r *chatRepository) Sessions(userID string) ([]*model.ChatSession, error) {
	var sessions []*model.ChatSession
	query := `SELECT * FROM chat_sessions WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&sessions, query, userID)
	if err != nil {
		return nil, err
	}

	return sessions, nil
}

func (r *chatRepository) UpdateSessionTitle(sessionID, title string) error {
	query := `UPDATE chat_sessions SET title = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.Exec(query, title, time.Now(), sessionID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (r *chatRepository) DeleteSession(userID, sessionID string) error {
	query := `DELETE FROM chat_sessions WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(query, sessionID, userID)

	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func (r *chatRepository) CreateMessage(message *model.ChatMessage) error {
	query := `INSERT INTO chat_messages (id, session_id, role, content, message_type, metadata, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(query,
		message.ID,
		message.SessionID,
		message.Role,
		message.Content,
		message.MessageType,
		message.Metadata,
		message.CreatedAt,
	)

	return err
}

func (r *chatRepository) Messages(sessionID string) ([]*model.ChatMessage, error) {
	var messages []*model.ChatMessage
	query := `SELECT * FROM chat_messages WHERE session_id = $1 ORDER BY created_at`

	err := r.db.Select(&messages, query, sessionID)
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *chatRepository) CountMessages(sessionID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM chat_messages WHERE session_id = $1`
	err := r.db.QueryRow(query, sessionID).Scan(&count)
	return count, err
}
