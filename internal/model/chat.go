package model

import (
	"time"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

const (
	MessageTypeText           = "text"
	MessageTypeImpactAnalysis = "impact-analysis"
	MessageTypeTradeOff       = "trade-off"
	MessageTypeRecommendation = "recommendation"
	MessageTypeQuickActions   = "quick-actions"
)

type ChatSession struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type ChatMessage struct {
	ID          string    `db:"id"`
	SessionID   string    `db:"session_id"`
	Role        string    `db:"role"`
	Content     string    `db:"content"`
	MessageType string    `db:"message_type"`
	Metadata    []byte    `db:"metadata"`
	CreatedAt   time.Time `db:"created_at"`
}
