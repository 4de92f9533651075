package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/moneypot/moneypot/internal/ai"
	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
)

// apologyMessage replaces the assistant turn when the completion
// provider fails mid-stream. The raw error is never surfaced as content.
const apologyMessage = "I apologize, but I encountered an error. Please try again."

const sessionTitleLimit = 50

type QuickAction struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Icon   string `json:"icon"`
	Action string `json:"action"`
}

const (
	TurnEventMessage = "message"
	TurnEventDone    = "done"
	TurnEventError   = "error"
)

// TurnEvent is one event of a streamed advisory turn: zero or more
// "message" events followed by exactly one "done" or "error". ID is
// stable across all events of a turn and matches the persisted
// assistant message.
type TurnEvent struct {
	Type         string
	ID           string
	Chunk        string
	QuickActions []QuickAction
	Err          string
}

type CoachService struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	potRepo     repository.PotRepository
	goalRepo    repository.GoalRepository
	expenseRepo repository.ExpenseRepository
	client      ai.Client
}

func NewCoachService(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	potRepo repository.PotRepository,
	goalRepo repository.GoalRepository,
	expenseRepo repository.ExpenseRepository,
	client ai.Client,
) *CoachService {
	return &CoachService{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		potRepo:     potRepo,
		goalRepo:    goalRepo,
		expenseRepo: expenseRepo,
		client:      client,
	}
}

func (s *CoachService) Sessions(userID string) ([]*model.ChatSession, error) {
	return s.chatRepo.Sessions(userID)
}

func (s *CoachService) CreateSession(userID, title string) (*model.ChatSession, error) {
	if title == "" {
		title = "New Chat"
	}

	now := time.Now()
	session := &model.ChatSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.chatRepo.CreateSession(session)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}

	return session, nil
}

func (s *CoachService) SessionWithMessages(userID, sessionID string) (*model.ChatSession, []*model.ChatMessage, error) {
	session, err := s.chatRepo.SessionByID(userID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	messages, err := s.chatRepo.Messages(sessionID)
	if err != nil {
		return nil, nil, err
	}

	return session, messages, nil
}

func (s *CoachService) DeleteSession(userID, sessionID string) error {
	return s.chatRepo.DeleteSession(userID, sessionID)
}

// snapshot is the financial state a turn is grounded on.
type snapshot struct {
	user     *model.User
	pots     []*model.Pot
	goals    []*model.Goal
	expenses []*model.Expense
}

func (s *CoachService) loadSnapshot(userID string) (*snapshot, error) {
	user, err := s.userRepo.ByID(userID)
	if err != nil {
		return nil, err
	}

	pots, err := s.potRepo.Pots(userID)
	if err != nil {
		return nil, err
	}

	goals, err := s.goalRepo.Goals(userID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenseRepo.Recent(userID, 10)
	if err != nil {
		return nil, err
	}

	return &snapshot{user: user, pots: pots, goals: goals, expenses: expenses}, nil
}

// buildMessages assembles the model context: the system preamble plus a
// serialized snapshot, followed by the session history in creation
// order. The history already ends with the just-persisted user message.
func (s *CoachService) buildMessages(snap *snapshot, sessionID string) ([]ai.Message, error) {
	pots := make([]ai.ContextPot, len(snap.pots))
	for i, pot := range snap.pots {
		pots[i] = ai.ContextPot{
			Name:          pot.Name,
			Category:      pot.Category,
			CurrentAmount: pot.CurrentAmount,
			TargetAmount:  pot.TargetAmount,
			Percentage:    pot.Percentage,
		}
	}

	goals := make([]ai.ContextGoal, len(snap.goals))
	for i, goal := range snap.goals {
		goals[i] = ai.ContextGoal{
			Title:         goal.Title,
			CurrentAmount: goal.CurrentAmount,
			TargetAmount:  goal.TargetAmount,
			Status:        goal.Status,
		}
	}

	expenses := make([]ai.ContextExpense, len(snap.expenses))
	for i, expense := range snap.expenses {
		expenses[i] = ai.ContextExpense{
			Description: expense.Description,
			Amount:      expense.Amount,
			Category:    expense.Category,
		}
	}

	contextPrompt := ai.BuildContextPrompt(
		snap.user.Name,
		snap.user.MonthlyIncome,
		snap.user.Currency,
		pots,
		goals,
		expenses,
	)

	messages := []ai.Message{
		{Role: "system", Content: ai.SystemPrompt + "\n\n" + contextPrompt},
	}

	history, err := s.chatRepo.Messages(sessionID)
	if err != nil {
		return nil, err
	}

	for _, msg := range history {
		messages = append(messages, ai.Message{Role: msg.Role, Content: msg.Content})
	}

	return messages, nil
}

// SendMessage runs one advisory turn: the user message is persisted
// before the completion call begins, fragments are forwarded as they
// arrive, and the accumulated reply is persisted under the same ID the
// events carry. The returned channel closes after the terminal event.
func (s *CoachService) SendMessage(ctx context.Context, userID, sessionID, content string) (<-chan TurnEvent, error) {
	session, err := s.chatRepo.SessionByID(userID, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	userMessage := &model.ChatMessage{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		Role:        model.MessageRoleUser,
		Content:     content,
		MessageType: model.MessageTypeText,
		CreatedAt:   now,
	}

	err = s.chatRepo.CreateMessage(userMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	// First message names the session.
	count, err := s.chatRepo.CountMessages(sessionID)
	if err != nil {
		return nil, err
	}
	if count == 1 {
		title := content
		if len(title) > sessionTitleLimit {
			title = title[:sessionTitleLimit] + "..."
		}
		err = s.chatRepo.UpdateSessionTitle(session.ID, title)
		if err != nil {
			return nil, fmt.Errorf("failed to update session title: %w", err)
		}
	}

	snap, err := s.loadSnapshot(userID)
	if err != nil {
		return nil, err
	}

	messages, err := s.buildMessages(snap, sessionID)
	if err != nil {
		return nil, err
	}

	events := make(chan TurnEvent, 16)
	messageID := uuid.New().String()

	go func() {
		defer close(events)

		emit := func(event TurnEvent) {
			select {
			case events <- event:
			case <-ctx.Done():
			}
		}

		contentChan, errorChan := s.client.StreamChat(ctx, messages)

		var accumulated string
		for chunk := range contentChan {
			accumulated += chunk
			emit(TurnEvent{Type: TurnEventMessage, ID: messageID, Chunk: chunk})
		}

		streamErr := <-errorChan

		if streamErr != nil && ctx.Err() != nil {
			// Caller disconnected: the upstream call is cancelled and
			// whatever accumulated is still written, so the transcript
			// never shows a user message with its reply silently lost.
			s.persistAssistantMessage(messageID, sessionID, accumulated)
			slog.Info("chat turn cancelled", "session_id", sessionID, "accumulated_bytes", len(accumulated))
			return
		}

		if streamErr != nil {
			slog.Error("chat completion failed", "error", streamErr, "session_id", sessionID)
			emit(TurnEvent{Type: TurnEventMessage, ID: messageID, Chunk: apologyMessage})
			s.persistAssistantMessage(messageID, sessionID, apologyMessage)
			emit(TurnEvent{Type: TurnEventError, ID: messageID, Err: streamErr.Error()})
			return
		}

		s.persistAssistantMessage(messageID, sessionID, accumulated)

		quickActions, err := s.QuickActions(userID)
		if err != nil {
			slog.Error("failed to compute quick actions", "error", err, "user_id", userID)
			quickActions = []QuickAction{}
		}

		emit(TurnEvent{Type: TurnEventDone, ID: messageID, QuickActions: quickActions})
	}()

	return events, nil
}

func (s *CoachService) persistAssistantMessage(messageID, sessionID, content string) {
	if content == "" {
		return
	}

	err := s.chatRepo.CreateMessage(&model.ChatMessage{
		ID:          messageID,
		SessionID:   sessionID,
		Role:        model.MessageRoleAssistant,
		Content:     content,
		MessageType: model.MessageTypeText,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		slog.Error("failed to save assistant message", "error", err, "session_id", sessionID)
	}
}

// QuickActions derives up to 4 context-aware follow-ups: top-ups for
// pots under 20% of target, completions for goals at 80-100% progress,
// and two static actions.
func (s *CoachService) QuickActions(userID string) ([]QuickAction, error) {
	snap, err := s.loadSnapshot(userID)
	if err != nil {
		return nil, err
	}

	actions := []QuickAction{}

	for _, pot := range snap.pots {
		if pot.CurrentAmount < pot.TargetAmount*0.2 {
			actions = append(actions, QuickAction{
				ID:     "low_pot_" + pot.ID,
				Label:  "Top up " + pot.Name,
				Icon:   "plus-circle",
				Action: "transfer_to_pot:" + pot.ID,
			})
		}
	}

	for _, goal := range snap.goals {
		if goal.TargetAmount <= 0 {
			continue
		}
		progress := goal.CurrentAmount / goal.TargetAmount
		if progress >= 0.8 && progress < 1.0 {
			remaining := goal.TargetAmount - goal.CurrentAmount
			actions = append(actions, QuickAction{
				ID:     "complete_goal_" + goal.ID,
				Label:  "Complete " + goal.Title,
				Icon:   "target",
				Action: fmt.Sprintf("contribute_to_goal:%s:%.2f", goal.ID, remaining),
			})
		}
	}

	actions = append(actions,
		QuickAction{
			ID:     "add_expense",
			Label:  "Log expense",
			Icon:   "receipt",
			Action: "add_expense",
		},
		QuickAction{
			ID:     "check_impact",
			Label:  "Check purchase impact",
			Icon:   "calculator",
			Action: "analyze_impact",
		},
	)

	if len(actions) > 4 {
		actions = actions[:4]
	}

	return actions, nil
}
