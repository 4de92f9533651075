package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/moneypot/moneypot/internal/ctxkeys"
	"github.com/moneypot/moneypot/internal/model"
	"github.com/moneypot/moneypot/internal/repository"
	"github.com/moneypot/moneypot/internal/service"
)

type chatSessionResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newChatSessionResponse(session *model.ChatSession) chatSessionResponse {
	return chatSessionResponse{
		ID:        session.ID,
		Title:     session.Title,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

type chatMessageResponse struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	MessageType string    `json:"messageType"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newChatMessageResponse(message *model.ChatMessage) chatMessageResponse {
	return chatMessageResponse{
		ID:          message.ID,
		Role:        message.Role,
		Content:     message.Content,
		MessageType: message.MessageType,
		CreatedAt:   message.CreatedAt,
	}
}

type ChatHandler struct {
	coachService *service.CoachService
}

func NewChatHandler(coachService *service.CoachService) *ChatHandler {
	return &ChatHandler{
		coachService: coachService,
	}
}

func (h *ChatHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	sessions, err := h.coachService.Sessions(userID)
	if err != nil {
		slog.Error("failed to list chat sessions", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load sessions")
		return
	}

	responses := make([]chatSessionResponse, len(sessions))
	for i, session := range sessions {
		responses[i] = newChatSessionResponse(session)
	}

	writeJSON(w, http.StatusOK, responses)
}

type sessionCreateRequest struct {
	Title string `json:"title"`
}

func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req sessionCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.coachService.CreateSession(userID, req.Title)
	if err != nil {
		slog.Error("failed to create chat session", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, newChatSessionResponse(session))
}

type sessionDetailResponse struct {
	chatSessionResponse
	Messages []chatMessageResponse `json:"messages"`
}

func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	sessionID := r.PathValue("id")

	session, messages, err := h.coachService.SessionWithMessages(userID, sessionID)
	if err == repository.ErrSessionNotFound {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to get chat session", "error", err, "user_id", userID, "session_id", sessionID)
		writeError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}

	resp := sessionDetailResponse{
		chatSessionResponse: newChatSessionResponse(session),
		Messages:            make([]chatMessageResponse, len(messages)),
	}
	for i, message := range messages {
		resp.Messages[i] = newChatMessageResponse(message)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	sessionID := r.PathValue("id")

	err := h.coachService.DeleteSession(userID, sessionID)
	if err == repository.ErrSessionNotFound {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete chat session", "error", err, "user_id", userID, "session_id", sessionID)
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

type messageEventPayload struct {
	ID    string `json:"id"`
	Chunk string `json:"chunk"`
}

type doneEventPayload struct {
	ID           string                `json:"id"`
	QuickActions []service.QuickAction `json:"quickActions"`
}

type errorEventPayload struct {
	Error string `json:"error"`
}

// SendMessage streams the advisory reply over server-sent events:
// "message" events carry content chunks, then a single terminal "done"
// or "error" event closes the turn.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	sessionID := r.PathValue("id")

	var req sendMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusUnprocessableEntity, "Content is required")
		return
	}

	events, err := h.coachService.SendMessage(r.Context(), userID, sessionID, req.Content)
	if err == repository.ErrSessionNotFound {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	if err != nil {
		slog.Error("failed to start chat turn", "error", err, "user_id", userID, "session_id", sessionID)
		writeError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for event := range events {
		switch event.Type {
		case service.TurnEventMessage:
			writeSSE(w, flusher, service.TurnEventMessage, messageEventPayload{
				ID:    event.ID,
				Chunk: event.Chunk,
			})
		case service.TurnEventDone:
			writeSSE(w, flusher, service.TurnEventDone, doneEventPayload{
				ID:           event.ID,
				QuickActions: event.QuickActions,
			})
		case service.TurnEventError:
			writeSSE(w, flusher, service.TurnEventError, errorEventPayload{
				Error: event.Err,
			})
		}
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal sse payload", "error", err, "event", event)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
