package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectStream(t *testing.T, contentChan <-chan string, errorChan <-chan error) ([]string, error) {
	t.Helper()

	var chunks []string
	for chunk := range contentChan {
		chunks = append(chunks, chunk)
	}
	return chunks, <-errorChan
}

func sseChunk(content string) string {
	payload, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"delta": map[string]string{"content": content}},
		},
	})
	return "data: " + string(payload) + "\n\n"
}

func TestStreamChatSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, body.Stream)
		assert.Equal(t, "test-model", body.Model)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseChunk("Hello"))
		fmt.Fprint(w, sseChunk(", saver!"))
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", server.URL, "test-model", time.Minute)
	contentChan, errorChan := client.StreamChat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	chunks, err := collectStream(t, contentChan, errorChan)

	require.NoError(t, err)
	assert.Equal(t, []string{"Hello", ", saver!"}, chunks)
}

func TestStreamChatIgnoresNoise(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": keep-alive comment\n\n")
		fmt.Fprint(w, "event: ping\n\n")
		fmt.Fprint(w, "data: {not json\n\n")
		fmt.Fprint(w, sseChunk("ok"))
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", server.URL, "test-model", time.Minute)
	contentChan, errorChan := client.StreamChat(context.Background(), nil)
	chunks, err := collectStream(t, contentChan, errorChan)

	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, chunks)
}

func TestStreamChatMissingAPIKey(t *testing.T) {
	client := NewOpenAIClient("", "http://localhost:1", "test-model", time.Minute)
	contentChan, errorChan := client.StreamChat(context.Background(), nil)
	chunks, err := collectStream(t, contentChan, errorChan)

	assert.Empty(t, chunks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not configured")
}

func TestStreamChatHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", server.URL, "test-model", time.Minute)
	contentChan, errorChan := client.StreamChat(context.Background(), nil)
	chunks, err := collectStream(t, contentChan, errorChan)

	assert.Empty(t, chunks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestStreamChatInlineError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseChunk("partial"))
		fmt.Fprint(w, `data: {"error": {"message": "model overloaded"}}`+"\n\n")
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", server.URL, "test-model", time.Minute)
	contentChan, errorChan := client.StreamChat(context.Background(), nil)
	chunks, err := collectStream(t, contentChan, errorChan)

	assert.Equal(t, []string{"partial"}, chunks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestStreamChatBaseURLTrailingSlash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewOpenAIClient("test-key", server.URL+"/", "test-model", time.Minute)
	contentChan, errorChan := client.StreamChat(context.Background(), nil)
	_, err := collectStream(t, contentChan, errorChan)
	require.NoError(t, err)
}
