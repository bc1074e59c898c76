package openaicompat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ajay03299/DevForge/internal/application/port/output"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_RequiresModel(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://localhost:8000/v1"})
	assert.Error(t, err)
}

func TestClient_Complete(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Model: "local-coder",
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "```js\nconsole.log(5)\n```"}},
			},
			Usage: openai.Usage{TotalTokens: 42},
		})
	})

	c, err := NewClient(Config{BaseURL: srv.URL + "/v1/", APIKey: "sk-test", Model: "local-coder"})
	require.NoError(t, err)

	resp, err := c.Complete(context.Background(), output.CompletionRequest{Prompt: "fix", Temperature: 0.2})
	require.NoError(t, err)

	assert.Equal(t, "```js\nconsole.log(5)\n```", resp.Text)
	assert.Equal(t, 42, resp.TokensUsed)
	assert.Equal(t, "local-coder", resp.Model)
	assert.Equal(t, "openai/local-coder", c.Name())

	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "fix", got.Messages[1].Content)
	assert.InDelta(t, 0.2, got.Temperature, 1e-6)
}

func TestClient_CompleteErrors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
		})
		c, err := NewClient(Config{BaseURL: srv.URL + "/v1", Model: "m"})
		require.NoError(t, err)

		_, err = c.Complete(context.Background(), output.CompletionRequest{Prompt: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
		assert.Contains(t, err.Error(), "bad key")
	})

	t.Run("no choices", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"choices":[]}`))
		})
		c, err := NewClient(Config{BaseURL: srv.URL + "/v1", Model: "m"})
		require.NoError(t, err)

		_, err = c.Complete(context.Background(), output.CompletionRequest{Prompt: "x"})
		assert.ErrorContains(t, err, "no choices")
	})
}
