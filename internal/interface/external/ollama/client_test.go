package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ajay03299/DevForge/internal/application/port/output"
)

func TestClient_Complete(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(generateResponse{
			Model:     "qwen2.5-coder:1.5b",
			Response:  "```python\nprint(5)\n```",
			Done:      true,
			EvalCount: 7,
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/"})
	resp, err := c.Complete(context.Background(), output.CompletionRequest{Prompt: "fix it", Temperature: 0.2})
	require.NoError(t, err)

	assert.Equal(t, "```python\nprint(5)\n```", resp.Text)
	assert.Equal(t, 7, resp.TokensUsed)
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, "fix it", got.Prompt)
	assert.False(t, got.Stream)
	assert.Equal(t, 0.2, got.Options["temperature"])
	assert.Equal(t, "ollama/qwen2.5-coder:1.5b", c.Name())
}

func TestClient_CompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "model not pulled",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":"model 'qwen2.5-coder:1.5b' not found"}`))
			},
			wantErr: "ollama pull",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantErr: "status 500",
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			wantErr: "failed to parse",
		},
		{
			name: "slow server hits timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			wantErr: "deadline exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewClient(Config{BaseURL: srv.URL}).Complete(context.Background(),
				output.CompletionRequest{Prompt: "x", Timeout: 100 * time.Millisecond})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(Config{BaseURL: url}).Complete(context.Background(), output.CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ollama API call failed")
}

func TestClient_HealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3:latest"},{"name":"qwen2.5-coder:1.5b"}]}`))
	}))
	defer srv.Close()

	assert.NoError(t, NewClient(Config{BaseURL: srv.URL}).HealthCheck(context.Background()))
	assert.NoError(t, NewClient(Config{BaseURL: srv.URL, Model: "llama3"}).HealthCheck(context.Background()))

	err := NewClient(Config{BaseURL: srv.URL, Model: "mistral"}).HealthCheck(context.Background())
	assert.ErrorContains(t, err, "ollama pull mistral")
}
