package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Ajay03299/DevForge/internal/app"
	"github.com/Ajay03299/DevForge/internal/application/port/output"
)

// Defaults match a local Ollama install
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "qwen2.5-coder:1.5b"
)

// Client calls the Ollama generate API with streaming disabled
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// Config configures a Client
type Config struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client // Optional; a client without timeout is used otherwise
}

// Ollama API request structure
type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// NewClient creates an Ollama client
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{httpClient: httpClient, baseURL: baseURL, model: model}
}

// Name implements output.CompletionGateway
func (c *Client) Name() string {
	return "ollama/" + c.model
}

// Complete implements output.CompletionGateway
func (c *Client) Complete(ctx context.Context, req output.CompletionRequest) (*output.CompletionResponse, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	payload := generateRequest{
		Model:   c.model,
		Prompt:  req.Prompt,
		Stream:  false,
		Options: map[string]any{"temperature": req.Temperature},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request to Ollama: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request to Ollama: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("Ollama API call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from Ollama: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			var errResp struct {
				Error string `json:"error"`
			}
			if json.Unmarshal(respBody, &errResp) == nil && strings.Contains(errResp.Error, "not found") {
				return nil, fmt.Errorf("model '%s' not found. Please run: 'ollama pull %s'", c.model, c.model)
			}
		}
		return nil, fmt.Errorf("Ollama failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to parse Ollama response: %w", err)
	}

	app.GetLogger().Debug("ollama %s replied in %s (%d tokens)", c.model, time.Since(start), out.EvalCount)
	return &output.CompletionResponse{
		Text:       out.Response,
		Model:      out.Model,
		Duration:   time.Since(start),
		TokensUsed: out.PromptEvalCount + out.EvalCount,
	}, nil
}

// HealthCheck verifies the server answers and has the model pulled
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama is not reachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama health check failed with status %d", resp.StatusCode)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("failed to parse Ollama model list: %w", err)
	}
	for _, m := range tags.Models {
		if m.Name == c.model || strings.TrimSuffix(m.Name, ":latest") == c.model {
			return nil
		}
	}
	return fmt.Errorf("model '%s' not found. Please run: 'ollama pull %s'", c.model, c.model)
}
