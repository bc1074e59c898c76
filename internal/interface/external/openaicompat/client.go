package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/Ajay03299/DevForge/internal/app"
	"github.com/Ajay03299/DevForge/internal/application/port/output"
)

const systemRoleContent = "You repair broken source files. Reply with the complete corrected file in a single fenced code block."

// Client talks to any server implementing the OpenAI chat completions API
// (OpenAI itself, vLLM, llama.cpp server, LM Studio).
type Client struct {
	client *openai.Client
	model  string
}

// Config configures a Client
type Config struct {
	BaseURL string // e.g. http://localhost:8000/v1; empty uses api.openai.com
	APIKey  string // May be empty for local servers
	Model   string
}

// NewClient creates a client. Model is required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		return nil, errors.New("openai-compatible backend requires a model name")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	return &Client{client: openai.NewClientWithConfig(clientCfg), model: cfg.Model}, nil
}

// Name implements output.CompletionGateway
func (c *Client) Name() string {
	return "openai/" + c.model
}

// Complete implements output.CompletionGateway
func (c *Client) Complete(ctx context.Context, req output.CompletionRequest) (*output.CompletionResponse, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	chatReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemRoleContent},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: float32(req.Temperature),
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("chat completion failed with status %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	app.GetLogger().Debug("%s replied in %s (%d tokens)", c.Name(), time.Since(start), resp.Usage.TotalTokens)
	return &output.CompletionResponse{
		Text:       resp.Choices[0].Message.Content,
		Model:      resp.Model,
		Duration:   time.Since(start),
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
