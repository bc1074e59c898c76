package claudecli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/Ajay03299/DevForge/internal/application/port/output"
)

// DefaultBin is looked up on PATH
const DefaultBin = "claude"

// Runner drives the claude CLI in print mode as a completion backend.
// Tool use is disabled so the CLI can only answer with text.
type Runner struct {
	Bin     string
	Model   string        // Optional --model override
	Timeout time.Duration // Used when the request carries no timeout
}

// ClaudeResponse represents the JSON response from claude
type ClaudeResponse struct {
	Type       string  `json:"type"`
	Subtype    string  `json:"subtype"`
	IsError    bool    `json:"is_error"`
	DurationMs int     `json:"duration_ms"`
	Result     string  `json:"result"`
	SessionID  string  `json:"session_id"`
	TotalCost  float64 `json:"total_cost_usd"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// disallowedTools keeps the CLI from editing the target itself
var disallowedTools = []string{"Bash", "Edit", "Write", "MultiEdit", "NotebookEdit"}

// Name implements output.CompletionGateway
func (r Runner) Name() string {
	if r.Model != "" {
		return "claude-cli/" + r.Model
	}
	return "claude-cli"
}

// Complete implements output.CompletionGateway
func (r Runner) Complete(ctx context.Context, req output.CompletionRequest) (*output.CompletionResponse, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := r.run(ctx, req.Prompt)
	if err != nil {
		return nil, err
	}

	return &output.CompletionResponse{
		Text:       result.Result,
		Model:      r.Name(),
		Duration:   time.Since(start),
		TokensUsed: result.Usage.InputTokens + result.Usage.OutputTokens,
	}, nil
}

func (r Runner) run(ctx context.Context, prompt string) (*ClaudeResponse, error) {
	bin := r.Bin
	if bin == "" {
		bin = DefaultBin
	}

	args := []string{"-p", "--output-format", "json",
		"--disallowed-tools", strings.Join(disallowedTools, ",")}
	if r.Model != "" {
		args = append(args, "--model", r.Model)
	}

	// The prompt goes over stdin; it may exceed argv limits for large files.
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("claude execution aborted: %w", ctxErr)
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, fmt.Errorf("claude CLI not found (%s): %w", bin, err)
		}
		return nil, fmt.Errorf("claude execution failed: %w (output: %s)", err, strings.TrimSpace(stderr.String()))
	}

	var response ClaudeResponse
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		// Older CLI builds print plain text
		return &ClaudeResponse{Result: stdout.String()}, nil
	}
	if response.IsError {
		return nil, fmt.Errorf("claude returned error: %s", response.Result)
	}
	return &response, nil
}
