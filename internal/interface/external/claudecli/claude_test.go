package claudecli

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ajay03299/DevForge/internal/application/port/output"
)

// fakeClaude writes a shell script standing in for the claude binary
func fakeClaude(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	bin := filepath.Join(t.TempDir(), "claude")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"+script), 0o755))
	return bin
}

func TestRunner_Complete(t *testing.T) {
	bin := fakeClaude(t, `
prompt=$(cat)
case "$*" in
  *"--disallowed-tools Bash,Edit,Write,MultiEdit,NotebookEdit"*) ;;
  *) echo "tools not disabled" >&2; exit 9 ;;
esac
printf '{"type":"result","is_error":false,"result":"got: %s","usage":{"input_tokens":3,"output_tokens":4}}' "$prompt"
`)

	r := Runner{Bin: bin, Timeout: 5 * time.Second}
	resp, err := r.Complete(context.Background(), output.CompletionRequest{Prompt: "fix me"})
	require.NoError(t, err)

	assert.Equal(t, "got: fix me", resp.Text)
	assert.Equal(t, 7, resp.TokensUsed)
	assert.Equal(t, "claude-cli", resp.Model)
}

func TestRunner_PlainTextFallback(t *testing.T) {
	bin := fakeClaude(t, "echo '```python'; echo 'print(1)'; echo '```'\n")

	resp, err := Runner{Bin: bin}.Complete(context.Background(), output.CompletionRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "```python\nprint(1)\n```\n", resp.Text)
}

func TestRunner_Errors(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		timeout time.Duration
		wantErr string
	}{
		{name: "error response", script: `echo '{"is_error":true,"result":"rate limited"}'`, wantErr: "rate limited"},
		{name: "non-zero exit", script: "echo nope >&2; exit 2", wantErr: "nope"},
		{name: "timeout", script: "exec sleep 5", timeout: 100 * time.Millisecond, wantErr: "aborted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Runner{Bin: fakeClaude(t, tt.script+"\n")}
			_, err := r.Complete(context.Background(), output.CompletionRequest{Prompt: "x", Timeout: tt.timeout})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunner_MissingBinary(t *testing.T) {
	r := Runner{Bin: filepath.Join(t.TempDir(), "no-such-claude")}
	_, err := r.Complete(context.Background(), output.CompletionRequest{Prompt: "x"})
	assert.ErrorContains(t, err, "claude CLI not found")
}

func TestRunner_Name(t *testing.T) {
	assert.Equal(t, "claude-cli", Runner{}.Name())
	assert.Equal(t, "claude-cli/sonnet", Runner{Model: "sonnet"}.Name())
}
