package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ajay03299/DevForge/internal/app"
	"github.com/Ajay03299/DevForge/internal/application/port/output"
	"github.com/Ajay03299/DevForge/internal/domain/repair"
	dfs "github.com/Ajay03299/DevForge/internal/infra/fs"
)

// scriptedGateway replies with canned completions in order
type scriptedGateway struct {
	mu      sync.Mutex
	replies []string
	prompts []string
}

func (g *scriptedGateway) Complete(_ context.Context, req output.CompletionRequest) (*output.CompletionResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, req.Prompt)
	if len(g.replies) == 0 {
		return nil, errors.New("no scripted reply left")
	}
	text := g.replies[0]
	g.replies = g.replies[1:]
	return &output.CompletionResponse{Text: text, Model: "scripted"}, nil
}

func (g *scriptedGateway) Name() string { return "scripted" }

type harness struct {
	dir     string
	home    string
	gateway *scriptedGateway
	out     *bytes.Buffer
	errOut  *bytes.Buffer
}

func newHarness(t *testing.T, replies ...string) *harness {
	t.Helper()
	dir := t.TempDir()
	return &harness{
		dir:     dir,
		home:    filepath.Join(dir, ".devforge"),
		gateway: &scriptedGateway{replies: replies},
		out:     &bytes.Buffer{},
		errOut:  &bytes.Buffer{},
	}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) error {
	t.Helper()
	return h.runContext(t, context.Background(), stdin, args...)
}

func (h *harness) runContext(t *testing.T, ctx context.Context, stdin string, args ...string) error {
	t.Helper()
	h.out.Reset()
	env := &cmdEnv{
		in:      strings.NewReader(stdin),
		out:     h.out,
		errOut:  h.errOut,
		fs:      afero.NewOsFs(),
		gateway: h.gateway,
	}
	root := newRoot(env)
	root.SetArgs(append([]string{"--home", h.home, "--log-level", "error"}, args...))
	return root.ExecuteContext(ctx)
}

func (h *harness) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func exitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if err != nil {
		return ExitFailure
	}
	return 0
}

func TestRepair_FixesCrashingScript(t *testing.T) {
	h := newHarness(t, "Here you go:\n```sh\necho 5\n```\n")
	path := h.write(t, "avg.sh", "echo broken >&2\nexit 1\n")

	err := h.run(t, "", "repair", path, "it should print 5")
	require.NoError(t, err, h.out.String())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "echo 5\n", string(got))

	backup, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "echo broken >&2\nexit 1\n", string(backup))

	assert.Contains(t, h.out.String(), "success")
	require.Len(t, h.gateway.prompts, 1)
	assert.Contains(t, h.gateway.prompts[0], "broken")
}

func TestRepair_AlreadyWorkingNeedsNoPatch(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "ok.sh", "echo 5\n")

	err := h.run(t, "", "repair", "--expect", "5", path)
	require.NoError(t, err)
	assert.Empty(t, h.gateway.prompts)

	_, err = os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err), "no backup without a patch")
}

func TestRepair_ExhaustedExitsNotFixed(t *testing.T) {
	h := newHarness(t,
		"```sh\necho 4\n```",
		"```sh\necho 3\n```",
	)
	path := h.write(t, "wrong.sh", "echo 1\n")

	err := h.run(t, "", "repair", "--max-attempts", "2", "--revert-on-failure", path, "it should print 5")
	assert.Equal(t, ExitNotFixed, exitCode(err))

	got, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "echo 1\n", string(got), "reverted to the original")
}

func TestRepair_AdapterFailureExitsFailure(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "crash.sh", "exit 3\n")

	err := h.run(t, "", "repair", path)
	assert.Equal(t, ExitFailure, exitCode(err))
}

func TestRepair_JSONReport(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "ok.sh", "echo hello\n")

	require.NoError(t, h.run(t, "", "repair", "--json", "--expect", "hello", path))

	var report struct {
		Success bool `json:"success"`
		Data    struct {
			Outcome      string `json:"outcome"`
			AttemptsUsed int    `json:"attempts_used"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &report), h.out.String())
	assert.True(t, report.Success)
	assert.Equal(t, "success", report.Data.Outcome)
	assert.Equal(t, 1, report.Data.AttemptsUsed)
}

func TestRepair_RejectsUnknownMatchStrategy(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "ok.sh", "echo 5\n")

	err := h.run(t, "", "repair", "--match", "fuzzy", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown match strategy")
}

func TestRestoreAndDiff(t *testing.T) {
	h := newHarness(t, "```sh\necho 5\n```")
	path := h.write(t, "fix.sh", "exit 1\n")
	require.NoError(t, h.run(t, "", "repair", path, "should print 5"))

	require.NoError(t, h.run(t, "", "diff", "--stat", path))
	assert.Equal(t, path+": +1 -1\n", h.out.String())

	require.NoError(t, h.run(t, "", "diff", path))
	assert.Contains(t, h.out.String(), "+echo 5")

	require.NoError(t, h.run(t, "", "restore", path))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "exit 1\n", string(got))

	require.NoError(t, h.run(t, "", "diff", path))
	assert.Contains(t, h.out.String(), "identical to its backup")
}

func TestRestore_WaitsForSessionLock(t *testing.T) {
	h := newHarness(t, "```sh\necho 5\n```")
	path := h.write(t, "busy.sh", "exit 1\n")
	require.NoError(t, h.run(t, "", "repair", path, "should print 5"))

	unlock, err := dfs.NewFileLocker(app.PathsFor(h.home).Locks).Lock(context.Background(), path)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	err = h.runContext(t, ctx, "", "restore", path)
	require.Error(t, err)
	assert.True(t, repair.IsCode(err, repair.CodeTargetBusy), "got %v", err)

	got, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "echo 5\n", string(got), "nothing restored while the lock is held")

	require.NoError(t, unlock())
	require.NoError(t, h.run(t, "", "restore", path))
	got, readErr = os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "exit 1\n", string(got))
}

func TestRestore_NoBackup(t *testing.T) {
	h := newHarness(t)
	path := h.write(t, "plain.sh", "echo 1\n")

	err := h.run(t, "", "restore", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no backup for")
}

func TestHistory(t *testing.T) {
	h := newHarness(t, "```sh\necho 5\n```")
	path := h.write(t, "hist.sh", "echo oops >&2\nexit 1\n")
	require.NoError(t, h.run(t, "", "repair", path, "should print 5"))

	require.NoError(t, h.run(t, "", "history", path))
	out := h.out.String()
	assert.Contains(t, out, "SESSION")
	assert.Contains(t, out, "success")
	assert.Contains(t, out, "2/3")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	sessionID := strings.Fields(lines[1])[0]

	require.NoError(t, h.run(t, "", "history", "--session", sessionID))
	out = h.out.String()
	assert.Contains(t, out, "crash")
	assert.Contains(t, out, "exit 1")
	assert.Contains(t, out, "success")

	require.NoError(t, h.run(t, "", "history", filepath.Join(h.dir, "other.sh")))
	assert.Contains(t, h.out.String(), "No sessions recorded.")
}

func TestChat(t *testing.T) {
	h := newHarness(t, "```sh\necho 5\n```")
	path := h.write(t, "chat.sh", "exit 1\n")

	stdin := "hello there\n@" + path + " should print 5\nquit\n"
	require.NoError(t, h.run(t, stdin, "chat"))

	out := h.out.String()
	assert.Contains(t, out, "devforge chat using scripted")
	assert.Contains(t, out, "No file mentioned")
	assert.Contains(t, out, "success")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "echo 5\n", string(got))
}

func TestMentionPattern(t *testing.T) {
	re := mentionPattern([]string{".py", ".cpp", ".sh"})

	tests := []struct {
		line   string
		want   string
		wantOK bool
	}{
		{"@avg.py should print 5", "avg.py", true},
		{"fix @src/lib/util.cpp please", "src/lib/util.cpp", true},
		{"look at @./run.sh and @b.py", "./run.sh", true},
		{"@notes.txt is wrong", "", false},
		{"no mention here", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := findMention(re, tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoot_InvalidSettings(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.MkdirAll(h.home, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(h.home, "setting.json"), []byte(`{"bogus": 1}`), 0o644))

	err := h.run(t, "", "history")
	require.Error(t, err)
}
