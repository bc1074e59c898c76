package version

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Ajay03299/DevForge/internal/buildinfo"
)

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()

	if cmd.Use != "version" {
		t.Errorf("Expected Use='version', got '%s'", cmd.Use)
	}
	if cmd.Short == "" || cmd.Long == "" {
		t.Error("descriptions should not be empty")
	}
}

func TestVersionCommand_Output(t *testing.T) {
	orig := buildinfo.Version
	buildinfo.Version = "v1.2.3"
	defer func() { buildinfo.Version = orig }()

	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.HasPrefix(out.String(), "devforge version v1.2.3\n") {
		t.Errorf("unexpected output: %q", out.String())
	}
	if !strings.Contains(out.String(), "Go version:") {
		t.Errorf("missing runtime details: %q", out.String())
	}
}
