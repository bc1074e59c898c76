package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/Ajay03299/DevForge/internal/app"
	"github.com/Ajay03299/DevForge/internal/application/port/output"
	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// PatchRequest carries everything the repair prompt needs
type PatchRequest struct {
	FilePath    string
	Code        string
	Attempt     int
	Result      repair.ExecutionResult
	Verdict     repair.Verdict
	Diagnostic  string
	Intent      string
	Expectation string
}

// PatchOptions tunes the completion request
type PatchOptions struct {
	Temperature float64
	Timeout     time.Duration
}

// PatchService formats the repair prompt, calls the completion gateway and
// parses the candidate file out of the reply. It never writes anything.
type PatchService struct {
	gateway   output.CompletionGateway
	languages output.LanguageCatalog
	prompt    *template.Template
	opts      PatchOptions
}

// promptData is the view passed to the prompt template
type promptData struct {
	Language    string
	FenceTag    string
	FileName    string
	Intent      string
	Expectation string
	Code        string
	Attempt     int
	Verdict     string
	Exit        string // "exit 3", "killed by SIGSEGV"
	Clean       bool   // Exit status 0
	Stdout      string
	Stderr      string
	Diagnostic  string
}

// NewPatchService parses promptText once; it fails on template syntax errors
func NewPatchService(gateway output.CompletionGateway, languages output.LanguageCatalog, promptText string, opts PatchOptions) (*PatchService, error) {
	tmpl, err := template.New("repair").Option("missingkey=error").Parse(promptText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse repair prompt: %w", err)
	}
	return &PatchService{gateway: gateway, languages: languages, prompt: tmpl, opts: opts}, nil
}

// BuildPrompt renders the repair prompt for req
func (s *PatchService) BuildPrompt(req PatchRequest) (string, error) {
	lang, ok := s.languages.Language(req.FilePath)
	if !ok {
		lang = repair.Language{Name: "Unknown"}
	}

	data := promptData{
		Language:    lang.Name,
		FenceTag:    lang.FenceTag,
		FileName:    filepath.Base(req.FilePath),
		Intent:      req.Intent,
		Expectation: req.Expectation,
		Code:        strings.TrimRight(req.Code, "\n"),
		Attempt:     req.Attempt,
		Verdict:     req.Verdict.String(),
		Exit:        req.Result.Exit.Describe(),
		Clean:       req.Result.ExitedCleanly(),
		Stdout:      strings.TrimRight(req.Result.Stdout, "\n"),
		Stderr:      strings.TrimRight(req.Result.Stderr, "\n"),
	}
	// Stdout and stderr are already shown; a timeout has nothing else to say
	if req.Verdict == repair.VerdictTimeout {
		data.Diagnostic = strings.SplitN(req.Diagnostic, "\n", 2)[0]
	}

	var b strings.Builder
	if err := s.prompt.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render repair prompt: %w", err)
	}
	return b.String(), nil
}

// RequestPatch asks the completion service for a complete replacement file.
// Every failure is an *repair.AdapterError.
func (s *PatchService) RequestPatch(ctx context.Context, req PatchRequest) (string, error) {
	prompt, err := s.BuildPrompt(req)
	if err != nil {
		return "", &repair.AdapterError{Kind: repair.ServiceUnreachable, Err: err}
	}

	app.GetLogger().Debug("requesting patch from %s (attempt %d, verdict %s, prompt %d bytes)",
		s.gateway.Name(), req.Attempt, req.Verdict, len(prompt))

	resp, err := s.gateway.Complete(ctx, output.CompletionRequest{
		Prompt:      prompt,
		Timeout:     s.opts.Timeout,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		var aerr *repair.AdapterError
		if errors.As(err, &aerr) {
			return "", err
		}
		return "", &repair.AdapterError{Kind: repair.ServiceUnreachable, Err: err}
	}

	app.GetLogger().Debug("patch reply from %s in %s (%d bytes)", s.gateway.Name(), resp.Duration, len(resp.Text))

	lang, _ := s.languages.Language(req.FilePath)
	return ExtractCodeBlock(resp.Text, lang.FenceTag)
}
