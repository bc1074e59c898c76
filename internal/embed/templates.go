package embed

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	dfs "github.com/Ajay03299/DevForge/internal/infra/fs"
)

//go:embed templates/*.tmpl templates/prompts/*
var templatesFS embed.FS

// RepairPromptPath is the destination of the repair prompt under the home directory
const RepairPromptPath = "prompts/repair.md"

// Template represents a template file to be written
type Template struct {
	Path    string
	Content []byte
	Mode    os.FileMode
}

// RepairPrompt returns the built-in repair prompt template
func RepairPrompt() string {
	b, err := templatesFS.ReadFile("templates/prompts/repair.md.tmpl")
	if err != nil {
		// Embedded at build time; absence is a build defect
		panic(fmt.Sprintf("embedded repair prompt missing: %v", err))
	}
	return string(b)
}

// GetTemplates returns all templates to be written during init
func GetTemplates() ([]Template, error) {
	var templates []Template

	err := fs.WalkDir(templatesFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		content, err := templatesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		// Remove "templates/" prefix and ".tmpl" suffix for the destination path
		destPath := strings.TrimPrefix(path, "templates/")
		destPath = strings.TrimSuffix(destPath, ".tmpl")

		templates = append(templates, Template{
			Path:    destPath,
			Content: content,
			Mode:    0644,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return templates, nil
}

// WriteTemplateResult represents the result of writing a template
type WriteTemplateResult struct {
	Path   string
	Action string // "WROTE", "SKIP", "WROTE (force)"
}

// WriteTemplate writes a template file atomically and returns the action taken
func WriteTemplate(fsys afero.Fs, baseDir string, tmpl Template, force bool) (*WriteTemplateResult, error) {
	fullPath := filepath.Join(baseDir, tmpl.Path)
	result := &WriteTemplateResult{Path: tmpl.Path}

	exists, err := afero.Exists(fsys, fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", fullPath, err)
	}
	if exists && !force {
		result.Action = "SKIP"
		return result, nil
	}

	if err := dfs.WriteFileAtomic(fsys, fullPath, tmpl.Content, tmpl.Mode); err != nil {
		return nil, err
	}

	if force && exists {
		result.Action = "WROTE (force)"
	} else {
		result.Action = "WROTE"
	}
	return result, nil
}
