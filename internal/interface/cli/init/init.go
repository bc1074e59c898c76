package init

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/Ajay03299/DevForge/internal/app"
	"github.com/Ajay03299/DevForge/internal/embed"
	"github.com/Ajay03299/DevForge/internal/infra/config"
	dfs "github.com/Ajay03299/DevForge/internal/infra/fs"
)

const (
	gitignoreBegin = "# >>> devforge"
	gitignoreEnd   = "# <<< devforge"
)

// NewCommand creates the init command
func NewCommand(fsys afero.Fs) *cobra.Command {
	var (
		dir   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a devforge home with default settings and prompts",
		Long: `Initialize the devforge home directory (default .devforge) with setting.json,
languages.yaml and the repair prompt. Existing files are kept unless --force is given.`,
		RunE: func(c *cobra.Command, _ []string) error {
			out := c.OutOrStdout()
			if dir == "" {
				dir = "."
			}

			home, _ := c.Flags().GetString("home")
			if home == "" {
				home = app.ResolvePaths().Home
			}
			if !filepath.IsAbs(home) {
				home = filepath.Join(dir, home)
			}
			paths := app.PathsFor(home)

			templates, err := embed.GetTemplates()
			if err != nil {
				return fmt.Errorf("failed to load templates: %w", err)
			}

			for _, d := range []string{paths.Prompts, paths.Locks} {
				if err := fsys.MkdirAll(d, 0o755); err != nil {
					return fmt.Errorf("failed to create directory %s: %w", d, err)
				}
			}

			for _, tmpl := range templates {
				result, err := embed.WriteTemplate(fsys, home, tmpl, force)
				if err != nil {
					return fmt.Errorf("failed to write %s: %w", tmpl.Path, err)
				}
				report(out, result.Action, filepath.Join(home, result.Path))
			}

			exists, err := afero.Exists(fsys, paths.Setting)
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", paths.Setting, err)
			}
			switch {
			case exists && !force:
				report(out, "SKIP", paths.Setting)
			default:
				if err := dfs.WriteFileAtomic(fsys, paths.Setting, config.CreateDefaultSettings(), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", config.SettingFile, err)
				}
				if exists {
					report(out, "WROTE (force)", paths.Setting)
				} else {
					report(out, "WROTE", paths.Setting)
				}
			}

			if err := updateGitignore(fsys, out, dir); err != nil {
				// Non-fatal
				fmt.Fprintf(out, "Warning: Could not update .gitignore: %v\n", err)
			}

			fmt.Fprintf(out, "Initialized devforge in %s\n", home)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Project directory")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")

	return cmd
}

func report(out io.Writer, action, path string) {
	if action == "SKIP" {
		fmt.Fprintf(out, "SKIP: %s (exists; use --force to overwrite)\n", path)
		return
	}
	fmt.Fprintf(out, "%s: %s\n", action, path)
}

// updateGitignore keeps run artifacts (journal, history, locks) out of git.
// The block is appended once.
func updateGitignore(fsys afero.Fs, out io.Writer, rootDir string) error {
	gitignorePath := filepath.Join(rootDir, ".gitignore")

	existing, err := afero.ReadFile(fsys, gitignorePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read .gitignore: %w", err)
	}

	content := string(existing)
	if strings.Contains(content, gitignoreBegin) {
		fmt.Fprintln(out, "SKIP: .gitignore devforge block already present")
		return nil
	}

	var b strings.Builder
	b.WriteString(content)
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
	if len(content) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(gitignoreBegin + "\n")
	b.WriteString("/.devforge/var/\n")
	b.WriteString("*.bak\n")
	b.WriteString(gitignoreEnd + "\n")

	if err := dfs.WriteFileAtomic(fsys, gitignorePath, []byte(b.String()), 0o644); err != nil {
		return err
	}
	fmt.Fprintln(out, "APPENDED: .gitignore devforge block")
	return nil
}
