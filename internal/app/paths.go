package app

import (
	"os"
	"path/filepath"
)

// HomeEnv overrides the home directory
const HomeEnv = "DEVFORGE_HOME"

// Paths holds all resolved paths of the devforge home directory
type Paths struct {
	Home    string // .devforge
	Prompts string // .devforge/prompts
	Var     string // .devforge/var
	Locks   string // .devforge/var/locks

	// Key files
	Setting      string // .devforge/setting.json
	Languages    string // .devforge/languages.yaml
	RepairPrompt string // .devforge/prompts/repair.md
	Journal      string // .devforge/var/journal.ndjson
	HistoryDB    string // .devforge/var/history.db
	Metrics      string // .devforge/var/metrics.prom
}

// ResolvePaths returns all paths based on the DEVFORGE_HOME environment variable
func ResolvePaths() Paths {
	home := os.Getenv(HomeEnv)
	if home == "" {
		home = ".devforge"
	}
	return PathsFor(home)
}

// PathsFor returns all paths rooted at home
func PathsFor(home string) Paths {
	p := Paths{
		Home:    home,
		Prompts: filepath.Join(home, "prompts"),
		Var:     filepath.Join(home, "var"),
	}
	p.Locks = filepath.Join(p.Var, "locks")

	p.Setting = filepath.Join(home, "setting.json")
	p.Languages = filepath.Join(home, "languages.yaml")
	p.RepairPrompt = filepath.Join(p.Prompts, "repair.md")
	p.Journal = filepath.Join(p.Var, "journal.ndjson")
	p.HistoryDB = filepath.Join(p.Var, "history.db")
	p.Metrics = filepath.Join(p.Var, "metrics.prom")
	return p
}
