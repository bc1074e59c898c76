package sandbox

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// Placeholders expanded in profile commands
const (
	PlaceholderSource = "{src}" // Absolute path of the materialized source file
	PlaceholderBinary = "{bin}" // Output path for compiled languages
	PlaceholderDir    = "{dir}" // Scratch directory of the run
)

// Profile tells the sandbox how to run one file extension
type Profile struct {
	Extension string   `yaml:"extension"`
	Name      string   `yaml:"name"`
	FenceTag  string   `yaml:"fence_tag"`
	Build     []string `yaml:"build,omitempty"`
	Run       []string `yaml:"run"`
}

// Validate checks that the profile can be executed
func (p Profile) Validate() error {
	if !strings.HasPrefix(p.Extension, ".") || len(p.Extension) < 2 {
		return fmt.Errorf("extension must start with '.': %q", p.Extension)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile %s: name is required", p.Extension)
	}
	if len(p.Run) == 0 || strings.TrimSpace(p.Run[0]) == "" {
		return fmt.Errorf("profile %s: run command is required", p.Extension)
	}
	if len(p.Build) > 0 && strings.TrimSpace(p.Build[0]) == "" {
		return fmt.Errorf("profile %s: build command has an empty program", p.Extension)
	}
	return nil
}

// Language returns the prompt-facing description of the profile
func (p Profile) Language() repair.Language {
	tag := p.FenceTag
	if tag == "" {
		tag = strings.ToLower(p.Name)
	}
	return repair.Language{Name: p.Name, FenceTag: tag}
}

// Profiles is the extension -> profile catalog
type Profiles struct {
	byExt map[string]Profile
}

var builtinProfiles = []Profile{
	{Extension: ".py", Name: "Python", FenceTag: "python", Run: []string{"python3", PlaceholderSource}},
	{Extension: ".js", Name: "JavaScript", FenceTag: "javascript", Run: []string{"node", PlaceholderSource}},
	{Extension: ".java", Name: "Java", FenceTag: "java", Run: []string{"java", PlaceholderSource}},
	{
		Extension: ".cpp", Name: "C++", FenceTag: "cpp",
		Build: []string{"g++", "-o", PlaceholderBinary, PlaceholderSource},
		Run:   []string{PlaceholderBinary},
	},
	{Extension: ".go", Name: "Go", FenceTag: "go", Run: []string{"go", "run", PlaceholderSource}},
	{Extension: ".sh", Name: "Shell", FenceTag: "sh", Run: []string{"sh", PlaceholderSource}},
}

// DefaultProfiles returns the built-in catalog
func DefaultProfiles() *Profiles {
	p := &Profiles{byExt: make(map[string]Profile, len(builtinProfiles))}
	for _, prof := range builtinProfiles {
		p.byExt[prof.Extension] = prof
	}
	return p
}

type profilesFile struct {
	Languages []Profile `yaml:"languages"`
}

// LoadProfiles reads a languages YAML file and merges it over the built-ins.
// A missing file yields the built-ins unchanged. Unknown keys are rejected.
func LoadProfiles(fsys afero.Fs, path string) (*Profiles, error) {
	profiles := DefaultProfiles()
	if path == "" {
		return profiles, nil
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return profiles, nil
		}
		return nil, fmt.Errorf("failed to read languages file: %w", err)
	}

	var file profilesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse languages file %s: %w", path, err)
	}

	for _, prof := range file.Languages {
		prof.Extension = strings.ToLower(prof.Extension)
		if err := prof.Validate(); err != nil {
			return nil, fmt.Errorf("invalid languages file %s: %w", path, err)
		}
		profiles.byExt[prof.Extension] = prof
	}
	return profiles, nil
}

// ForPath returns the profile for the file's extension
func (p *Profiles) ForPath(path string) (Profile, bool) {
	prof, ok := p.byExt[strings.ToLower(filepath.Ext(path))]
	return prof, ok
}

// Language implements the language catalog used by the patch service
func (p *Profiles) Language(path string) (repair.Language, bool) {
	prof, ok := p.ForPath(path)
	if !ok {
		return repair.Language{}, false
	}
	return prof.Language(), true
}

// Extensions returns the supported extensions, sorted
func (p *Profiles) Extensions() []string {
	exts := make([]string, 0, len(p.byExt))
	for ext := range p.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// expand substitutes placeholders in a command line
func expand(args []string, src, bin, dir string) []string {
	r := strings.NewReplacer(PlaceholderSource, src, PlaceholderBinary, bin, PlaceholderDir, dir)
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = r.Replace(a)
	}
	return out
}
