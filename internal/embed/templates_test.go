package embed

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTemplates(t *testing.T) {
	templates, err := GetTemplates()
	require.NoError(t, err)

	paths := make([]string, 0, len(templates))
	for _, tmpl := range templates {
		paths = append(paths, tmpl.Path)
	}
	assert.ElementsMatch(t, []string{"languages.yaml", RepairPromptPath}, paths)
}

func TestRepairPrompt(t *testing.T) {
	p := RepairPrompt()
	assert.Contains(t, p, "{{.Intent}}")
	assert.Contains(t, p, "{{.Code}}")
}

func TestWriteTemplate(t *testing.T) {
	fsys := afero.NewMemMapFs()
	tmpl := Template{Path: "languages.yaml", Content: []byte("languages: []\n"), Mode: 0o644}

	res, err := WriteTemplate(fsys, "/home/.devforge", tmpl, false)
	require.NoError(t, err)
	assert.Equal(t, "WROTE", res.Action)

	res, err = WriteTemplate(fsys, "/home/.devforge", tmpl, false)
	require.NoError(t, err)
	assert.Equal(t, "SKIP", res.Action)

	res, err = WriteTemplate(fsys, "/home/.devforge", tmpl, true)
	require.NoError(t, err)
	assert.Equal(t, "WROTE (force)", res.Action)

	got, err := afero.ReadFile(fsys, "/home/.devforge/languages.yaml")
	require.NoError(t, err)
	assert.Equal(t, "languages: []\n", string(got))
}
