package presenter

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

var (
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#6C7A89")
	colorAccent  = lipgloss.Color("#20B9B4")
)

// styles are bound to one renderer so color follows the writer, not stdout
type styles struct {
	title   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	error   lipgloss.Style
	added   lipgloss.Style
	deleted lipgloss.Style
	box     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(colorAccent),
		muted:   r.NewStyle().Foreground(colorMuted),
		success: r.NewStyle().Foreground(colorSuccess),
		warning: r.NewStyle().Foreground(colorWarning),
		error:   r.NewStyle().Foreground(colorError),
		added:   r.NewStyle().Foreground(colorSuccess),
		deleted: r.NewStyle().Foreground(colorError),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1),
	}
}

// verdict renders a verdict with its icon
func (s styles) verdict(v repair.Verdict) string {
	switch v {
	case repair.VerdictSuccess:
		return s.success.Render("✓ " + string(v))
	case repair.VerdictLogicMismatch, repair.VerdictUnknown:
		return s.warning.Render("⚠ " + string(v))
	default:
		return s.error.Render("✗ " + string(v))
	}
}

func (s styles) outcome(o repair.Outcome) string {
	switch o {
	case repair.OutcomeSuccess:
		return s.success.Render(string(o))
	case repair.OutcomeExhausted, repair.OutcomeCancelled:
		return s.warning.Render(string(o))
	default:
		return s.error.Render(string(o))
	}
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
