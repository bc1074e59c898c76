package presenter

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Ajay03299/DevForge/internal/application/dto"
	"github.com/Ajay03299/DevForge/internal/application/port/output"
	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// CLIRepairPresenter implements output.RepairPresenter for terminal output.
// On a terminal the running attempt is shown on one line that the verdict
// overwrites; elsewhere every event gets its own line.
type CLIRepairPresenter struct {
	out         io.Writer
	st          styles
	interactive bool
	mu          sync.Mutex
}

var _ output.RepairPresenter = (*CLIRepairPresenter)(nil)

// NewCLIRepairPresenter creates a new CLI repair presenter
func NewCLIRepairPresenter(out io.Writer) *CLIRepairPresenter {
	return &CLIRepairPresenter{
		out:         out,
		st:          newStyles(lipgloss.NewRenderer(out)),
		interactive: IsTerminal(out),
	}
}

func (p *CLIRepairPresenter) AttemptStarted(_ context.Context, ev repair.AttemptStarted) {
	p.mu.Lock()
	defer p.mu.Unlock()

	line := fmt.Sprintf("Attempt %d/%d %s", ev.Index, ev.MaxAttempts, p.st.muted.Render("running "+ev.TargetPath))
	if p.interactive {
		fmt.Fprintf(p.out, "\r%s", line)
		return
	}
	fmt.Fprintln(p.out, line)
}

func (p *CLIRepairPresenter) AttemptFinished(_ context.Context, ev repair.AttemptFinished) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interactive {
		fmt.Fprint(p.out, "\r\033[K")
	}
	fmt.Fprintf(p.out, "Attempt %d/%d %s %s\n", ev.Index, ev.MaxAttempts, p.st.verdict(ev.Verdict),
		p.st.muted.Render(describeExit(ev.Exit, ev.Duration)))
	if ev.Excerpt != "" && !ev.Verdict.IsSuccess() {
		fmt.Fprintf(p.out, "  %s\n", p.st.muted.Render(ev.Excerpt))
	}
	switch {
	case ev.Applied:
		fmt.Fprintf(p.out, "  → patch applied\n")
	case ev.Error != "":
		fmt.Fprintf(p.out, "  %s\n", p.st.error.Render(ev.Error))
	}
}

func (p *CLIRepairPresenter) SessionFinished(context.Context, repair.SessionFinished) {}

// PresentReport prints the summary box and the diff
func (p *CLIRepairPresenter) PresentReport(out *dto.RunRepairOutput) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", p.st.title.Render("Outcome:"), p.st.outcome(out.Outcome))
	if out.StopReason != "" {
		fmt.Fprintf(&b, "Reason:   %s\n", out.StopReason)
	}
	fmt.Fprintf(&b, "File:     %s\n", out.FilePath)
	fmt.Fprintf(&b, "Attempts: %d/%d\n", out.AttemptsUsed, out.MaxAttempts)
	if !out.Outcome.IsSuccess() && out.AttemptsUsed > 0 {
		fmt.Fprintf(&b, "%s\n", p.st.warning.Render(fmt.Sprintf("Not fixed after %d %s", out.AttemptsUsed, plural(out.AttemptsUsed, "attempt"))))
		if out.LastExcerpt != "" {
			fmt.Fprintf(&b, "Last:     %s (%s)\n", p.st.muted.Render(out.LastExcerpt), out.LastVerdict)
		}
	}
	if out.Expectation != "" {
		fmt.Fprintf(&b, "Expected: %q\n", out.Expectation)
	}
	fmt.Fprintf(&b, "Changes:  %s %s\n",
		p.st.added.Render(fmt.Sprintf("+%d", out.LinesAdded)),
		p.st.deleted.Render(fmt.Sprintf("-%d", out.LinesDeleted)))
	if out.BackupPath != "" {
		fmt.Fprintf(&b, "Backup:   %s\n", out.BackupPath)
	}
	if out.Reverted {
		fmt.Fprintf(&b, "%s\n", p.st.warning.Render("Reverted to the original content"))
	}
	if out.ErrorMsg != "" {
		fmt.Fprintf(&b, "Error:    %s\n", p.st.error.Render(out.ErrorMsg))
	}
	fmt.Fprintf(&b, "Session:  %s", p.st.muted.Render(out.SessionID))

	fmt.Fprintln(p.out, p.st.box.Render(b.String()))

	if out.UnifiedDiff != "" {
		fmt.Fprintln(p.out)
		p.writeDiff(out.UnifiedDiff)
	}
	return nil
}

// PresentError presents an error
func (p *CLIRepairPresenter) PresentError(err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "%s %v\n", p.st.error.Render("✗ Error:"), err)
	return err
}

// PresentDiff prints a unified diff with colored lines
func (p *CLIRepairPresenter) PresentDiff(unified string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writeDiff(unified)
}

func (p *CLIRepairPresenter) writeDiff(unified string) {
	for _, line := range strings.SplitAfter(unified, "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(text, "+++"), strings.HasPrefix(text, "---"):
			text = p.st.title.Render(text)
		case strings.HasPrefix(text, "@@"):
			text = p.st.muted.Render(text)
		case strings.HasPrefix(text, "+"):
			text = p.st.added.Render(text)
		case strings.HasPrefix(text, "-"):
			text = p.st.deleted.Render(text)
		}
		fmt.Fprintln(p.out, text)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func describeExit(exit repair.ExitStatus, d time.Duration) string {
	return fmt.Sprintf("(%s, %s)", exit.Describe(), d.Round(time.Millisecond))
}
