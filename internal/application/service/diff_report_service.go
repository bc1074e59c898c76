package service

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	godiff "github.com/sourcegraph/go-diff/diff"

	"github.com/Ajay03299/DevForge/internal/domain/diff"
)

// DefaultContextLines is the number of unchanged lines around each hunk
const DefaultContextLines = 3

// noNewlineMarker follows a diff line whose source line has no terminator
const noNewlineMarker = "\\ No newline at end of file\n"

var opByTag = map[byte]diff.Op{
	'e': diff.OpEqual,
	'i': diff.OpInsert,
	'd': diff.OpDelete,
	'r': diff.OpReplace,
}

// DiffReportService computes line diffs for presentation. It never feeds
// back into the repair loop.
type DiffReportService struct {
	contextLines int
}

// NewDiffReportService creates a diff service with the default context size
func NewDiffReportService() *DiffReportService {
	return &DiffReportService{contextLines: DefaultContextLines}
}

// Diff returns the edit script turning original into final
func (s *DiffReportService) Diff(original, final string) diff.Report {
	a, b := diff.SplitLines(original), diff.SplitLines(final)
	m := difflib.NewMatcher(a, b)

	var report diff.Report
	for _, oc := range m.GetOpCodes() {
		e := diff.Edit{
			Op:        opByTag[oc.Tag],
			OrigStart: oc.I1,
			OrigEnd:   oc.I2,
			NewStart:  oc.J1,
			NewEnd:    oc.J2,
		}
		if oc.I2 > oc.I1 {
			e.Orig = append([]string(nil), a[oc.I1:oc.I2]...)
		}
		if oc.J2 > oc.J1 {
			e.New = append([]string(nil), b[oc.J1:oc.J2]...)
		}
		report.Edits = append(report.Edits, e)
	}
	return report
}

// FileDiff builds a unified file diff between original and final.
// It returns nil when the texts are identical.
func (s *DiffReportService) FileDiff(name, original, final string) *godiff.FileDiff {
	a, b := diff.SplitLines(original), diff.SplitLines(final)
	m := difflib.NewMatcher(a, b)

	groups := m.GetGroupedOpCodes(s.contextLines)
	if len(groups) == 0 || (len(groups) == 1 && len(groups[0]) == 1 && groups[0][0].Tag == 'e') {
		return nil
	}

	fd := &godiff.FileDiff{OrigName: "a/" + name, NewName: "b/" + name}
	for _, g := range groups {
		first, last := g[0], g[len(g)-1]
		h := &godiff.Hunk{
			OrigStartLine: int32(first.I1 + 1),
			OrigLines:     int32(last.I2 - first.I1),
			NewStartLine:  int32(first.J1 + 1),
			NewLines:      int32(last.J2 - first.J1),
		}
		// Unified diff convention: an empty range starts at the line before it
		if h.OrigLines == 0 {
			h.OrigStartLine--
		}
		if h.NewLines == 0 {
			h.NewStartLine--
		}

		var body []byte
		for _, oc := range g {
			if oc.Tag == 'e' {
				body = appendLines(body, ' ', a[oc.I1:oc.I2])
				continue
			}
			if oc.Tag == 'r' || oc.Tag == 'd' {
				body = appendLines(body, '-', a[oc.I1:oc.I2])
			}
			if oc.Tag == 'r' || oc.Tag == 'i' {
				body = appendLines(body, '+', b[oc.J1:oc.J2])
			}
		}
		h.Body = body
		fd.Hunks = append(fd.Hunks, h)
	}
	return fd
}

// Unified renders the unified diff text, or "" when nothing changed
func (s *DiffReportService) Unified(name, original, final string) (string, error) {
	fd := s.FileDiff(name, original, final)
	if fd == nil {
		return "", nil
	}
	out, err := godiff.PrintFileDiff(fd)
	if err != nil {
		return "", fmt.Errorf("failed to render diff for %s: %w", name, err)
	}
	return string(out), nil
}

func appendLines(body []byte, prefix byte, lines []string) []byte {
	for _, l := range lines {
		body = append(body, prefix)
		body = append(body, l...)
		if len(l) == 0 || l[len(l)-1] != '\n' {
			body = append(body, '\n')
			body = append(body, noNewlineMarker...)
		}
	}
	return body
}
