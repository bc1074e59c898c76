package diff

import (
	"fmt"
	"strings"
)

// Op is a line-level edit operation
type Op string

const (
	OpEqual   Op = "equal"
	OpInsert  Op = "insert"
	OpDelete  Op = "delete"
	OpReplace Op = "replace"
)

// Edit covers Orig[OrigStart:OrigEnd] -> New[NewStart:NewEnd] in line units.
// Lines keep their terminators so that joining them reproduces the text.
type Edit struct {
	Op        Op       `json:"op"`
	OrigStart int      `json:"orig_start"`
	OrigEnd   int      `json:"orig_end"`
	NewStart  int      `json:"new_start"`
	NewEnd    int      `json:"new_end"`
	Orig      []string `json:"orig,omitempty"`
	New       []string `json:"new,omitempty"`
}

// Report is the ordered edit script between two snapshots
type Report struct {
	Edits []Edit `json:"edits"`
}

// SplitLines splits s after every "\n". A final line without terminator is
// kept as is; an empty string has no lines.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Changed reports whether the report contains any non-equal edit
func (r Report) Changed() bool {
	for _, e := range r.Edits {
		if e.Op != OpEqual {
			return true
		}
	}
	return false
}

// Stats returns the number of added and deleted lines (a replace counts both)
func (r Report) Stats() (added, deleted int) {
	for _, e := range r.Edits {
		switch e.Op {
		case OpInsert:
			added += e.NewEnd - e.NewStart
		case OpDelete:
			deleted += e.OrigEnd - e.OrigStart
		case OpReplace:
			added += e.NewEnd - e.NewStart
			deleted += e.OrigEnd - e.OrigStart
		}
	}
	return added, deleted
}

// Apply replays the edits over original and returns the resulting text.
// It fails when the edits do not describe original contiguously.
func (r Report) Apply(original string) (string, error) {
	orig := SplitLines(original)
	var b strings.Builder
	cursor := 0

	for i, e := range r.Edits {
		if e.OrigStart != cursor || e.OrigEnd < e.OrigStart || e.OrigEnd > len(orig) {
			return "", fmt.Errorf("edit %d covers lines %d-%d, expected start %d of %d", i, e.OrigStart, e.OrigEnd, cursor, len(orig))
		}
		if e.Op != OpInsert && !sameLines(orig[e.OrigStart:e.OrigEnd], e.Orig) {
			return "", fmt.Errorf("edit %d does not match the original at line %d", i, e.OrigStart+1)
		}

		switch e.Op {
		case OpEqual, OpDelete:
			if e.Op == OpEqual {
				writeLines(&b, orig[e.OrigStart:e.OrigEnd])
			}
		case OpInsert, OpReplace:
			writeLines(&b, e.New)
		default:
			return "", fmt.Errorf("edit %d has unknown op %q", i, e.Op)
		}
		cursor = e.OrigEnd
	}

	if cursor != len(orig) {
		return "", fmt.Errorf("edits stop at line %d of %d", cursor, len(orig))
	}
	return b.String(), nil
}

func sameLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func writeLines(b *strings.Builder, lines []string) {
	for _, l := range lines {
		b.WriteString(l)
	}
}
