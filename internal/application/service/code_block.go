package service

import (
	"strings"

	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// codeBlock is one fenced block found in a reply
type codeBlock struct {
	tag  string
	body string
}

// fenceState tracks code fence parsing state
type fenceState struct {
	inFence   bool
	fenceChar byte
	fenceLen  int
}

// open reports whether trimmed opens a fence and returns its info string
func (f *fenceState) open(trimmed string) (string, bool) {
	if len(trimmed) < 3 || (trimmed[0] != '`' && trimmed[0] != '~') {
		return "", false
	}
	n := countLeadingChars(trimmed, trimmed[0])
	if n < 3 {
		return "", false
	}
	info := strings.TrimSpace(trimmed[n:])
	// A backtick fence info string may not contain backticks
	if trimmed[0] == '`' && strings.Contains(info, "`") {
		return "", false
	}
	f.inFence, f.fenceChar, f.fenceLen = true, trimmed[0], n
	return info, true
}

// closes reports whether trimmed closes the current fence: at least as many
// fence characters as the opener and nothing else on the line.
func (f *fenceState) closes(trimmed string) bool {
	if len(trimmed) == 0 || trimmed[0] != f.fenceChar {
		return false
	}
	n := countLeadingChars(trimmed, f.fenceChar)
	if n >= f.fenceLen && n == len(trimmed) {
		*f = fenceState{}
		return true
	}
	return false
}

func countLeadingChars(s string, char byte) int {
	count := 0
	for count < len(s) && s[count] == char {
		count++
	}
	return count
}

// scanCodeBlocks returns every closed fenced block in order.
// An unterminated trailing fence is ignored.
func scanCodeBlocks(reply string) []codeBlock {
	var (
		blocks []codeBlock
		fence  fenceState
		cur    codeBlock
		body   []string
	)
	for _, line := range strings.Split(strings.ReplaceAll(reply, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if !fence.inFence {
			if info, ok := fence.open(trimmed); ok {
				cur = codeBlock{tag: firstWord(info)}
				body = body[:0]
			}
			continue
		}
		if fence.closes(trimmed) {
			cur.body = strings.Join(body, "\n")
			blocks = append(blocks, cur)
			continue
		}
		body = append(body, line)
	}
	return blocks
}

func firstWord(info string) string {
	if i := strings.IndexAny(info, " \t{"); i >= 0 {
		info = info[:i]
	}
	return strings.ToLower(info)
}

// ExtractCodeBlock returns the replacement file from a model reply: the
// first block tagged with tag, else the first block of any tag.
func ExtractCodeBlock(reply, tag string) (string, error) {
	blocks := scanCodeBlocks(reply)
	if len(blocks) == 0 {
		return "", &repair.AdapterError{Kind: repair.NoCodeBlockFound}
	}

	chosen := blocks[0]
	if tag = strings.ToLower(tag); tag != "" {
		for _, b := range blocks {
			if b.tag == tag {
				chosen = b
				break
			}
		}
	}

	if strings.TrimSpace(chosen.body) == "" {
		return "", &repair.AdapterError{Kind: repair.EmptyPatch}
	}
	return strings.Trim(chosen.body, "\n") + "\n", nil
}
