package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

func TestExtractCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		tag      string
		want     string
		wantKind repair.AdapterErrorKind
	}{
		{
			name:  "single tagged block",
			reply: "Here you go:\n```python\nprint(5)\n```\n",
			tag:   "python",
			want:  "print(5)\n",
		},
		{
			name:  "prefers matching tag over earlier block",
			reply: "```text\nexplanation\n```\n```python\nx = 1\nprint(x)\n```",
			tag:   "python",
			want:  "x = 1\nprint(x)\n",
		},
		{
			name:  "falls back to first block",
			reply: "```\nconsole.log(5)\n```",
			tag:   "javascript",
			want:  "console.log(5)\n",
		},
		{
			name:  "tag match is case insensitive and ignores attributes",
			reply: "```Python title=\"fix\"\nprint(5)\n```",
			tag:   "python",
			want:  "print(5)\n",
		},
		{
			name:  "longer fence contains shorter fences",
			reply: "````markdown\n```python\nprint(1)\n```\n````",
			tag:   "markdown",
			want:  "```python\nprint(1)\n```\n",
		},
		{
			name:  "tilde fence and CRLF",
			reply: "~~~sh\r\necho ok\r\n~~~\r\n",
			tag:   "sh",
			want:  "echo ok\n",
		},
		{
			name:  "indentation inside block is kept",
			reply: "```python\ndef f():\n    return 5\n```",
			tag:   "python",
			want:  "def f():\n    return 5\n",
		},
		{
			name:     "no fence",
			reply:    "print(5)",
			tag:      "python",
			wantKind: repair.NoCodeBlockFound,
		},
		{
			name:     "unterminated fence",
			reply:    "```python\nprint(5)\n",
			tag:      "python",
			wantKind: repair.NoCodeBlockFound,
		},
		{
			name:     "blank block",
			reply:    "```python\n   \n\n```",
			tag:      "python",
			wantKind: repair.EmptyPatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractCodeBlock(tt.reply, tt.tag)
			if tt.wantKind != "" {
				var aerr *repair.AdapterError
				require.True(t, errors.As(err, &aerr), "want AdapterError, got %v", err)
				assert.Equal(t, tt.wantKind, aerr.Kind)
				assert.Equal(t, repair.CodeAdapterMalformed, aerr.Code())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
