package sandbox

import (
	"fmt"
	"sync"
	"unicode/utf8"
)

// DefaultOutputLimit caps each captured stream
const DefaultOutputLimit = 1 << 20

// tailBuffer keeps the last limit bytes written to it and counts the rest.
// buf may hold up to twice limit before it is compacted.
type tailBuffer struct {
	mu      sync.Mutex
	limit   int
	buf     []byte
	written int64
}

func newTailBuffer(limit int) *tailBuffer {
	if limit <= 0 {
		limit = DefaultOutputLimit
	}
	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.written += int64(len(p))
	if len(p) >= b.limit {
		b.buf = append(b.buf[:0], p[len(p)-b.limit:]...)
		return len(p), nil
	}
	b.buf = append(b.buf, p...)
	if len(b.buf) > 2*b.limit {
		n := copy(b.buf, b.buf[len(b.buf)-b.limit:])
		b.buf = b.buf[:n]
	}
	return len(p), nil
}

func (b *tailBuffer) tail() []byte {
	if over := len(b.buf) - b.limit; over > 0 {
		return b.buf[over:]
	}
	return b.buf
}

// Truncated reports whether any output was dropped
func (b *tailBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.written > int64(len(b.tail()))
}

// String returns the retained tail, prefixed by a marker when output was dropped
func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	tail := b.tail()
	dropped := b.written - int64(len(tail))
	if dropped == 0 {
		return string(tail)
	}
	// Do not start on a partial rune
	skipped := 0
	for len(tail) > 0 && !utf8.RuneStart(tail[0]) {
		tail = tail[1:]
		skipped++
	}
	return fmt.Sprintf("[... truncated %d bytes ...]\n%s", dropped+int64(skipped), tail)
}
