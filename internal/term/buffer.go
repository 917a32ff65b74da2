package term

import (
	"strings"
	"sync"
)

// defaultBufferCap bounds retained output per session. When exceeded, the
// oldest bytes are dropped so the tail stays current.
const defaultBufferCap = 256 * 1024

// Buffer accumulates a session's combined stdout/stderr stream. It is the
// write target handed to the process layer and the read-only view handed
// to display surfaces and preview UIs. Safe for concurrent use.
type Buffer struct {
	mu   sync.Mutex
	data []byte
	max  int
}

// NewBuffer creates a buffer with the default retention cap.
func NewBuffer() *Buffer {
	return &Buffer{max: defaultBufferCap}
}

// Write implements io.Writer for the process output stream.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, p...)
	if len(b.data) > b.max {
		// Keep the tail; cut at a line boundary where possible.
		cut := len(b.data) - b.max
		if nl := strings.IndexByte(string(b.data[cut:]), '\n'); nl >= 0 {
			cut += nl + 1
		}
		b.data = append(b.data[:0], b.data[cut:]...)
	}
	return len(p), nil
}

// Tail returns up to n trailing lines. A trailing newline does not count
// as an empty final line.
func (b *Buffer) Tail(n int) []string {
	b.mu.Lock()
	s := string(b.data)
	b.mu.Unlock()

	if s == "" || n <= 0 {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	if n < len(lines) {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// Len returns the number of retained bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// String returns the full retained content.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.data)
}
