package supervisor

import "sync"

// ConsoleBuffer is an append-only, ordered log of captured output lines.
// One writer (the stdout pump) and any number of concurrent readers. Offsets
// handed to readers stay valid for the life of the buffer; lines are never
// removed or reordered.
//
// There is no eviction: a chatty server grows the buffer without bound.
// Callers wanting history limits must layer them on top.
type ConsoleBuffer struct {
	mu    sync.Mutex
	lines []string
}

// Append adds one line to the end of the log.
func (b *ConsoleBuffer) Append(line string) {
	b.mu.Lock()
	b.lines = append(b.lines, line)
	b.mu.Unlock()
}

// SnapshotFrom returns a copy of all lines with index >= offset, in order.
// Offsets past the end (or negative) are clamped; it never fails.
func (b *ConsoleBuffer) SnapshotFrom(offset int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if offset < 0 {
		offset = 0
	}
	if offset > len(b.lines) {
		offset = len(b.lines)
	}
	out := make([]string, len(b.lines)-offset)
	copy(out, b.lines[offset:])
	return out
}

// Len returns the number of lines captured so far.
func (b *ConsoleBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}
