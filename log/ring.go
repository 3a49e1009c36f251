package log

import (
	"strings"
	"sync"
)

// Ring keeps the most recent log lines in memory. It satisfies zapcore.WriteSyncer so it can be
// passed to New as an extra sink.
type Ring struct {
	mu    sync.Mutex
	lines []string
	size  int
}

// NewRing creates a Ring holding at most size lines.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = 1
	}
	return &Ring{size: size}
}

// Write stores p as one or more lines, dropping the oldest ones once the ring is full.
func (r *Ring) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if l == "" {
			continue
		}
		if len(r.lines) == r.size {
			copy(r.lines, r.lines[1:])
			r.lines = r.lines[:r.size-1]
		}
		r.lines = append(r.lines, l)
	}
	return len(p), nil
}

// Sync .
func (r *Ring) Sync() error {
	return nil
}

// Drain returns the buffered lines oldest first and empties the ring.
func (r *Ring) Drain() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.lines))
	copy(out, r.lines)
	r.lines = r.lines[:0]
	return out
}
