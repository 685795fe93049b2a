package report

import (
	"io"
	"sync"
)

// Sink serializes whole per-file reports onto a shared writer so reports
// from concurrent workers never interleave.
type Sink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSink wraps w.
func NewSink(w io.Writer) *Sink {
	return &Sink{w: w}
}

// Write writes p in a single locked call.
func (s *Sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
