package trace

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// StreamTracer writes events immediately to an io.Writer as text lines.
type StreamTracer struct {
	mu    sync.Mutex
	w     io.Writer
	level Level
	seq   uint64
}

// NewStreamTracer creates a new StreamTracer.
func NewStreamTracer(w io.Writer, level Level) *StreamTracer {
	return &StreamTracer{
		w:     w,
		level: level,
	}
}

// Emit writes an event to the output.
func (t *StreamTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	ev.Seq = t.seq

	line := fmt.Sprintf("[%s] #%d %s %s", ev.Time.Format("15:04:05.000"), ev.Seq, ev.Scope, ev.Name)
	if ev.Detail != "" {
		line += " " + ev.Detail
	}
	// Best-effort write: trace output must never disrupt layout queries.
	_, _ = io.WriteString(t.w, line+"\n") //nolint:errcheck
}

// Flush ensures all buffered data is written.
// For StreamTracer this is a no-op unless the writer buffers.
func (t *StreamTracer) Flush() error {
	if flusher, ok := t.w.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close flushes and closes the writer if it implements io.Closer.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if closer, ok := t.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Level returns the current tracing level.
func (t *StreamTracer) Level() Level {
	return t.level
}

// Enabled returns true if tracing is active.
func (t *StreamTracer) Enabled() bool {
	return t.level > LevelOff
}
