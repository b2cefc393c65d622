package redaction

import (
	"io"
	"sync"

	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
)

// Writer wraps an io.Writer and scrubs everything written through it.
// It is safe for concurrent use, which lets a slog handler share it.
type Writer struct {
	underlying io.Writer
	scrubber   ports.Scrubber
	mu         sync.Mutex
}

// NewWriter creates a redacting writer. A nil scrubber passes data through.
func NewWriter(w io.Writer, s ports.Scrubber) *Writer {
	return &Writer{
		underlying: w,
		scrubber:   s,
	}
}

// Write implements io.Writer. It reports len(p) on success even when the
// scrubbed output is shorter or longer.
func (w *Writer) Write(p []byte) (int, error) {
	out := p
	if w.scrubber != nil {
		out = []byte(w.scrubber.ScrubString(string(p)))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.underlying.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}
