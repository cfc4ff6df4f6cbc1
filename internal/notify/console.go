package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// WriterRenderer prints notifications as text, one block per notification.
// Removal is a no-op: printed lines cannot be taken back.
type WriterRenderer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterRenderer renders to w.
func NewWriterRenderer(w io.Writer) *WriterRenderer {
	return &WriterRenderer{w: w}
}

func (r *WriterRenderer) Show(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := fmt.Sprintf("[%s] ", n.Severity)
	body := strings.ReplaceAll(n.Message, "\n", "\n"+strings.Repeat(" ", len(prefix)))
	if _, err := fmt.Fprintf(r.w, "%s%s\n", prefix, body); err != nil {
		return fmt.Errorf("could not write notification: %w", err)
	}

	return nil
}

func (r *WriterRenderer) Remove(context.Context, string, string) error { return nil }

var _ Renderer = (*WriterRenderer)(nil)
