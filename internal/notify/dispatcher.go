package notify

import (
	"context"
	"sync"
	"time"

	"phishguard/pkg/domain"
	"phishguard/pkg/logger"
	"phishguard/pkg/metrics"

	"go.uber.org/zap"
)

// DispatcherOptions configure a Dispatcher.
type DispatcherOptions struct {
	// Name labels metrics and logs, e.g. "navigation".
	Name string
	// ID is the well-known notification id. Defaults to PopupID.
	ID string
	// Timeout is how long a notification stays. Defaults to NavigationTimeout.
	Timeout  time.Duration
	Recorder *metrics.Recorder
}

type shown struct {
	n     Notification
	timer *time.Timer
	seq   uint64
}

// Dispatcher keeps at most one visible notification per surface. Showing a
// new one removes the previous one first.
type Dispatcher struct {
	renderer Renderer
	opts     DispatcherOptions

	mu      sync.Mutex
	seq     uint64
	visible map[string]*shown
}

// NewDispatcher creates a Dispatcher drawing on renderer.
func NewDispatcher(renderer Renderer, opts DispatcherOptions) *Dispatcher {
	if opts.ID == "" {
		opts.ID = PopupID
	}
	if opts.Timeout <= 0 {
		opts.Timeout = NavigationTimeout
	}

	return &Dispatcher{
		renderer: renderer,
		opts:     opts,
		visible:  make(map[string]*shown),
	}
}

// Notify replaces whatever this dispatcher shows on surfaceID with message.
// Rendering failures are logged; they never reach the caller.
func (d *Dispatcher) Notify(ctx context.Context, surfaceID, message string, severity domain.Severity) {
	n := Notification{
		ID:        d.opts.ID,
		SurfaceID: surfaceID,
		Message:   message,
		Severity:  severity,
		Color:     ColorFor(severity),
		Timeout:   d.opts.Timeout,
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.visible[surfaceID]; ok {
		prev.timer.Stop()
		delete(d.visible, surfaceID)
	}
	if err := d.renderer.Remove(ctx, surfaceID, n.ID); err != nil {
		logger.Warn(ctx, "could not remove notification", zap.String("dispatcher", d.opts.Name), zap.Error(err))
	}
	if err := d.renderer.Show(ctx, n); err != nil {
		logger.Warn(ctx, "could not show notification", zap.String("dispatcher", d.opts.Name), zap.Error(err))

		return
	}
	d.opts.Recorder.Notification(ctx, d.opts.Name, string(severity))

	d.seq++
	seq := d.seq
	d.visible[surfaceID] = &shown{
		n:     n,
		seq:   seq,
		timer: time.AfterFunc(d.opts.Timeout, func() { d.expire(surfaceID, seq) }),
	}
}

// Dismiss removes the visible notification on surfaceID, as a user click
// would. It reports whether one was visible.
func (d *Dispatcher) Dismiss(ctx context.Context, surfaceID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.visible[surfaceID]
	if !ok {
		return false
	}
	s.timer.Stop()
	delete(d.visible, surfaceID)
	if err := d.renderer.Remove(ctx, surfaceID, s.n.ID); err != nil {
		logger.Warn(ctx, "could not remove notification", zap.String("dispatcher", d.opts.Name), zap.Error(err))
	}

	return true
}

// Visible returns the notification currently shown on surfaceID.
func (d *Dispatcher) Visible(surfaceID string) (Notification, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.visible[surfaceID]
	if !ok {
		return Notification{}, false
	}

	return s.n, true
}

// Close stops all pending self-dismissals.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, s := range d.visible {
		s.timer.Stop()
		delete(d.visible, id)
	}
}

func (d *Dispatcher) expire(surfaceID string, seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// a newer notification or a dismissal got here first
	s, ok := d.visible[surfaceID]
	if !ok || s.seq != seq {
		return
	}
	delete(d.visible, surfaceID)
	if err := d.renderer.Remove(context.Background(), surfaceID, s.n.ID); err != nil {
		logger.Warn(context.Background(), "could not remove expired notification",
			zap.String("dispatcher", d.opts.Name), zap.Error(err))
	}
}

var _ Notifier = (*Dispatcher)(nil)
