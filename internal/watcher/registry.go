package watcher

import (
	"context"
	"sync"
	"time"

	"phishguard/pkg/logger"

	"go.uber.org/zap"
)

const (
	// DefaultIdleTimeout is how long a surface without pushes is kept.
	DefaultIdleTimeout = 10 * time.Minute
	// DefaultMaxSurfaces caps the number of surfaces kept at once.
	DefaultMaxSurfaces = 1024
)

// SurfaceScanFunc receives changed text of the surface with surfaceID.
type SurfaceScanFunc func(ctx context.Context, surfaceID, text string)

// RegistryOptions configure a Registry.
type RegistryOptions struct {
	// Selector picks the message body, see NewPushSurface.
	Selector string
	// Settle is the detector settle delay.
	Settle time.Duration
	// IdleTimeout reclaims surfaces that received no push for this long.
	// Defaults to DefaultIdleTimeout.
	IdleTimeout time.Duration
	// MaxSurfaces caps the surfaces kept; the least recently pushed one is
	// reclaimed to make room. Defaults to DefaultMaxSurfaces.
	MaxSurfaces int
}

type entry struct {
	surface  *PushSurface
	detector *Detector
	cancel   context.CancelFunc
	done     chan struct{}
	timer    *time.Timer
	last     time.Time
}

// Registry keeps one PushSurface and Detector per surface id, created on
// first push and reclaimed when idle, when evicted by the cap, or by Close.
type Registry struct {
	opts RegistryOptions
	scan SurfaceScanFunc

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	entries  map[string]*entry
	retiring sync.WaitGroup
}

// NewRegistry creates a Registry whose detectors live until ctx is done or
// Close is called.
func NewRegistry(ctx context.Context, opts RegistryOptions, scan SurfaceScanFunc) *Registry {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.MaxSurfaces <= 0 {
		opts.MaxSurfaces = DefaultMaxSurfaces
	}
	ctx, cancel := context.WithCancel(ctx)

	return &Registry{
		opts:    opts,
		scan:    scan,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]*entry),
	}
}

// Push records a new state of surfaceID. Pushes after Close are dropped.
func (r *Registry) Push(surfaceID, location, html string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()

		return
	}
	e := r.getLocked(surfaceID)
	e.last = time.Now()
	r.mu.Unlock()

	e.surface.Update(location, html)
}

// Len returns the number of known surfaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// Close stops every detector and waits for in-flight scans.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		e.timer.Stop()
		entries = append(entries, e)
	}
	r.mu.Unlock()

	r.cancel()
	for _, e := range entries {
		<-e.done
		e.detector.Wait()
	}
	r.retiring.Wait()
}

func (r *Registry) getLocked(surfaceID string) *entry {
	if e, ok := r.entries[surfaceID]; ok {
		return e
	}
	if len(r.entries) >= r.opts.MaxSurfaces {
		r.evictOldestLocked()
	}

	surface := NewPushSurface(r.opts.Selector)
	// scans run on the registry context, so reclaiming a surface does not
	// cancel a scan it started
	detector := NewDetector(surface, func(_ context.Context, text string) {
		r.scan(r.ctx, surfaceID, text)
	}, r.opts.Settle)
	ctx, cancel := context.WithCancel(r.ctx)
	e := &entry{surface: surface, detector: detector, cancel: cancel, done: make(chan struct{})}
	e.timer = time.AfterFunc(r.opts.IdleTimeout, func() { r.reap(surfaceID, e) })
	r.entries[surfaceID] = e

	go func() {
		defer close(e.done)
		e.detector.Run(ctx, surface.Mutations())
	}()

	return e
}

func (r *Registry) reap(surfaceID string, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.entries[surfaceID] != e {
		return
	}
	if idle := time.Since(e.last); idle < r.opts.IdleTimeout {
		e.timer.Reset(r.opts.IdleTimeout - idle)

		return
	}
	logger.Debug(r.ctx, "reclaiming idle surface", zap.String("surfaceID", surfaceID))
	r.retireLocked(surfaceID, e)
}

func (r *Registry) evictOldestLocked() {
	var (
		oldestID string
		oldest   *entry
	)
	for id, e := range r.entries {
		if oldest == nil || e.last.Before(oldest.last) {
			oldestID, oldest = id, e
		}
	}
	if oldest == nil {
		return
	}
	logger.Debug(r.ctx, "surface limit reached, reclaiming least recent",
		zap.String("surfaceID", oldestID), zap.Int("max", r.opts.MaxSurfaces))
	r.retireLocked(oldestID, oldest)
}

// retireLocked removes e and stops its detector. Close waits for its scans.
func (r *Registry) retireLocked(surfaceID string, e *entry) {
	delete(r.entries, surfaceID)
	e.timer.Stop()
	e.cancel()

	r.retiring.Add(1)
	go func() {
		defer r.retiring.Done()
		<-e.done
		e.detector.Wait()
	}()
}
