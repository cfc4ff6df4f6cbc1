// Package watcher notices when a content view shows new text and hands that
// text to a scan. A Detector consumes mutation signals from a Surface; after
// a location change it waits for the view to settle before reading.
package watcher

import (
	"context"
	"sync"
	"time"

	"phishguard/pkg/logger"

	"go.uber.org/zap"
)

// DefaultSettleDelay is how long a view gets to render after its location
// changes.
const DefaultSettleDelay = 1500 * time.Millisecond

// Surface is an observable content view.
type Surface interface {
	// Location identifies what the view shows, e.g. the page URL.
	Location() string
	// Text returns the visible text, or "" when there is none.
	Text(ctx context.Context) (string, error)
}

// ScanFunc receives text that differs from the previous snapshot.
type ScanFunc func(ctx context.Context, text string)

// Detector turns mutation signals into scans of changed text.
type Detector struct {
	surface Surface
	scan    ScanFunc
	settle  time.Duration

	scans sync.WaitGroup
}

// NewDetector creates a Detector. settle <= 0 uses DefaultSettleDelay.
func NewDetector(surface Surface, scan ScanFunc, settle time.Duration) *Detector {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}

	return &Detector{surface: surface, scan: scan, settle: settle}
}

// Run handles mutations until ctx is done or mutations is closed. Scans run
// asynchronously and are not cancelled by later changes; Wait blocks until
// they finish.
func (d *Detector) Run(ctx context.Context, mutations <-chan struct{}) {
	var (
		location = d.surface.Location()
		snapshot string
		timer    *time.Timer
		settled  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-mutations:
			if !ok {
				return
			}
			if loc := d.surface.Location(); loc != location {
				location = loc
				if timer == nil {
					timer = time.NewTimer(d.settle)
				} else {
					timer.Reset(d.settle)
				}
				settled = timer.C

				continue
			}
			d.evaluate(ctx, &snapshot)
		case <-settled:
			settled = nil
			d.evaluate(ctx, &snapshot)
		}
	}
}

// Wait blocks until every launched scan returned.
func (d *Detector) Wait() {
	d.scans.Wait()
}

func (d *Detector) evaluate(ctx context.Context, snapshot *string) {
	text, err := d.surface.Text(ctx)
	if err != nil {
		logger.Warn(ctx, "could not read surface text", zap.Error(err))

		return
	}
	if text == "" || text == *snapshot {
		return
	}
	*snapshot = text

	d.scans.Add(1)
	go func() {
		defer d.scans.Done()
		d.scan(ctx, text)
	}()
}
