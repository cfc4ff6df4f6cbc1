package orchestrator

import (
	"context"
	"strings"

	"phishguard/internal/classifier"
	"phishguard/internal/notify"
	"phishguard/pkg/domain"
	"phishguard/pkg/logger"
	"phishguard/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds in-flight classifications per batch.
const DefaultConcurrency = 8

// ContentOptions configure a ContentScanner.
type ContentOptions struct {
	Concurrency int
	Recorder    *metrics.Recorder
}

// ContentScanner scans every URL found in a changed content view.
type ContentScanner struct {
	classifier classifier.Classifier
	notifier   notify.Notifier
	sender     notify.Sender
	opts       ContentOptions
}

// NewContentScanner creates a ContentScanner. notifier draws on the content
// surface itself; sender forwards progress to the navigation side.
func NewContentScanner(c classifier.Classifier, notifier notify.Notifier, sender notify.Sender, opts ContentOptions) *ContentScanner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	return &ContentScanner{classifier: c, notifier: notifier, sender: sender, opts: opts}
}

// OnContentChanged extracts URLs from text, classifies them concurrently and
// reports once all are done. Results keep discovery order.
func (s *ContentScanner) OnContentChanged(ctx context.Context, surfaceID, text string) domain.ScanBatch {
	ctx = logger.WithFields(ctx, zap.String("surfaceID", surfaceID))

	urls := ExtractURLs(text)
	if len(urls) == 0 {
		s.notifier.Notify(ctx, surfaceID, MsgNoURLs, domain.SeverityInfo)

		return domain.NewScanBatch(surfaceID, nil)
	}

	s.notifier.Notify(ctx, surfaceID, MsgScanningEmail, domain.SeverityInfo)
	s.sender.Send(ctx, surfaceID, notify.EmailScanStarted())

	results := make([]domain.ScanResult, len(urls))
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, u := range urls {
		g.Go(func() error {
			results[i] = domain.ScanResult{
				Target: domain.ScanTarget{
					URL:       u,
					Surface:   domain.SurfaceEmailContent,
					SurfaceID: surfaceID,
				},
				Verdict: s.classifier.Classify(logger.WithFields(ctx, zap.String("url", u)), u),
			}

			return nil
		})
	}
	_ = g.Wait()

	batch := domain.NewScanBatch(surfaceID, results)
	lines := FormatResultLines(batch.Results)

	severity := batchSeverity(batch)
	s.notifier.Notify(ctx, surfaceID, strings.Join(lines, "\n"), severity)
	s.sender.Send(ctx, surfaceID, notify.EmailScanResults(lines))
	s.opts.Recorder.Batch(ctx, len(batch.Results), batch.PhishingCount)

	logger.Info(ctx, "content scan finished",
		zap.Stringer("batchID", batch.ID),
		zap.Int("urls", len(batch.Results)),
		zap.Int("phishing", batch.PhishingCount))

	return batch
}

// batchSeverity is phishing when any URL is flagged, error when none is but
// some could not be classified, and safe otherwise.
func batchSeverity(b domain.ScanBatch) domain.Severity {
	if b.PhishingCount > 0 {
		return domain.SeverityPhishing
	}
	for _, r := range b.Results {
		if r.Verdict.IsError() {
			return domain.SeverityError
		}
	}

	return domain.SeveritySafe
}
