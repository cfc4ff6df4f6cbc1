package orchestrator

import (
	"context"
	"strings"

	"phishguard/internal/classifier"
	"phishguard/internal/notify"
	"phishguard/pkg/domain"
	"phishguard/pkg/logger"

	"go.uber.org/zap"
)

// NavigationOptions decide which navigations are not scanned.
type NavigationOptions struct {
	// ExcludedPrefixes are URL prefixes never scanned.
	ExcludedPrefixes []string
	// CompanionPrefix marks pages whose in-page views are scanned by the
	// content surface instead. Such URLs are skipped when they also contain
	// FragmentMarker. Empty disables the rule.
	CompanionPrefix string
	FragmentMarker  string
}

// DefaultNavigationOptions skips browser-internal pages, search result pages
// and opened webmail messages.
func DefaultNavigationOptions() NavigationOptions {
	return NavigationOptions{
		ExcludedPrefixes: []string{"chrome://", "chrome-extension://", "https://www.google.com/search"},
		CompanionPrefix:  "https://mail.google.com/mail/u/",
		FragmentMarker:   "#",
	}
}

// Navigator scans pages once their navigation completes.
type Navigator struct {
	classifier classifier.Classifier
	notifier   notify.Notifier
	opts       NavigationOptions
}

// NewNavigator creates a Navigator.
func NewNavigator(c classifier.Classifier, n notify.Notifier, opts NavigationOptions) *Navigator {
	return &Navigator{classifier: c, notifier: n, opts: opts}
}

// Ignored reports whether URL is outside navigation scanning.
func (n *Navigator) Ignored(URL string) bool {
	for _, p := range n.opts.ExcludedPrefixes {
		if p != "" && strings.HasPrefix(URL, p) {
			return true
		}
	}

	return n.opts.CompanionPrefix != "" &&
		strings.HasPrefix(URL, n.opts.CompanionPrefix) &&
		strings.Contains(URL, n.opts.FragmentMarker)
}

// OnNavigationComplete classifies URL and shows exactly one notification on
// surfaceID, except for unparseable URLs which are only logged. ok is false
// when URL is ignored.
func (n *Navigator) OnNavigationComplete(ctx context.Context, surfaceID, URL string) (*domain.ScanResult, bool) {
	if n.Ignored(URL) {
		return nil, false
	}
	ctx = logger.WithFields(ctx, zap.String("surfaceID", surfaceID), zap.String("url", URL))

	v := n.classifier.Classify(ctx, URL)
	res := &domain.ScanResult{
		Target:  domain.ScanTarget{URL: URL, Surface: domain.SurfaceNavigation, SurfaceID: surfaceID},
		Verdict: v,
	}

	msg, severity, ok := NavigationMessage(v)
	if !ok {
		logger.Info(ctx, "navigation not scanned", zap.String("reason", v.Reason()))

		return res, true
	}
	if v.IsError() {
		logger.Warn(ctx, "navigation scan failed", zap.String("reason", v.Reason()))
	}
	n.notifier.Notify(ctx, surfaceID, msg, severity)

	return res, true
}
