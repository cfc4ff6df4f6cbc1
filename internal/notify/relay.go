package notify

import (
	"context"
	"fmt"
	"strings"

	"phishguard/pkg/domain"
)

// Relay messages.
const (
	MsgEmailScanning   = "🔍 Scanning email URLs for phishing..."
	MsgEmailPhishingN  = "🚨 Email Scan: %d phishing link(s) detected!"
	MsgEmailNoPhishing = "✅ Email Scan: No phishing links found in email."
)

// Relay receives content scan messages and summarizes them through a
// Notifier, typically the navigation dispatcher.
type Relay struct {
	notifier Notifier
}

// NewRelay creates a Relay reporting through notifier.
func NewRelay(notifier Notifier) *Relay {
	return &Relay{notifier: notifier}
}

// Handle implements Handler.
func (r *Relay) Handle(ctx context.Context, surfaceID string, m Message) {
	switch m.Type {
	case MessageEmailScanStarted:
		r.notifier.Notify(ctx, surfaceID, MsgEmailScanning, domain.SeverityInfo)
	case MessageEmailScanResults:
		if n := CountPhishing(m.Results); n > 0 {
			r.notifier.Notify(ctx, surfaceID, fmt.Sprintf(MsgEmailPhishingN, n), domain.SeverityPhishing)
		} else {
			r.notifier.Notify(ctx, surfaceID, MsgEmailNoPhishing, domain.SeveritySafe)
		}
	}
}

// CountPhishing counts lines carrying the phishing marker.
func CountPhishing(lines []string) int {
	n := 0
	for _, l := range lines {
		if strings.Contains(l, domain.PhishingMarker) {
			n++
		}
	}

	return n
}

var _ Handler = (*Relay)(nil)
