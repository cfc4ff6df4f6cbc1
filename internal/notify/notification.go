// Package notify shows scan outcomes to the user. A Dispatcher keeps at most
// one notification per surface and dismisses it after a timeout; Renderers
// put it on screen. Content scans report to the navigation side through an
// asynchronous Bridge whose messages a Relay turns into a summary.
package notify

import (
	"time"

	"phishguard/pkg/domain"
)

// Notification ids. Each dispatcher owns one so the navigation popup and the
// email result list can be on screen at the same time.
const (
	PopupID      = "phishguard-popup"
	EmailPopupID = "phishguard-email-popup"
)

// Default lifetimes of a notification.
const (
	NavigationTimeout = 10 * time.Second
	ContentTimeout    = 15 * time.Second
)

// Severity colors.
const (
	ColorSafe   = "#188038"
	ColorDanger = "#d93025"
	ColorInfo   = "#1a73e8"
)

// Notification is what a Renderer draws.
type Notification struct {
	ID        string          `json:"id"`
	SurfaceID string          `json:"surfaceId"`
	Message   string          `json:"message"`
	Severity  domain.Severity `json:"severity"`
	Color     string          `json:"color"`
	Timeout   time.Duration   `json:"-"`
}

// ColorFor returns the background color for severity.
func ColorFor(severity domain.Severity) string {
	switch severity {
	case domain.SeveritySafe:
		return ColorSafe
	case domain.SeverityPhishing, domain.SeverityError:
		return ColorDanger
	default:
		return ColorInfo
	}
}
