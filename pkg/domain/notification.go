package domain

// Severity drives the presentation color of a notification.
type Severity string

const (
	SeveritySafe     Severity = "safe"
	SeverityPhishing Severity = "phishing"
	SeverityError    Severity = "error"
	SeverityInfo     Severity = "info"
)
