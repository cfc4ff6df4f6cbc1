package orchestrator

import (
	"fmt"
	"strconv"

	"phishguard/pkg/domain"
	"phishguard/pkg/serrors"
)

// Navigation messages.
const (
	MsgGenuine       = "✅ This website appears to be genuine.\nPhishing Probability: %s%%"
	MsgKnownPhishing = "⚠️ DNS Filter: Known phishing domain!"
	MsgAIWarning     = "🚨 AI Warning: This site may be phishing!\nPhishing Probability: %s%%"
	MsgScanError     = "❌ Error scanning URL: Please check API server."
)

// Content messages.
const (
	MsgNoURLs        = "No URLs found in this email."
	MsgScanningEmail = "Scanning email for phishing URLs..."
)

// FormatPercent renders a probability in [0, 1] as a percentage with two
// decimals, e.g. 0.87 -> "87.00".
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p*100, 'f', 2, 64)
}

// FormatResultLine renders one email scan result:
//
//	https://a.example → 🚨 Phishing (Phishing Probability: 87.00%)
//	https://b.example → ⚠️ Error scanning URL (status 502)
func FormatResultLine(r domain.ScanResult) string {
	v := r.Verdict
	if v.IsError() {
		return fmt.Sprintf("%s → %s (%s)", r.Target.URL, v.Label, v.Reason())
	}

	return fmt.Sprintf("%s → %s (Phishing Probability: %s%%)", r.Target.URL, v.Label, FormatPercent(v.PhishingProbability()))
}

// FormatResultLines renders results in order.
func FormatResultLines(results []domain.ScanResult) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, FormatResultLine(r))
	}

	return lines
}

// NavigationMessage returns the navigation notification for v. ok is false
// when nothing should be shown.
func NavigationMessage(v domain.Verdict) (msg string, severity domain.Severity, ok bool) {
	switch v.Kind {
	case domain.VerdictWhitelisted, domain.VerdictScoredSafe:
		return fmt.Sprintf(MsgGenuine, FormatPercent(v.Confidence)), domain.SeveritySafe, true
	case domain.VerdictBlocklisted:
		return MsgKnownPhishing, domain.SeverityPhishing, true
	case domain.VerdictScoredPhishing:
		return fmt.Sprintf(MsgAIWarning, FormatPercent(v.Confidence)), domain.SeverityPhishing, true
	case domain.VerdictError:
		if v.ErrorKind() == serrors.ErrInvalidURL {
			return "", "", false
		}

		return MsgScanError, domain.SeverityError, true
	default:
		return "", "", false
	}
}
