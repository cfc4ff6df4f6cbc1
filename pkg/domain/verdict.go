package domain

import "phishguard/pkg/serrors"

// VerdictKind tags the outcome of classifying one URL.
type VerdictKind string

const (
	// VerdictWhitelisted means the domain is on the curated allow-list.
	VerdictWhitelisted VerdictKind = "WHITELISTED"
	// VerdictBlocklisted means the domain is on the static deny-list.
	VerdictBlocklisted VerdictKind = "BLOCKLISTED"
	// VerdictScoredSafe means the remote model scored the URL as legitimate.
	VerdictScoredSafe VerdictKind = "SCORED_SAFE"
	// VerdictScoredPhishing means the remote model flagged the URL.
	VerdictScoredPhishing VerdictKind = "SCORED_PHISHING"
	// VerdictError means no verdict could be reached; see Verdict.Err.
	VerdictError VerdictKind = "ERROR"
)

// Human-readable verdict labels used in result lines and API responses.
const (
	LabelSafe          = "✅ Safe"
	LabelPhishing      = "🚨 Phishing"
	LabelKnownPhishing = "🚨 Phishing (known phishing domain)"
	LabelError         = "⚠️ Error scanning URL"
)

// PhishingMarker is the substring every phishing-flavored label starts with.
// Receivers of pre-rendered result lines count lines containing it.
const PhishingMarker = LabelPhishing

// Verdict is the outcome of classifying one URL.
type Verdict struct {
	// Kind tags the verdict.
	Kind VerdictKind `json:"kind"`
	// Confidence is 0 for list verdicts and model-supplied otherwise. It is
	// not clamped: a misbehaving model may report values outside [0, 1].
	Confidence float64 `json:"confidence"`
	// Label is the human-readable rendering of Kind.
	Label string `json:"label"`
	// Err is set for VerdictError only.
	Err error `json:"-"`
}

// Whitelisted returns the verdict for an allow-listed domain.
func Whitelisted() Verdict {
	return Verdict{Kind: VerdictWhitelisted, Label: LabelSafe}
}

// Blocklisted returns the verdict for a deny-listed domain.
func Blocklisted() Verdict {
	return Verdict{Kind: VerdictBlocklisted, Label: LabelKnownPhishing}
}

// Scored returns the verdict for a remote model answer.
func Scored(phishing bool, confidence float64) Verdict {
	if phishing {
		return Verdict{Kind: VerdictScoredPhishing, Confidence: confidence, Label: LabelPhishing}
	}

	return Verdict{Kind: VerdictScoredSafe, Confidence: confidence, Label: LabelSafe}
}

// Failed returns an error verdict wrapping err.
func Failed(err error) Verdict {
	return Verdict{Kind: VerdictError, Label: LabelError, Err: err}
}

// IsPhishing reports whether the verdict flags the URL.
func (v Verdict) IsPhishing() bool {
	return v.Kind == VerdictBlocklisted || v.Kind == VerdictScoredPhishing
}

// IsError reports whether classification failed.
func (v Verdict) IsError() bool { return v.Kind == VerdictError }

// Reason is the error text of a failed verdict, empty otherwise.
func (v Verdict) Reason() string {
	if v.Err == nil {
		return ""
	}

	return v.Err.Error()
}

// ErrorKind is the semantic kind of a failed verdict, nil otherwise.
func (v Verdict) ErrorKind() serrors.Kind {
	return serrors.KindOf(v.Err)
}

// PhishingProbability is the probability shown to users. A deny-list hit is
// certain even though its model confidence is 0.
func (v Verdict) PhishingProbability() float64 {
	if v.Kind == VerdictBlocklisted {
		return 1
	}

	return v.Confidence
}

// Severity maps the verdict to the notification severity.
func (v Verdict) Severity() Severity {
	switch {
	case v.IsError():
		return SeverityError
	case v.IsPhishing():
		return SeverityPhishing
	default:
		return SeveritySafe
	}
}
