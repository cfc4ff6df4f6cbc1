// Package predictor defines the contract of the remote phishing scoring
// service consulted when neither curated list decides a URL.
package predictor

import "context"

// Prediction is the scoring service's answer for one URL.
type Prediction struct {
	// Phishing is the model's binary decision.
	Phishing bool
	// Confidence is the model's phishing probability, expected in [0, 1]
	// but passed through unclamped.
	Confidence float64
}

// Client scores URLs. Implementations issue exactly one request per call and
// never retry; errors carry a serrors kind (ErrNetworkFailure,
// ErrBadResponse or ErrMalformedPayload).
//
//go:generate mockgen -package mockpredictor -source=interface.go -destination=mock/mockpredictor.go *
type Client interface {
	Predict(ctx context.Context, URL string) (Prediction, error)
}
