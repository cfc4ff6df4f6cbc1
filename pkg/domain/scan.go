package domain

import "github.com/google/uuid"

// Domain is a canonicalized hostname: lowercase with one leading "www."
// label removed. It is the comparison key of every pipeline stage.
type Domain string

// SurfaceKind tells which observer produced a scan target.
type SurfaceKind string

const (
	// SurfaceNavigation is a completed full-page navigation.
	SurfaceNavigation SurfaceKind = "NAVIGATION"
	// SurfaceEmailContent is a URL found in the text of an email view.
	SurfaceEmailContent SurfaceKind = "EMAIL_CONTENT"
)

// ScanTarget is the unit submitted to the pipeline.
type ScanTarget struct {
	URL       string      `json:"url"`
	Surface   SurfaceKind `json:"surface"`
	SurfaceID string      `json:"surfaceId"`
}

// ScanResult pairs a target with its verdict.
type ScanResult struct {
	Target  ScanTarget `json:"target"`
	Verdict Verdict    `json:"verdict"`
}

// BatchID identifies one content-triggered orchestration cycle.
type BatchID uuid.UUID

// String returns the canonical UUID form.
func (b BatchID) String() string { return uuid.UUID(b).String() }

// ScanBatch holds the results of one orchestration cycle in URL discovery
// order, plus the number of phishing verdicts among them.
type ScanBatch struct {
	ID            BatchID      `json:"id"`
	SurfaceID     string       `json:"surfaceId"`
	Results       []ScanResult `json:"results"`
	PhishingCount int          `json:"phishingCount"`
}

// NewScanBatch builds a batch from ordered results and computes its summary.
func NewScanBatch(surfaceID string, results []ScanResult) ScanBatch {
	count := 0
	for i := range results {
		if results[i].Verdict.IsPhishing() {
			count++
		}
	}

	return ScanBatch{
		ID:            BatchID(uuid.New()),
		SurfaceID:     surfaceID,
		Results:       results,
		PhishingCount: count,
	}
}
