package classifier

import (
	"context"

	"phishguard/pkg/domain"
)

// Evaluation is what every stage sees: the raw URL and its normalized domain.
type Evaluation struct {
	URL    string
	Domain domain.Domain
}

// Stage is one step of the pipeline. A stage that is not decisive lets the
// next stage run; the first decisive stage ends classification.
type Stage interface {
	Name() string
	Evaluate(ctx context.Context, ev Evaluation) (v domain.Verdict, decisive bool)
}

// DomainSet is a static domain collection such as lists.Whitelist or
// lists.Blocklist.
type DomainSet interface {
	Contains(d domain.Domain) bool
}
