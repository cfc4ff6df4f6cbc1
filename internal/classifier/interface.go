package classifier

import (
	"context"

	"phishguard/pkg/domain"
)

//go:generate mockgen -package mockclassifier -source=interface.go -destination=mock/mockclassifier.go *
type Classifier interface {
	// Classify always yields a verdict; failures surface as error verdicts.
	Classify(ctx context.Context, URL string) domain.Verdict
}
