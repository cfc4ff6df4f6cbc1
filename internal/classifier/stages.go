package classifier

import (
	"context"
	"time"

	"phishguard/pkg/domain"
	"phishguard/pkg/logger"
	"phishguard/pkg/metrics"
	"phishguard/pkg/predictor"

	"go.uber.org/zap"
)

// Stage names, also used as metric attributes.
const (
	StageNormalize = "normalize"
	StageWhitelist = "whitelist"
	StageBlocklist = "blocklist"
	StageRemote    = "remote"
)

type whitelistStage struct{ set DomainSet }

// WhitelistStage is decisive (safe) when the domain is allow-listed.
func WhitelistStage(set DomainSet) Stage { return whitelistStage{set: set} }

func (whitelistStage) Name() string { return StageWhitelist }

func (s whitelistStage) Evaluate(_ context.Context, ev Evaluation) (domain.Verdict, bool) {
	if s.set == nil || !s.set.Contains(ev.Domain) {
		return domain.Verdict{}, false
	}

	return domain.Whitelisted(), true
}

type blocklistStage struct{ set DomainSet }

// BlocklistStage is decisive (phishing) when the domain is deny-listed.
func BlocklistStage(set DomainSet) Stage { return blocklistStage{set: set} }

func (blocklistStage) Name() string { return StageBlocklist }

func (s blocklistStage) Evaluate(_ context.Context, ev Evaluation) (domain.Verdict, bool) {
	if s.set == nil || !s.set.Contains(ev.Domain) {
		return domain.Verdict{}, false
	}

	return domain.Blocklisted(), true
}

type remoteStage struct {
	client   predictor.Client
	recorder *metrics.Recorder
}

// RemoteStage asks the scoring service. It is always decisive: a failed call
// yields an error verdict.
func RemoteStage(client predictor.Client, recorder *metrics.Recorder) Stage {
	return remoteStage{client: client, recorder: recorder}
}

func (remoteStage) Name() string { return StageRemote }

func (s remoteStage) Evaluate(ctx context.Context, ev Evaluation) (domain.Verdict, bool) {
	start := time.Now()
	p, err := s.client.Predict(ctx, ev.URL)
	s.recorder.PredictorCall(ctx, time.Since(start), err != nil)
	if err != nil {
		logger.Warn(ctx, "prediction failed", zap.Error(err))

		return domain.Failed(err), true
	}

	return domain.Scored(p.Phishing, p.Confidence), true
}
