// Package classifier decides whether a URL is phishing. Cheap local checks
// run first (allow-list, deny-list) and the remote model is consulted only
// when neither is decisive.
package classifier

import (
	"context"

	"phishguard/pkg/domain"
	"phishguard/pkg/logger"
	"phishguard/pkg/metrics"
	"phishguard/pkg/predictor"
	"phishguard/pkg/serrors"
	"phishguard/pkg/urlnorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "phishguard/classifier"

// Options configure a pipeline.
type Options struct {
	// Stages run in order; the first decisive one wins.
	Stages []Stage
	// Recorder receives per-verdict counters. Optional.
	Recorder *metrics.Recorder
	// Tracer defaults to the global otel tracer.
	Tracer trace.Tracer
}

// DefaultStages returns the whitelist, blocklist, remote ordering.
func DefaultStages(whitelist, blocklist DomainSet, client predictor.Client, recorder *metrics.Recorder) []Stage {
	return []Stage{
		WhitelistStage(whitelist),
		BlocklistStage(blocklist),
		RemoteStage(client, recorder),
	}
}

type pipeline struct {
	stages   []Stage
	recorder *metrics.Recorder
	tracer   trace.Tracer
}

// New creates a Classifier running opts.Stages.
func New(opts Options) Classifier {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	return &pipeline{
		stages:   opts.Stages,
		recorder: opts.Recorder,
		tracer:   tracer,
	}
}

func (p *pipeline) Classify(ctx context.Context, URL string) domain.Verdict {
	ctx, span := p.tracer.Start(ctx, "classifier.Classify", trace.WithAttributes(attribute.String("url", URL)))
	defer span.End()

	d, err := urlnorm.Domain(URL)
	if err != nil {
		return p.finish(ctx, span, StageNormalize, domain.Failed(err))
	}
	span.SetAttributes(attribute.String("domain", string(d)))

	ev := Evaluation{URL: URL, Domain: d}
	for _, s := range p.stages {
		v, decisive := s.Evaluate(ctx, ev)
		if !decisive {
			continue
		}

		return p.finish(ctx, span, s.Name(), v)
	}

	return p.finish(ctx, span, "", domain.Failed(serrors.With(serrors.ErrInternal, "no verdict")))
}

func (p *pipeline) finish(ctx context.Context, span trace.Span, stage string, v domain.Verdict) domain.Verdict {
	span.SetAttributes(
		attribute.String("stage", stage),
		attribute.String("verdict", string(v.Kind)),
	)
	if v.IsError() {
		span.SetStatus(codes.Error, v.Reason())
	}
	p.recorder.Classification(ctx, stage, string(v.Kind))

	if logger.IsDebug(ctx) {
		logger.Debug(ctx, "url classified",
			zap.String("stage", stage),
			zap.String("verdict", string(v.Kind)),
			zap.Float64("confidence", v.Confidence),
			zap.NamedError("reason", v.Err))
	}

	return v
}
