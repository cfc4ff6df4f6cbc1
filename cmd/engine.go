package main

import (
	"context"
	"net/http"
	"slices"

	"phishguard/internal/classifier"
	"phishguard/internal/config"
	"phishguard/internal/notify"
	"phishguard/internal/orchestrator"
	"phishguard/pkg/lists"
	"phishguard/pkg/logger"
	"phishguard/pkg/metrics"
	"phishguard/pkg/predictor/httppredictor"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// engine holds the classification and notification components shared by
// the commands. Renderers differ per command: websockets for serve, the
// terminal for watch.
type engine struct {
	recorder   *metrics.Recorder
	classifier classifier.Classifier

	navigationPopups *notify.Dispatcher
	contentPopups    *notify.Dispatcher
	bridge           *notify.Bridge

	navigator *orchestrator.Navigator
	content   *orchestrator.ContentScanner
}

func setupMetrics(ctx context.Context) *metrics.Recorder {
	mp, err := metrics.NewMeterProvider(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
	}
	otel.SetMeterProvider(mp)

	recorder, err := metrics.NewRecorder(mp)
	if err != nil {
		logger.Fatal(ctx, "could not create metrics recorder", zap.Error(err))
	}

	return recorder
}

func setupClassifier(ctx context.Context, cfg *config.Config, recorder *metrics.Recorder) classifier.Classifier {
	whitelist, err := lists.LoadWhitelist(cfg.Lists.WhitelistPath)
	if err != nil {
		logger.Fatal(ctx, "could not load whitelist", zap.Error(err))
	}
	blocklist, err := lists.LoadBlocklist(cfg.Lists.BlocklistPath, cfg.Lists.BlocklistFormat)
	if err != nil {
		logger.Fatal(ctx, "could not load blocklist", zap.Error(err))
	}
	logger.Info(ctx, "lists loaded",
		zap.Int("whitelist", whitelist.Size()),
		zap.Int("whitelistSkipped", whitelist.Skipped()),
		zap.Int("blocklist", blocklist.Size()))

	var limiter *rate.Limiter
	if cfg.Predictor.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Predictor.RateLimit), cfg.Predictor.Burst)
	}
	client, err := httppredictor.New(&http.Client{Timeout: cfg.Predictor.Timeout}, httppredictor.Options{
		BaseURL: cfg.Predictor.URL,
		Limiter: limiter,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create predictor client", zap.Error(err))
	}

	return classifier.New(classifier.Options{
		Stages:   classifier.DefaultStages(whitelist, blocklist, client, recorder),
		Recorder: recorder,
	})
}

func setupEngine(ctx context.Context, cfg *config.Config, renderer notify.Renderer) *engine {
	recorder := setupMetrics(ctx)
	c := setupClassifier(ctx, cfg, recorder)

	navigationPopups := notify.NewDispatcher(renderer, notify.DispatcherOptions{
		Name:     "navigation",
		ID:       notify.PopupID,
		Timeout:  cfg.Notification.NavigationTimeout,
		Recorder: recorder,
	})
	contentPopups := notify.NewDispatcher(renderer, notify.DispatcherOptions{
		Name:     "content",
		ID:       notify.EmailPopupID,
		Timeout:  cfg.Notification.ContentTimeout,
		Recorder: recorder,
	})
	bridge := notify.NewBridge(cfg.Notification.BridgeBuffer)

	return &engine{
		recorder:         recorder,
		classifier:       c,
		navigationPopups: navigationPopups,
		contentPopups:    contentPopups,
		bridge:           bridge,
		navigator: orchestrator.NewNavigator(c, navigationPopups, orchestrator.NavigationOptions{
			ExcludedPrefixes: cfg.Navigation.ExcludedPrefixes,
			CompanionPrefix:  cfg.Navigation.CompanionPrefix,
			FragmentMarker:   cfg.Navigation.FragmentMarker,
		}),
		content: orchestrator.NewContentScanner(c, contentPopups, bridge, orchestrator.ContentOptions{
			Concurrency: cfg.Content.Concurrency,
			Recorder:    recorder,
		}),
	}
}

// runBridge relays email scan messages to the navigation popup until ctx is
// done.
func (e *engine) runBridge(ctx context.Context) {
	e.bridge.Run(ctx, notify.NewRelay(e.navigationPopups))
}

func (e *engine) close() {
	e.navigationPopups.Close()
	e.contentPopups.Close()
}

// originChecker accepts websocket upgrades from the configured CORS origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return nil
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		return origin == "" || slices.Contains(allowed, origin)
	}
}
