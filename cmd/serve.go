package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"phishguard/internal/api"
	"phishguard/internal/api/handler/v1handler"
	"phishguard/internal/config"
	"phishguard/internal/notify/wshub"
	"phishguard/internal/watcher"
	"phishguard/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server, err := api.NewServer(deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the agent API for browser observers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			hub := wshub.New(wshub.Options{CheckOrigin: originChecker(cfg.HTTP.AllowedOrigins)})
			eng := setupEngine(ctx, cfg, hub)
			defer eng.close()

			go eng.runBridge(ctx)

			surfaces := watcher.NewRegistry(ctx, watcher.RegistryOptions{
				Selector:    cfg.Content.BodySelector,
				Settle:      cfg.Content.SettleDelay,
				IdleTimeout: cfg.Content.IdleTimeout,
				MaxSurfaces: cfg.Content.MaxSurfaces,
			}, func(ctx context.Context, surfaceID, text string) {
				eng.content.OnContentChanged(ctx, surfaceID, text)
			})

			stopWebserver := setupServer(ctx, cfg, api.Deps{Deps: v1handler.Deps{
				Classifier:    eng.classifier,
				Navigator:     eng.navigator,
				Content:       surfaces,
				Notifications: hub,
				Dismissers:    []v1handler.Dismisser{eng.navigationPopups, eng.contentPopups},
				MaxBodyBytes:  cfg.HTTP.MaxBodyBytes,
			}})

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
			hub.Close()
			surfaces.Close()
		},
	}

	return cmd
}
