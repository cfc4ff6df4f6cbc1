package main

import (
	"context"
	"os/signal"
	"syscall"

	"phishguard/internal/config"
	"phishguard/internal/notify"
	"phishguard/internal/watcher"
	"phishguard/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchSurfaceID names the single surface of the watch command.
const watchSurfaceID = "maildir"

func watchCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Scans the newest message of a mail directory whenever it changes",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			surface, err := watcher.NewFileSurface(args[0], cfg.Content.BodySelector)
			if err != nil {
				logger.Fatal(ctx, "could not open mail directory", zap.Error(err))
			}

			eng := setupEngine(ctx, cfg, notify.NewWriterRenderer(cmd.OutOrStdout()))
			defer eng.close()

			go eng.runBridge(ctx)

			detector := watcher.NewDetector(surface, func(ctx context.Context, text string) {
				eng.content.OnContentChanged(ctx, watchSurfaceID, text)
			}, cfg.Content.SettleDelay)

			go detector.Run(ctx, surface.Mutations())

			logger.Info(ctx, "watching mail directory", zap.String("dir", args[0]))
			if err := surface.Run(ctx); err != nil {
				logger.Error(ctx, "mail directory watch failed", zap.Error(err))
			}
			stop()
			detector.Wait()
		},
	}

	return cmd
}
