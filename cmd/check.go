package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"phishguard/internal/config"
	"phishguard/internal/orchestrator"
	"phishguard/pkg/domain"
	"phishguard/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exitPhishing is the exit status of check when a URL is flagged.
const exitPhishing = 2

func checkCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [url...]",
		Short: "Classifies URLs given as arguments or read from stdin",
		Long: "Classifies URLs given as arguments, or one per line from stdin when none are given.\n" +
			"With --text, stdin is free text and the URLs in it are checked.\n" +
			"Exits with status 2 when a URL is flagged as phishing.",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			text, _ := cmd.Flags().GetBool("text")

			URLs := args
			if len(URLs) == 0 {
				var err error
				URLs, err = readURLs(cmd.InOrStdin(), text)
				if err != nil {
					logger.Fatal(ctx, "could not read stdin", zap.Error(err))
				}
			}
			if len(URLs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), orchestrator.MsgNoURLs) //nolint: errcheck

				return
			}

			c := setupClassifier(ctx, cfg, setupMetrics(ctx))

			phishing := false
			for _, URL := range URLs {
				v := c.Classify(ctx, URL)
				phishing = phishing || v.IsPhishing()
				line := orchestrator.FormatResultLine(domain.ScanResult{
					Target:  domain.ScanTarget{URL: URL},
					Verdict: v,
				})
				fmt.Fprintln(cmd.OutOrStdout(), line) //nolint: errcheck
			}

			if phishing {
				logger.Sync()
				os.Exit(exitPhishing)
			}
		},
	}

	cmd.Flags().Bool("text", false, "Extract URLs from free text on stdin")

	return cmd
}

func readURLs(r io.Reader, text bool) ([]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if text {
		return orchestrator.ExtractURLs(string(b)), nil
	}

	var URLs []string
	sc := bufio.NewScanner(strings.NewReader(string(b)))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" && !strings.HasPrefix(line, "#") {
			URLs = append(URLs, line)
		}
	}

	return URLs, sc.Err()
}
