// Package sessions lists the conference's sessions without scraping them.
package sessions

import (
	"context"
	"fmt"

	"github.com/jacow-mirror/srfcrawl/config"
	"github.com/jacow-mirror/srfcrawl/discovery"
	"github.com/jacow-mirror/srfcrawl/fetch"
	"github.com/jacow-mirror/srfcrawl/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var SessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "list discovered sessions.",
	Long:  "fetch the session index and print every session ID, name and URL.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Flags().Changed("config"))
	},
}

var configFile string

func init() {
	SessionsCmd.Flags().StringVar(
		&configFile, "config", "config.toml", "set config file path")
}

func Run(configSet bool) error {
	cfg, err := config.Load(configFile, configSet)
	if err != nil {
		return err
	}

	logger := log.NewLogger(log.NewStderrPlugin(zapcore.WarnLevel))
	defer logger.Sync()

	fetcher := fetch.NewService(
		fetch.WithLogger(logger),
		fetch.WithTimeout(cfg.Fetcher.Timeout()),
		fetch.WithRetries(cfg.Fetcher.Retries),
		fetch.WithLimiter(cfg.Fetcher.RateLimiter()),
	)

	sessions, err := discovery.NewService(cfg.Site.BaseURL, fetcher, logger).Sessions(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Found %d sessions:\n", len(sessions))
	for _, s := range sessions {
		fmt.Printf("%s: %s\n    %s\n", s.ID, s.Name, s.URL)
	}

	return nil
}
