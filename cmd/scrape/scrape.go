// Package scrape wires config, logging, transport, extraction and output
// together and runs the crawl.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/snowflake"
	"github.com/jacow-mirror/srfcrawl/config"
	"github.com/jacow-mirror/srfcrawl/discovery"
	"github.com/jacow-mirror/srfcrawl/engine"
	"github.com/jacow-mirror/srfcrawl/extract"
	"github.com/jacow-mirror/srfcrawl/fetch"
	"github.com/jacow-mirror/srfcrawl/log"
	"github.com/jacow-mirror/srfcrawl/output"
	"github.com/jacow-mirror/srfcrawl/proceedings"
	"github.com/jacow-mirror/srfcrawl/proxy"
	"github.com/jacow-mirror/srfcrawl/sqlstorage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var ScrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "scrape the SRF2019 proceedings.",
	Long:  "scrape the SRF2019 proceedings: extract paper metadata per session, probe and download PDFs, write JSON/CSV/TXT reports.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configSet = cmd.Flags().Changed("config")
		return Run()
	},
}

var (
	configFile  string
	configSet   bool
	outDir      string
	testMode    bool
	noDownload  bool
	sessionOnly []string
)

func init() {
	ScrapeCmd.Flags().StringVar(
		&configFile, "config", "config.toml", "set config file path")

	ScrapeCmd.Flags().StringVar(
		&outDir, "out", "", "override output directory")

	ScrapeCmd.Flags().BoolVar(
		&testMode, "test", false, "only process the first few sessions")

	ScrapeCmd.Flags().BoolVar(
		&noDownload, "no-download", false, "skip PDF downloads, only record availability")

	ScrapeCmd.Flags().StringSliceVar(
		&sessionOnly, "session", nil, "restrict to the given session IDs")
}

func Run() error {
	cfg, err := config.Load(configFile, configSet)
	if err != nil {
		return err
	}
	if outDir != "" {
		cfg.Site.OutputDir = outDir
	}
	if noDownload {
		cfg.Scrape.Download = false
	}

	logLevel, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("bad log level %q: %w", cfg.LogLevel, err)
	}
	plugin := log.NewStdoutPlugin(logLevel)
	logger := log.NewLogger(plugin)
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("log init end")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScrape(ctx, cfg, logger)
}

func runScrape(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var p proxy.Func
	if len(cfg.Fetcher.Proxy) > 0 {
		var err error
		if p, err = proxy.RoundRobinProxySwitcher(cfg.Fetcher.Proxy...); err != nil {
			return fmt.Errorf("proxy setup: %w", err)
		}
	}

	hostLimiter := cfg.Fetcher.RateLimiter()

	fetchOpts := []fetch.Option{
		fetch.WithLogger(logger.Named("fetch")),
		fetch.WithProxy(p),
		fetch.WithLimiter(hostLimiter),
	}

	fetcher := fetch.NewService(append(fetchOpts,
		fetch.WithTimeout(cfg.Fetcher.Timeout()),
		fetch.WithRetries(cfg.Fetcher.Retries))...)
	prober := fetch.NewPDFProbe(fetchOpts...)
	downloader := fetch.NewDownloader(fetchOpts...)

	layout, err := output.NewLayout(cfg.Site.OutputDir)
	if err != nil {
		return err
	}
	writer := output.NewWriter(layout, logger.Named("output"))

	repository, err := buildRepository(cfg, logger)
	if err != nil {
		return err
	}

	engineOpts := []engine.Option{
		engine.WithLogger(logger.Named("engine")),
		engine.WithFetcher(fetcher),
		engine.WithExtractor(extract.NewExtractor(cfg.Site.BaseURL, prober, logger.Named("extract"))),
		engine.WithWriter(writer),
		engine.WithLayout(layout),
		engine.WithRepository(repository),
		engine.WithPaperWorkers(cfg.Scrape.PaperWorkers),
	}
	if cfg.Scrape.Download {
		engineOpts = append(engineOpts, engine.WithDownloader(downloader))
	}

	e, err := engine.New(engineOpts...)
	if err != nil {
		return err
	}

	sessions, err := discovery.NewService(cfg.Site.BaseURL, fetcher, logger.Named("discovery")).Sessions(ctx)
	if err != nil {
		return fmt.Errorf("session discovery: %w", err)
	}
	sessions = filterSessions(sessions)
	if testMode && len(sessions) > cfg.Scrape.TestSessions {
		logger.Sugar().Infof("test mode: processing first %d sessions", cfg.Scrape.TestSessions)
		sessions = sessions[:cfg.Scrape.TestSessions]
	}

	results, stats, runErr := e.Run(ctx, sessions)

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}
	if err := writer.WriteRunReports(node.Generate().String(), results, stats); err != nil {
		return err
	}

	logger.Info("scrape finished",
		zap.Int("sessions", stats.SessionsProcessed),
		zap.Int("papers", stats.TotalPapers),
		zap.Int("downloaded_talks", stats.DownloadedTalks),
		zap.Int("downloaded_papers", stats.DownloadedPapers),
		zap.Int("downloaded_posters", stats.DownloadedPosters),
		zap.Int("errors", stats.Errors))

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func buildRepository(cfg *config.Config, logger *zap.Logger) (sqlstorage.PaperRepository, error) {
	switch cfg.Storage.Type {
	case "mysql":
		s, err := sqlstorage.New(
			sqlstorage.WithSQLURL(cfg.Storage.SQLURL),
			sqlstorage.WithLogger(logger.Named("sqlDB")),
			sqlstorage.WithBatchCount(20),
		)
		if err != nil {
			return nil, fmt.Errorf("create sqlstorage: %w", err)
		}
		logger.Info("start mysql storage")
		return s, nil
	case "", "empty":
		return sqlstorage.EmptyRepository{}, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

// filterSessions applies the --session restriction, keeping discovery
// order.
func filterSessions(sessions []proceedings.Session) []proceedings.Session {
	if len(sessionOnly) == 0 {
		return sessions
	}

	want := make(map[string]struct{}, len(sessionOnly))
	for _, id := range sessionOnly {
		want[strings.ToUpper(id)] = struct{}{}
	}

	var out []proceedings.Session
	for _, s := range sessions {
		if _, ok := want[s.ID]; ok {
			out = append(out, s)
		}
	}
	return out
}
