// Package analyze summarizes a previous run from its output directory.
package analyze

import (
	"os"

	"github.com/jacow-mirror/srfcrawl/config"
	"github.com/jacow-mirror/srfcrawl/log"
	"github.com/jacow-mirror/srfcrawl/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var AnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "analyze scraped results.",
	Long:  "re-read a run's per-session JSON files, print statistics and write Sessions_Summary.csv.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Flags().Changed("config"))
	},
}

var (
	configFile string
	outDir     string
)

func init() {
	AnalyzeCmd.Flags().StringVar(
		&configFile, "config", "config.toml", "set config file path")

	AnalyzeCmd.Flags().StringVar(
		&outDir, "out", "", "output directory to analyze")
}

func Run(configSet bool) error {
	cfg, err := config.Load(configFile, configSet)
	if err != nil {
		return err
	}
	dir := cfg.Site.OutputDir
	if outDir != "" {
		dir = outDir
	}

	logger := log.NewLogger(log.NewStderrPlugin(zapcore.WarnLevel))
	defer logger.Sync()

	layout := &output.Layout{Root: dir}
	writer := output.NewWriter(layout, logger)

	return writer.Analyze(os.Stdout)
}
