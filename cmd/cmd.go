package cmd

import (
	"github.com/jacow-mirror/srfcrawl/cmd/analyze"
	"github.com/jacow-mirror/srfcrawl/cmd/scrape"
	"github.com/jacow-mirror/srfcrawl/cmd/sessions"
	"github.com/jacow-mirror/srfcrawl/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print version.",
	Long:  "print version.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version.Printer()
	},
}

func Execute() {
	var rootCmd = &cobra.Command{Use: "srfcrawl"}
	rootCmd.AddCommand(scrape.ScrapeCmd, sessions.SessionsCmd, analyze.AnalyzeCmd, versionCmd)
	rootCmd.Execute()
}
