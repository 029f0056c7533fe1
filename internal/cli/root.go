// Package cli provides the command-line interface for tootsync.
package cli

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tootsync/internal/config"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var (
	flagConfig       string
	flagVisibility   string
	flagLimit        int
	flagOnlyOriginal bool
	flagStartDate    string
	flagScratchDir   string
	flagVerbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "tootsync <from-host> <from-user> <to-host> <to-user> <credentials.json>",
	Short: "Mirror toots from one Mastodon account to another",
	Long: `tootsync fetches a Mastodon account's public Atom feed, drops toots
already present on the destination account, downloads attached media,
and reposts the rest with normalized text. One invocation performs one
synchronization pass; no state is kept between runs.`,
	Args:         cobra.ExactArgs(5),
	RunE:         forwardAction,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagVerbose {
			logrus.SetLevel(logrus.DebugLevel)
		} else {
			logrus.SetLevel(logrus.WarnLevel)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("tootsync %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to a YAML tunables file")
	rootCmd.Flags().StringVar(&flagVisibility, "visibility", config.DefaultVisibility, "visibility of created toots (direct/private/unlisted/public)")
	rootCmd.Flags().IntVar(&flagLimit, "limit", 0, "max toots considered per run, 0 = feed page size")
	rootCmd.Flags().BoolVar(&flagOnlyOriginal, "only-original", true, "forward only new statuses, not boosts or replies")
	rootCmd.Flags().StringVar(&flagStartDate, "start-date", config.DefaultStartDate, "ignore toots published before this (YYYY/MM/DD HH:MM:SS)")
	rootCmd.Flags().StringVar(&flagScratchDir, "scratch-dir", "", "directory for downloaded media (default: system temp dir)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
