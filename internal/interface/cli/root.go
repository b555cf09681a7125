package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	dbPath      string
	versionInfo string
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = versionInfo
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cortex",
	Short: "AI conversation archive",
	Long: `cortex - capture, organize, and search your AI chat conversations

Scrapes conversation lists and transcripts from page snapshots of
claude.ai, chatgpt.com, and gemini.google.com, keeps them in a local
database, and layers tagging, starring, search, and export on top.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to listing the archive if no subcommand specified
		return listCmd.RunE(cmd, args)
	},
}

func init() {
	// Global flags
	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}
	defaultDB := filepath.Join(home, ".config", "cortex", "cortex.db")

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "Database path")
}
