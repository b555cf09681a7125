package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holbizmetrics/cortex/internal/core/config"
	"github.com/holbizmetrics/cortex/internal/core/db"
	"github.com/holbizmetrics/cortex/internal/core/scrape"
	"github.com/holbizmetrics/cortex/internal/core/sync"
)

var syncURL string

var syncCmd = &cobra.Command{
	Use:   "sync [snapshot]",
	Short: "Capture conversations from page snapshots",
	Long: `Scrape conversations from an HTML snapshot of the host page, or
from every snapshot in a directory.

The snapshot's capture URL decides what gets scraped: a conversation
list yields metadata records, a single-conversation page also captures
the transcript. The URL is sniffed from the snapshot (base href,
canonical link, og:url) unless --url overrides it.

Without an argument, syncs the configured snapshot directory.

Examples:
  cortex sync ~/snapshots/claude-chats.html
  cortex sync ~/snapshots/
  cortex sync page.html --url https://claude.ai/chat/0ccfddc4-00e7-443a-bb82-58ede5936619`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().StringVar(&syncURL, "url", "", "Capture URL of the snapshot (overrides sniffing)")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sourcePath := cfg.SnapshotDir
	if len(args) > 0 {
		sourcePath = args[0]
	}

	info, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("snapshot path not found: %w", err)
	}

	// Ensure database directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create db directory: %w", err)
	}

	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	orch := sync.New(database, sync.WithReadinessTimeout(cfg.ReadinessTimeout))

	var snapshots []string
	if info.IsDir() {
		snapshots, err = collectSnapshots(sourcePath)
		if err != nil {
			return err
		}
		if len(snapshots) == 0 {
			fmt.Println("No snapshot files found")
			return nil
		}
		if syncURL != "" && len(snapshots) > 1 {
			return fmt.Errorf("--url only applies to a single snapshot")
		}
	} else {
		snapshots = []string{sourcePath}
	}

	fmt.Printf("Syncing %d snapshot(s) into %s\n\n", len(snapshots), dbPath)

	failures := 0
	for _, path := range snapshots {
		src := scrape.NewFileSource(path, snapshotURL(cfg, path))
		if err := orch.Refresh(cmd.Context(), src); err != nil {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", filepath.Base(path), err)
			failures++
			continue
		}
		fmt.Printf("  %s: ok\n", filepath.Base(path))
	}

	canonical := orch.Snapshot()
	fmt.Printf("\nArchive now holds %d conversation(s)\n", len(canonical))

	if failures > 0 {
		return fmt.Errorf("%d snapshot(s) failed", failures)
	}
	return nil
}

// snapshotURL resolves the capture URL: the --url flag wins, then a
// per-file config mapping, then sniffing inside the source.
func snapshotURL(cfg *config.Config, path string) string {
	if syncURL != "" {
		return syncURL
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return cfg.PageURL[name]
}

func collectSnapshots(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var snapshots []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".html" {
			continue
		}
		snapshots = append(snapshots, filepath.Join(dirPath, entry.Name()))
	}
	return snapshots, nil
}
