package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/holbizmetrics/cortex/internal/core/config"
	"github.com/holbizmetrics/cortex/internal/core/db"
	"github.com/holbizmetrics/cortex/internal/core/sync"
	"github.com/holbizmetrics/cortex/internal/core/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [snapshot-dir]",
	Short: "Watch a snapshot directory and capture continuously",
	Long: `Watch a directory for snapshot writes and re-scrape on every
change. A capture helper rewriting snapshots as the page updates gives
a continuously fresh archive; rewriting with a new capture URL is
treated as navigation.

Runs until interrupted. Without an argument, watches the configured
snapshot directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	watchPath := cfg.SnapshotDir
	if len(args) > 0 {
		watchPath = args[0]
	}

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

	w, err := watcher.New(orch, watchPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("watcher failed: %w", err)
	}

	fmt.Printf("Stopped after %d refresh(es), %d navigation(s), %d error(s)\n",
		w.Stats.Refreshes, w.Stats.Navigations, w.Stats.Errors)
	return nil
}
