package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holbizmetrics/cortex/internal/core/db"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <conversation-id>",
	Short: "Archive a conversation",
	Long: `Archive a conversation. Archived conversations are hidden from
list and search output unless explicitly requested, but stay in the
database and keep their transcript.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setArchived(args[0], true)
	},
}

var unarchiveCmd = &cobra.Command{
	Use:   "unarchive <conversation-id>",
	Short: "Restore an archived conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setArchived(args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(unarchiveCmd)
}

func setArchived(id string, archived bool) error {
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	if err := database.SetArchived(id, archived); err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}

	if archived {
		fmt.Printf("Archived %s\n", id)
	} else {
		fmt.Printf("Restored %s\n", id)
	}
	return nil
}
