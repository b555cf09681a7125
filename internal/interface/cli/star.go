package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holbizmetrics/cortex/internal/core/db"
)

var starCmd = &cobra.Command{
	Use:   "star <conversation-id>",
	Short: "Star a conversation",
	Long: `Mark a conversation as starred. Stars survive re-scrapes of the
same conversation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStarred(args[0], true)
	},
}

var unstarCmd = &cobra.Command{
	Use:   "unstar <conversation-id>",
	Short: "Remove a conversation's star",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setStarred(args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(starCmd)
	rootCmd.AddCommand(unstarCmd)
}

func setStarred(id string, starred bool) error {
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	if err := database.SetStarred(id, starred); err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}

	if starred {
		fmt.Printf("Starred %s\n", id)
	} else {
		fmt.Printf("Unstarred %s\n", id)
	}
	return nil
}
