package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holbizmetrics/cortex/internal/core/db"
)

var clearForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <conversation-id>",
	Short: "Delete a conversation and its messages",
	Long: `Delete a conversation from the archive, including its captured
transcript. This cannot be undone; a later scrape of the same page will
re-capture the conversation as new.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every conversation",
	Long: `Delete the entire archive: all conversations and all messages.
Requires --force.`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVar(&clearForce, "force", false, "Confirm deleting everything")
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]

	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	conv, err := database.GetConversation(id)
	if err != nil {
		return fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv == nil {
		return fmt.Errorf("conversation not found: %s", id)
	}

	if err := database.DeleteConversation(id); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}

	fmt.Printf("Deleted %s (%s)\n", id, conv.Title)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearForce {
		return fmt.Errorf("refusing to delete everything without --force")
	}

	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	if err := database.ClearAll(); err != nil {
		return fmt.Errorf("failed to clear archive: %w", err)
	}

	fmt.Println("Archive cleared")
	return nil
}
