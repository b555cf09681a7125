package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holbizmetrics/cortex/internal/core/db"
	"github.com/holbizmetrics/cortex/internal/core/models"
)

var openCmd = &cobra.Command{
	Use:   "open <conversation-id>",
	Short: "Prepare a conversation for transcript capture",
	Long: `Print the conversation's page URL and record a pending-scrape
marker. The next sync of a snapshot captured from that exact page
consumes the marker and captures the transcript; a snapshot of any
other page discards it.

Conversations with synthesized ids have no recoverable page URL and
cannot be opened.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
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
	if conv.Synthetic {
		return fmt.Errorf("conversation %s has a session-scoped id and no page URL", id)
	}

	captured, err := database.HasMessagesFor(id)
	if err != nil {
		return fmt.Errorf("failed to check transcript: %w", err)
	}

	action, err := database.PutPendingAction(id)
	if err != nil {
		return fmt.Errorf("failed to record pending scrape: %w", err)
	}

	fmt.Printf("Open in your browser:\n  %s\n\n", pageURL(conv))
	if captured {
		fmt.Println("Transcript already captured; the next sync will refresh it.")
	} else {
		fmt.Println("No transcript captured yet; sync a snapshot of that page to capture it.")
	}
	fmt.Printf("Pending scrape recorded (token %s)\n", action.Token)
	return nil
}

// pageURL reconstructs the conversation's address from its id and
// platform
func pageURL(c *models.Conversation) string {
	switch c.Platform {
	case models.PlatformChatGPT:
		return fmt.Sprintf("https://chatgpt.com/c/%s", c.ID)
	case models.PlatformGemini:
		return fmt.Sprintf("https://gemini.google.com/app/%s", c.ID)
	default:
		return fmt.Sprintf("https://claude.ai/chat/%s", c.ID)
	}
}
