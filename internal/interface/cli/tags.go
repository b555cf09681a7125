package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holbizmetrics/cortex/internal/core/db"
	"github.com/holbizmetrics/cortex/internal/core/tags"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List assigned tags",
	Long: `List every tag assigned across the archive with the number of
conversations carrying it.`,
	RunE: runTags,
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}

func runTags(cmd *cobra.Command, args []string) error {
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	convs, err := database.ListConversations()
	if err != nil {
		return fmt.Errorf("failed to list conversations: %w", err)
	}

	all := tags.AllTags(convs)
	if len(all) == 0 {
		fmt.Println("No tags assigned yet.")
		return nil
	}

	counts := make(map[string]int)
	for _, c := range convs {
		for _, tag := range c.Tags {
			counts[tag]++
		}
	}

	for _, tag := range all {
		fmt.Printf("%s %s\n", tagStyle.Render(tag), metaStyle.Render(fmt.Sprintf("(%d)", counts[tag])))
	}
	return nil
}
