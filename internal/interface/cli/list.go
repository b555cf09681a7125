package cli

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/holbizmetrics/cortex/internal/core/db"
	"github.com/holbizmetrics/cortex/internal/core/models"
	"github.com/holbizmetrics/cortex/internal/core/query"
)

var (
	listLimit    int
	listTag      string
	listPlatform string
	listStarred  bool
	listArchived bool
	listAll      bool
	listSince    string
	listBefore   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List captured conversations",
	Long: `List captured conversations in reverse chronological order.

Archived conversations are hidden unless --archived or --all is given.

Examples:
  cortex list
  cortex list --tag Development --limit 10
  cortex list --starred --platform claude
  cortex list --since "last week"`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum number of conversations to display")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter by assigned tag")
	listCmd.Flags().StringVar(&listPlatform, "platform", "", "Filter by platform (claude, chatgpt, gemini)")
	listCmd.Flags().BoolVar(&listStarred, "starred", false, "Only starred conversations")
	listCmd.Flags().BoolVar(&listArchived, "archived", false, "Only archived conversations")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Include archived conversations")
	listCmd.Flags().StringVar(&listSince, "since", "", "Only conversations updated after this date")
	listCmd.Flags().StringVar(&listBefore, "before", "", "Only conversations updated before this date")
}

func runList(cmd *cobra.Command, args []string) error {
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

	filter := listFilter()
	matched := query.Apply(convs, filter)

	// Pagination is an interface concern
	if len(matched) > listLimit {
		matched = matched[:listLimit]
	}

	if len(matched) == 0 {
		fmt.Println("No conversations found. Run 'cortex sync' to capture some.")
		return nil
	}

	fmt.Printf("Showing %d conversation(s)\n\n", len(matched))
	for i, c := range matched {
		printConversation(i+1, c)
	}
	return nil
}

func listFilter() query.Filter {
	f := query.Filter{
		IncludeArchived: listAll,
		ArchivedOnly:    listArchived,
		StarredOnly:     listStarred,
		Tag:             listTag,
		Platform:        models.Platform(strings.ToLower(listPlatform)),
	}

	if listSince != "" {
		if t := parseDate(newDateParser(), listSince); t != nil {
			f.UpdatedAfter = *t
		}
	}
	if listBefore != "" {
		if t := parseDate(newDateParser(), listBefore); t != nil {
			f.UpdatedBefore = *t
		}
	}
	return f
}

func printConversation(n int, c models.Conversation) {
	marker := " "
	if c.IsStarred {
		marker = starStyle.Render("*")
	}

	title := titleStyle.Render(c.Title)
	if c.IsArchived {
		title = archivedStyle.Render(c.Title + " (archived)")
	}

	fmt.Printf("[%d] %s %s\n", n, marker, title)
	fmt.Printf("     ID: %s  %s\n", c.ID, platformStyle.Render(string(c.Platform)))
	if len(c.Tags) > 0 {
		fmt.Printf("     Tags: %s\n", tagStyle.Render(strings.Join(c.Tags, ", ")))
	}
	if c.Preview != "" {
		fmt.Printf("     %s\n", metaStyle.Render(c.Preview))
	}
	detail := fmt.Sprintf("%d message(s), updated %s", c.MessageCount, humanize.Time(c.UpdatedAt))
	fmt.Printf("     %s\n\n", metaStyle.Render(detail))
}
