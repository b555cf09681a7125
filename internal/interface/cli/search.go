package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/holbizmetrics/cortex/internal/core/db"
	"github.com/holbizmetrics/cortex/internal/core/query"
)

var (
	searchLimit       int
	searchAllArchived bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search captured conversations",
	Long: `Search conversation titles, previews, and tags.

Query tokens are matched independently: a conversation matches when any
token appears somewhere in it. Inline filters narrow the result:

  tag:<label>          only conversations carrying the tag
  platform:<name>      claude, chatgpt, or gemini
  after:<date>         natural language or ISO dates
  before:<date>

Examples:
  cortex search kubernetes
  cortex search "api design" tag:Development
  cortex search migration platform:claude after:yesterday`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "Maximum number of conversations to show")
	searchCmd.Flags().BoolVar(&searchAllArchived, "all", false, "Include archived conversations")
}

func runSearch(cmd *cobra.Command, args []string) error {
	raw := strings.Join(args, " ")

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

	filter := ParseQueryFilters(raw)
	filter.IncludeArchived = searchAllArchived
	matched := query.Apply(convs, filter)

	if len(matched) == 0 {
		fmt.Printf("No results found for: %s\n", raw)
		return nil
	}

	total := len(matched)
	if len(matched) > searchLimit {
		matched = matched[:searchLimit]
	}

	fmt.Printf("Found %d conversation(s) for: %s\n\n", total, raw)
	for i, c := range matched {
		printConversation(i+1, c)
	}
	if total > searchLimit {
		fmt.Printf("... and %d more (use --limit to see more)\n", total-searchLimit)
	}
	return nil
}
