package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/holbizmetrics/cortex/internal/core/config"
	"github.com/holbizmetrics/cortex/internal/core/db"
	"github.com/holbizmetrics/cortex/internal/core/export"
	"github.com/holbizmetrics/cortex/internal/core/models"
	"github.com/holbizmetrics/cortex/internal/core/query"
)

var (
	exportOutput string
	exportCopy   bool
	exportAll    bool
)

var exportCmd = &cobra.Command{
	Use:   "export [conversation-id]",
	Short: "Export conversations to markdown",
	Long: `Export a conversation to a markdown file. Conversations with a
captured transcript export the full thread; metadata-only conversations
export the preview with a disclaimer.

The header block is a mustache template, overridable via
~/.config/cortex/export_header.mustache.

Examples:
  cortex export 0ccfddc4-00e7-443a-bb82-58ede5936619
  cortex export 0ccfddc4-00e7-443a-bb82-58ede5936619 -o thread.md
  cortex export 0ccfddc4-00e7-443a-bb82-58ede5936619 --copy
  cortex export --all -o archive.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default: conversation-<id>.md in current directory)")
	exportCmd.Flags().BoolVar(&exportCopy, "copy", false, "Copy to clipboard instead of writing a file")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "Export every non-archived conversation into one document")
}

func runExport(cmd *cobra.Command, args []string) error {
	if !exportAll && len(args) == 0 {
		return fmt.Errorf("conversation id required unless --all is given")
	}

	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	exporter := export.New(cfg.ExportHeaderTemplate)

	var doc, defaultName string
	if exportAll {
		doc, err = exportArchive(database, exporter)
		defaultName = "cortex-archive.md"
	} else {
		doc, err = exportOne(database, exporter, args[0])
		defaultName = fmt.Sprintf("conversation-%s.md", shortID(args[0]))
	}
	if err != nil {
		return err
	}

	if exportCopy {
		if err := clipboard.WriteAll(doc); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Println("Copied export to clipboard")
		return nil
	}

	outputPath := exportOutput
	if outputPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		outputPath = filepath.Join(cwd, defaultName)
	}

	if err := os.WriteFile(outputPath, []byte(doc), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Printf("Exported to: %s\n", outputPath)
	return nil
}

func exportOne(database *db.DB, exporter *export.Exporter, id string) (string, error) {
	conv, err := database.GetConversation(id)
	if err != nil {
		return "", fmt.Errorf("failed to load conversation: %w", err)
	}
	if conv == nil {
		return "", fmt.Errorf("conversation not found: %s", id)
	}

	msgs, err := database.MessagesFor(id)
	if err != nil {
		return "", fmt.Errorf("failed to load messages: %w", err)
	}

	return exporter.Conversation(*conv, msgs)
}

func exportArchive(database *db.DB, exporter *export.Exporter) (string, error) {
	convs, err := database.ListConversations()
	if err != nil {
		return "", fmt.Errorf("failed to list conversations: %w", err)
	}

	visible := query.Apply(convs, query.Filter{})
	if len(visible) == 0 {
		return "", fmt.Errorf("nothing to export")
	}

	return exporter.Batch(visible, func(id string) ([]models.Message, error) {
		return database.MessagesFor(id)
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
