package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/holbizmetrics/cortex/internal/core/db"
	"github.com/holbizmetrics/cortex/internal/core/models"
	"github.com/holbizmetrics/cortex/internal/core/query"
)

// SearchConversationsArgs defines arguments for the search_conversations tool
type SearchConversationsArgs struct {
	Query           string `json:"query" jsonschema:"description=Search term matched against titles previews and tags,required"`
	Limit           int    `json:"limit,omitempty" jsonschema:"description=Max number of conversations to return (default: 10)"`
	Tag             string `json:"tag,omitempty" jsonschema:"description=Only conversations carrying this tag"`
	Platform        string `json:"platform,omitempty" jsonschema:"description=Only conversations from this platform (claude, chatgpt, gemini)"`
	IncludeArchived bool   `json:"include_archived,omitempty" jsonschema:"description=Include archived conversations in results"`
}

// GetConversationArgs defines arguments for the get_conversation tool
type GetConversationArgs struct {
	ConversationID string `json:"conversation_id" jsonschema:"description=Conversation id to retrieve,required"`
}

// ListRecentConversationsArgs defines arguments for the list_recent_conversations tool
type ListRecentConversationsArgs struct {
	Limit   int    `json:"limit,omitempty" jsonschema:"description=Max conversations to return (default: 20)"`
	Tag     string `json:"tag,omitempty" jsonschema:"description=Only conversations carrying this tag"`
	Starred bool   `json:"starred,omitempty" jsonschema:"description=Only starred conversations"`
}

// ConversationSummary represents a conversation in list and search results
type ConversationSummary struct {
	ConversationID string   `json:"conversation_id"`
	Platform       string   `json:"platform"`
	Title          string   `json:"title"`
	Preview        string   `json:"preview"`
	Tags           []string `json:"tags"`
	Starred        bool     `json:"starred"`
	Archived       bool     `json:"archived"`
	MessageCount   int      `json:"message_count"`
	UpdatedAt      string   `json:"updated_at"`
}

// ConversationDetail represents one conversation with its transcript
type ConversationDetail struct {
	ConversationSummary
	TranscriptCaptured bool             `json:"transcript_captured"`
	Messages           []TranscriptTurn `json:"messages,omitempty"`
}

// TranscriptTurn represents a single message in a transcript
type TranscriptTurn struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	Sequence int    `json:"sequence"`
}

// StartServer starts the MCP server
func StartServer(dbPath string) error {
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(); closeErr != nil {
			log.Printf("Error closing database: %v", closeErr)
		}
	}()

	s := server.NewMCPServer(
		"Cortex",
		"1.0.0",
	)

	searchTool := mcp.NewTool("search_conversations",
		mcp.WithDescription("Search captured AI chat conversations by title, preview, and tags. Each query token matches independently."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search term matched against titles, previews, and tags")),
		mcp.WithNumber("limit",
			mcp.Description("Max number of conversations to return (default: 10)")),
		mcp.WithString("tag",
			mcp.Description("Only conversations carrying this tag")),
		mcp.WithString("platform",
			mcp.Description("Only conversations from this platform (claude, chatgpt, gemini)")),
		mcp.WithBoolean("include_archived",
			mcp.Description("Include archived conversations in results")),
	)
	s.AddTool(searchTool, makeSearchConversationsHandler(database))

	detailTool := mcp.NewTool("get_conversation",
		mcp.WithDescription("Retrieve one conversation with its captured transcript, or its preview when no transcript was captured"),
		mcp.WithString("conversation_id",
			mcp.Required(),
			mcp.Description("Conversation id to retrieve")),
	)
	s.AddTool(detailTool, makeGetConversationHandler(database))

	listTool := mcp.NewTool("list_recent_conversations",
		mcp.WithDescription("Get recently updated conversations, optionally filtered by tag or star"),
		mcp.WithNumber("limit",
			mcp.Description("Max conversations to return (default: 20)")),
		mcp.WithString("tag",
			mcp.Description("Only conversations carrying this tag")),
		mcp.WithBoolean("starred",
			mcp.Description("Only starred conversations")),
	)
	s.AddTool(listTool, makeListRecentConversationsHandler(database))

	return server.ServeStdio(s)
}

func makeSearchConversationsHandler(database *db.DB) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args SearchConversationsArgs
		argsBytes, _ := json.Marshal(request.Params.Arguments)
		if err := json.Unmarshal(argsBytes, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		limit := args.Limit
		if limit == 0 {
			limit = 10
		}

		convs, err := database.ListConversations()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		matched := query.Apply(convs, query.Filter{
			Search:          args.Query,
			Tag:             args.Tag,
			Platform:        models.Platform(args.Platform),
			IncludeArchived: args.IncludeArchived,
		})
		if len(matched) > limit {
			matched = matched[:limit]
		}

		return marshalResult(map[string]interface{}{
			"conversations": toSummaries(matched),
		})
	}
}

func makeGetConversationHandler(database *db.DB) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args GetConversationArgs
		argsBytes, _ := json.Marshal(request.Params.Arguments)
		if err := json.Unmarshal(argsBytes, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		conv, err := database.GetConversation(args.ConversationID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
		}
		if conv == nil {
			return mcp.NewToolResultError(fmt.Sprintf("conversation not found: %s", args.ConversationID)), nil
		}

		msgs, err := database.MessagesFor(conv.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load messages: %v", err)), nil
		}

		detail := ConversationDetail{
			ConversationSummary: toSummary(*conv),
			TranscriptCaptured:  len(msgs) > 0,
		}
		for _, m := range msgs {
			detail.Messages = append(detail.Messages, TranscriptTurn{
				Role:     string(m.Role),
				Content:  m.Content,
				Sequence: m.SequenceIndex,
			})
		}

		return marshalResult(detail)
	}
}

func makeListRecentConversationsHandler(database *db.DB) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ListRecentConversationsArgs
		argsBytes, _ := json.Marshal(request.Params.Arguments)
		if err := json.Unmarshal(argsBytes, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		limit := args.Limit
		if limit == 0 {
			limit = 20
		}

		convs, err := database.ListConversations()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}

		matched := query.Apply(convs, query.Filter{
			Tag:         args.Tag,
			StarredOnly: args.Starred,
		})
		if len(matched) > limit {
			matched = matched[:limit]
		}

		return marshalResult(map[string]interface{}{
			"conversations": toSummaries(matched),
		})
	}
}

func toSummary(c models.Conversation) ConversationSummary {
	return ConversationSummary{
		ConversationID: c.ID,
		Platform:       string(c.Platform),
		Title:          c.Title,
		Preview:        c.Preview,
		Tags:           c.Tags,
		Starred:        c.IsStarred,
		Archived:       c.IsArchived,
		MessageCount:   c.MessageCount,
		UpdatedAt:      c.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

func toSummaries(convs []models.Conversation) []ConversationSummary {
	summaries := []ConversationSummary{}
	for _, c := range convs {
		summaries = append(summaries, toSummary(c))
	}
	return summaries
}

func marshalResult(v interface{}) (*mcp.CallToolResult, error) {
	resultJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}
