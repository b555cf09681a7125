package cli

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/holbizmetrics/cortex/internal/core/models"
	"github.com/holbizmetrics/cortex/internal/core/query"
)

// ParseQueryFilters extracts inline filters from a search query string
// Supports:
//   - tag:<label> - filter by assigned tag
//   - platform:claude|chatgpt|gemini - filter by host platform
//   - after:yesterday, before:2025-06-01 - date ranges, natural
//     language or ISO
//
// Remaining tokens become the free-text search.
func ParseQueryFilters(raw string) query.Filter {
	var f query.Filter

	w := newDateParser()

	tokens := strings.Fields(raw)
	var queryParts []string

	for _, token := range tokens {
		if strings.HasPrefix(token, "tag:") {
			f.Tag = strings.TrimPrefix(token, "tag:")
			continue
		}

		if strings.HasPrefix(token, "platform:") {
			f.Platform = models.Platform(strings.ToLower(strings.TrimPrefix(token, "platform:")))
			continue
		}

		if strings.HasPrefix(token, "after:") {
			if parsed := parseDate(w, strings.TrimPrefix(token, "after:")); parsed != nil {
				f.UpdatedAfter = *parsed
			}
			continue
		}

		if strings.HasPrefix(token, "before:") {
			if parsed := parseDate(w, strings.TrimPrefix(token, "before:")); parsed != nil {
				f.UpdatedBefore = *parsed
			}
			continue
		}

		// Not a filter, add to query
		queryParts = append(queryParts, token)
	}

	f.Search = strings.Join(queryParts, " ")
	return f
}

// newDateParser builds a natural-language date parser with English rules
func newDateParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// parseDate attempts to parse a date string using natural language parsing
func parseDate(w *when.Parser, dateStr string) *time.Time {
	// Try natural language parsing first
	result, err := w.Parse(dateStr, time.Now())
	if err == nil && result != nil {
		return &result.Time
	}

	// Try standard formats
	formats := []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006/01/02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return &t
		}
	}

	return nil
}
