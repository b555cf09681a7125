// Package query derives filtered, sorted views over the canonical
// conversation snapshot. Everything here is pure: filters read a slice
// and return a new one, persistence stays a store concern.
package query

import (
	"sort"
	"time"

	"github.com/holbizmetrics/cortex/internal/core/models"
	"github.com/holbizmetrics/cortex/internal/core/tags"
)

// Filter describes one view over the snapshot. Zero value matches
// everything except archived conversations, which every view hides
// unless asked for.
type Filter struct {
	IncludeArchived bool
	ArchivedOnly    bool
	StarredOnly     bool
	Platform        models.Platform
	Tag             string
	Search          string // token-OR substring match
	UpdatedAfter    time.Time
	UpdatedBefore   time.Time
}

// Apply evaluates the filter over convs, returning matches sorted most
// recently updated first.
func Apply(convs []models.Conversation, f Filter) []models.Conversation {
	var out []models.Conversation
	for _, c := range convs {
		if c.IsArchived && !f.IncludeArchived && !f.ArchivedOnly {
			continue
		}
		if f.ArchivedOnly && !c.IsArchived {
			continue
		}
		if f.StarredOnly && !c.IsStarred {
			continue
		}
		if f.Platform != "" && c.Platform != f.Platform {
			continue
		}
		if !f.UpdatedAfter.IsZero() && c.UpdatedAt.Before(f.UpdatedAfter) {
			continue
		}
		if !f.UpdatedBefore.IsZero() && c.UpdatedAt.After(f.UpdatedBefore) {
			continue
		}
		out = append(out, c)
	}

	if f.Tag != "" {
		out = tags.FilterByTag(out, f.Tag)
	}
	if f.Search != "" {
		out = tags.FuzzySearch(out, f.Search)
	}

	SortByUpdated(out)
	return out
}

// SortByUpdated orders conversations most recent first, with id as a
// deterministic tiebreak for equal timestamps.
func SortByUpdated(convs []models.Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		if convs[i].UpdatedAt.Equal(convs[j].UpdatedAt) {
			return convs[i].ID < convs[j].ID
		}
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
}
