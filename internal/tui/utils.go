package tui

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"agaxfeed/internal/filter"
	"agaxfeed/internal/loader"
)

const maxCardLabels = 3

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(0, maxLen)])
	}
	return string(r[:maxLen-3]) + "..."
}

// cardLabels joins the first labels of a post.
func cardLabels(labels []string) string {
	shown := labels
	if len(shown) > maxCardLabels {
		shown = shown[:maxCardLabels]
	}
	out := strings.Join(shown, ", ")
	if len(labels) > maxCardLabels {
		out += fmt.Sprintf(" +%d", len(labels)-maxCardLabels)
	}
	return out
}

// criteriaSummary describes the active filters in one line, empty when none.
func criteriaSummary(l *loader.Loader) string {
	c := l.Criteria()
	if c.IsZero() {
		return ""
	}
	parts := []string{}
	if c.SearchText != "" {
		parts = append(parts, fmt.Sprintf("%q", c.SearchText))
	}
	if c.DateFrom != nil || c.DateTo != nil {
		parts = append(parts, filter.FormatDay(c.DateFrom)+".."+filter.FormatDay(c.DateTo))
	}
	if c.SourceID != "" && c.SourceID != filter.AllSources {
		name := c.SourceID
		if src, ok := l.Source(c.SourceID); ok && src.Name != "" {
			name = src.Name
		}
		parts = append(parts, name)
	}
	parts = lo.Compact(parts)
	return fmt.Sprintf("%s (%d)", strings.Join(parts, " · "), len(l.Filtered()))
}
