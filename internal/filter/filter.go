// Package filter narrows the aggregate by search text, date range and source.
package filter

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"agaxfeed/internal/blog"
)

// AllSources is the SourceID that disables source filtering.
const AllSources = "all"

const dayLayout = "2006-01-02"

// Criteria is replaced as a whole on every change.
type Criteria struct {
	SearchText string     // lowercased, empty means no text filter
	DateFrom   *time.Time // inclusive lower bound
	DateTo     *time.Time // inclusive upper bound
	SourceID   string     // AllSources or a source ID
}

// All returns criteria that keep every post.
func All() Criteria {
	return Criteria{SourceID: AllSources}
}

// IsZero reports whether c keeps every post.
func (c Criteria) IsZero() bool {
	return c.SearchText == "" && c.DateFrom == nil && c.DateTo == nil && c.source() == AllSources
}

// WithSearch returns a copy of c with the search text normalized.
func (c Criteria) WithSearch(text string) Criteria {
	c.SearchText = strings.ToLower(strings.TrimSpace(text))
	return c
}

// WithSource selects id, or goes back to all sources when id is already
// selected.
func (c Criteria) WithSource(id string) Criteria {
	if id == "" || id == c.source() {
		c.SourceID = AllSources
		return c
	}
	c.SourceID = id
	return c
}

// WithDates returns a copy of c with the given bounds.
func (c Criteria) WithDates(from, to *time.Time) Criteria {
	c.DateFrom = from
	c.DateTo = to
	return c
}

func (c Criteria) source() string {
	if c.SourceID == "" {
		return AllSources
	}
	return c.SourceID
}

// Match reports whether p passes every active filter.
func (c Criteria) Match(p blog.Post) bool {
	if c.SearchText != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(c.SearchText)) {
		return false
	}
	if c.DateFrom != nil && p.PublishedAt.Before(*c.DateFrom) {
		return false
	}
	if c.DateTo != nil && p.PublishedAt.After(*c.DateTo) {
		return false
	}
	if id := c.source(); id != AllSources && p.SourceID() != id {
		return false
	}
	return true
}

// Apply returns the posts matching c in their original order.
func Apply(c Criteria, posts []blog.Post) []blog.Post {
	return lo.Filter(posts, func(p blog.Post, _ int) bool {
		return c.Match(p)
	})
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last instant of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// ParseDay parses a YYYY-MM-DD day in loc. An empty string yields nil.
func ParseDay(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dayLayout, s, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DayRange parses from and to days into inclusive bounds: from starts at
// midnight, to ends at the last instant of its day.
func DayRange(from, to string, loc *time.Location) (*time.Time, *time.Time, error) {
	start, err := ParseDay(from, loc)
	if err != nil {
		return nil, nil, err
	}
	end, err := ParseDay(to, loc)
	if err != nil {
		return nil, nil, err
	}
	if end != nil {
		e := EndOfDay(*end)
		end = &e
	}
	return start, end, nil
}

// FormatDay renders a bound back into YYYY-MM-DD, or "" when nil.
func FormatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dayLayout)
}
