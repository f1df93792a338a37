package blog

import "time"

const (
	// FormatBlogger reads the Blogger JSON feed API (feeds/posts/default?alt=json).
	FormatBlogger = "blogger"
	// FormatFeed reads a generic RSS/Atom feed URL.
	FormatFeed = "feed"
)

// Source is a configured blog. It is shared by every Post loaded from it.
type Source struct {
	ID     string
	Name   string
	URL    string
	Color  string
	Format string
}

// Post is the normalized article shown in lists and detail views.
type Post struct {
	Title          string
	Link           string
	PublishedAt    time.Time
	Content        string // raw HTML, may be empty
	Summary        string // plain text, never empty
	ThumbnailURL   string // small image, empty when the entry has none
	DetailImageURL string // medium image, empty when the entry has none
	Labels         []string
	Source         *Source
}

// HasImage reports whether the post carries any image.
func (p Post) HasImage() bool {
	return p.ThumbnailURL != "" || p.DetailImageURL != ""
}

// SourceID returns the owning source ID or an empty string.
func (p Post) SourceID() string {
	if p.Source == nil {
		return ""
	}
	return p.Source.ID
}
