// Package normalize turns raw feed entries into blog posts.
package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"agaxfeed/internal/blog"
)

// ErrMalformedEntry marks an entry that cannot become a Post.
var ErrMalformedEntry = errors.New("malformed feed entry")

const untitled = "(sen título)"

// Post converts one raw entry. The entry needs an alternate link and a
// parsable published timestamp; everything else degrades to defaults.
func Post(raw blog.RawEntry, src *blog.Source) (blog.Post, error) {
	link, ok := raw.AlternateLink()
	if !ok {
		return blog.Post{}, fmt.Errorf("%w: no alternate link", ErrMalformedEntry)
	}

	published, err := parsePublished(raw.Published.T)
	if err != nil {
		return blog.Post{}, fmt.Errorf("%w: %s: %w", ErrMalformedEntry, link, err)
	}

	title := strings.TrimSpace(raw.Title.T)
	if title == "" {
		title = untitled
	}

	summarySource := raw.ContentHTML()
	if raw.Summary != nil && strings.TrimSpace(raw.Summary.T) != "" {
		summarySource = raw.Summary.T
	}

	return blog.Post{
		Title:          title,
		Link:           link,
		PublishedAt:    published,
		Content:        raw.ContentHTML(),
		Summary:        Summary(summarySource),
		ThumbnailURL:   Image(raw, Small),
		DetailImageURL: Image(raw, Medium),
		Labels:         labels(raw.Category),
		Source:         src,
	}, nil
}

// Batch normalizes every entry of one source. Malformed entries are logged
// and skipped; the rest keep their feed order.
func Batch(entries []blog.RawEntry, src *blog.Source, logger log.FieldLogger) []blog.Post {
	if logger == nil {
		logger = log.StandardLogger()
	}

	posts := make([]blog.Post, 0, len(entries))
	for i, raw := range entries {
		post, err := Post(raw, src)
		if err != nil {
			logger.WithFields(log.Fields{
				"source": src.ID,
				"index":  i,
				"title":  raw.Title.T,
			}).WithError(err).Warn("skipping feed entry")
			continue
		}
		posts = append(posts, post)
	}
	return posts
}

func parsePublished(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("missing published date")
	}
	return time.Parse(time.RFC3339, s)
}

func labels(categories []blog.Category) []string {
	out := lo.FilterMap(categories, func(c blog.Category, _ int) (string, bool) {
		term := strings.TrimSpace(c.Term)
		return term, term != ""
	})
	if out == nil {
		return []string{}
	}
	return out
}
