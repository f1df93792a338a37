package feedclient

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/samber/lo"

	"agaxfeed/internal/blog"
)

// fetchFeed reads a generic RSS/Atom source. Those endpoints have no paging
// parameters, so StartIndex and MaxResults are applied after parsing.
func (c *Client) fetchFeed(ctx context.Context, src *blog.Source, req Request, fetchID string) ([]blog.RawEntry, error) {
	body, err := c.get(ctx, src.URL, fetchID)
	if err != nil {
		return nil, err
	}

	// gofeed parsers keep per-parse state, so each fetch gets its own.
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	items := lo.Filter(feed.Items, func(it *gofeed.Item, _ int) bool { return it != nil })
	if skip := req.StartIndex - 1; skip > 0 {
		items = lo.Drop(items, skip)
	}
	if req.MaxResults > 0 && len(items) > req.MaxResults {
		items = items[:req.MaxResults]
	}

	return lo.Map(items, func(it *gofeed.Item, _ int) blog.RawEntry {
		return entryFromItem(it)
	}), nil
}

// entryFromItem converts a gofeed item into the Blogger entry shape.
func entryFromItem(it *gofeed.Item) blog.RawEntry {
	e := blog.RawEntry{
		Title: blog.Text{T: it.Title},
		Links: []blog.Link{},
	}
	if link := strings.TrimSpace(it.Link); link != "" {
		e.Links = append(e.Links, blog.Link{Rel: "alternate", Type: "text/html", Href: link})
	}

	switch {
	case it.PublishedParsed != nil:
		e.Published.T = it.PublishedParsed.Format(time.RFC3339)
	case it.UpdatedParsed != nil:
		e.Published.T = it.UpdatedParsed.Format(time.RFC3339)
	default:
		e.Published.T = it.Published
	}

	// RSS puts the body in description; Atom and content:encoded use content.
	switch {
	case it.Content != "":
		e.Content = &blog.Text{T: it.Content}
		if it.Description != "" {
			e.Summary = &blog.Text{T: it.Description}
		}
	case it.Description != "":
		e.Content = &blog.Text{T: it.Description}
	}

	e.Category = lo.Map(it.Categories, func(term string, _ int) blog.Category {
		return blog.Category{Term: term}
	})

	if thumb := thumbnailURL(it); thumb != "" {
		e.Thumbnail = &blog.Thumbnail{URL: thumb}
	}
	return e
}

func thumbnailURL(it *gofeed.Item) string {
	if it.Image != nil && it.Image.URL != "" {
		return it.Image.URL
	}
	if media, ok := it.Extensions["media"]; ok {
		for _, name := range []string{"thumbnail", "content"} {
			if u := firstAttr(media[name], "url"); u != "" {
				return u
			}
		}
	}
	for _, enc := range it.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

func firstAttr(exts []ext.Extension, attr string) string {
	for _, e := range exts {
		if v := e.Attrs[attr]; v != "" {
			return v
		}
	}
	return ""
}
