// Package list prints pages of the aggregate to a terminal.
package list

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"agaxfeed/internal/blog"
	"agaxfeed/internal/feedclient"
	"agaxfeed/internal/filter"
	"agaxfeed/internal/loader"
	"agaxfeed/internal/pager"
)

// DefaultIncrementalCount is the number of posts fetched per step when
// paging a single blog by start index.
const DefaultIncrementalCount = 5

// Options are the filters and paging of one listing.
type Options struct {
	Search string
	From   string // YYYY-MM-DD
	To     string // YYYY-MM-DD, inclusive
	Source string
	Page   int // 1-based
}

// Run loads the aggregate, applies opts and prints the requested page.
func Run(ctx context.Context, out io.Writer, l *loader.Loader, opts Options) error {
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Source != "" {
		if _, ok := l.Source(opts.Source); !ok {
			return fmt.Errorf("unknown source %q (available: %s)", opts.Source, sourceIDs(l.Sources()))
		}
	}

	if l.Load(ctx) == loader.Error {
		fmt.Fprintln(out, loader.MsgError)
		fmt.Fprintln(out, loader.MsgErrorHint)
		return errors.New("no posts could be loaded")
	}

	from, to, err := filter.DayRange(opts.From, opts.To, l.Location())
	if err != nil {
		return fmt.Errorf("invalid date (use YYYY-MM-DD): %w", err)
	}
	l.Apply(filter.All().WithSearch(opts.Search).WithDates(from, to).WithSource(opts.Source))

	var page pager.Page
	for i := 0; i < opts.Page; i++ {
		page = l.NextPage()
	}

	total := len(l.Filtered())
	if page.State == pager.ExhaustedNoResults {
		fmt.Fprintln(out, loader.MsgNoResults)
		fmt.Fprintln(out, loader.MsgNoHint)
		return nil
	}
	if len(page.Posts) == 0 {
		fmt.Fprintf(out, "%s (%d in total, page %d is past the end)\n", loader.MsgEnd, total, opts.Page)
		return nil
	}

	first := (opts.Page-1)*l.PageSize() + 1
	fmt.Fprintf(out, "Found %d posts, showing %d-%d (page %d):\n\n", total, first, first+len(page.Posts)-1, opts.Page)
	PrintPosts(out, page.Posts)

	if page.State == pager.HasMore {
		fmt.Fprintf(out, "More posts available: use --page %d\n", opts.Page+1)
	} else {
		fmt.Fprintln(out, loader.MsgEnd)
	}
	return nil
}

// SourceLoader loads one window of a single source.
type SourceLoader interface {
	LoadSource(ctx context.Context, src *blog.Source, req feedclient.Request) []blog.Post
}

// RunIncremental prints count posts of src starting at the 1-based start
// index, the way a "load more" button pages a single blog.
func RunIncremental(ctx context.Context, out io.Writer, sl SourceLoader, src *blog.Source, start, count int) error {
	if start <= 0 {
		start = 1
	}
	if count <= 0 {
		count = DefaultIncrementalCount
	}

	posts := sl.LoadSource(ctx, src, feedclient.Request{StartIndex: start, MaxResults: count})
	if len(posts) == 0 {
		if start == 1 {
			fmt.Fprintln(out, loader.MsgNoResults)
			return nil
		}
		fmt.Fprintln(out, loader.MsgEnd)
		return nil
	}

	fmt.Fprintf(out, "%s, posts %d-%d:\n\n", src.Name, start, start+len(posts)-1)
	PrintPosts(out, posts)
	if len(posts) == count {
		fmt.Fprintf(out, "More posts available: use --start %d\n", start+count)
	} else {
		fmt.Fprintln(out, loader.MsgEnd)
	}
	return nil
}

// PrintPosts writes one block per post.
func PrintPosts(out io.Writer, posts []blog.Post) {
	for _, p := range posts {
		fmt.Fprintln(out, p.Title)

		meta := []string{blog.FormatDate(p.PublishedAt)}
		if p.Source != nil {
			meta = append(meta, p.Source.Name)
		}
		if len(p.Labels) > 0 {
			meta = append(meta, strings.Join(p.Labels, ", "))
		}
		fmt.Fprintf(out, "  %s\n", strings.Join(meta, " · "))
		fmt.Fprintf(out, "  %s\n", p.Link)
		fmt.Fprintf(out, "  %s\n", p.Summary)
		fmt.Fprintln(out, strings.Repeat("-", 80))
	}
}

func sourceIDs(sources []*blog.Source) string {
	ids := make([]string, 0, len(sources))
	for _, s := range sources {
		ids = append(ids, s.ID)
	}
	return strings.Join(ids, ", ")
}
