// Package pager serves a filtered view one page at a time.
package pager

import "agaxfeed/internal/blog"

// DefaultPageSize is the number of posts per page.
const DefaultPageSize = 10

// State describes the window after a NextPage call.
type State int

const (
	// HasMore means further calls will return more posts.
	HasMore State = iota
	// ExhaustedWithResults means the view was non-empty and is fully consumed.
	ExhaustedWithResults
	// ExhaustedNoResults means the view is empty.
	ExhaustedNoResults
)

func (s State) String() string {
	switch s {
	case HasMore:
		return "has_more"
	case ExhaustedWithResults:
		return "end"
	case ExhaustedNoResults:
		return "no_results"
	default:
		return "unknown"
	}
}

// Page is one slice of the view.
type Page struct {
	Posts []blog.Post
	State State
}

// Window is a cursor over a filtered view. It is not safe for concurrent
// use and does not guard against re-entrant NextPage calls.
type Window struct {
	view     []blog.Post
	offset   int
	pageSize int
}

// New returns an empty window. Non-positive sizes use DefaultPageSize.
func New(pageSize int) *Window {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Window{pageSize: pageSize}
}

// SetView replaces the view and rewinds the cursor.
func (w *Window) SetView(view []blog.Post) {
	w.view = view
	w.Reset()
}

// Reset rewinds the cursor to the first post.
func (w *Window) Reset() {
	w.offset = 0
}

// NextPage returns up to PageSize posts from the cursor and advances it.
func (w *Window) NextPage() Page {
	end := min(w.offset+w.pageSize, len(w.view))
	posts := w.view[w.offset:end]
	w.offset = end

	state := HasMore
	switch {
	case len(w.view) == 0:
		state = ExhaustedNoResults
	case w.offset >= len(w.view):
		state = ExhaustedWithResults
	}
	return Page{Posts: posts, State: state}
}

// Offset is the number of posts already handed out.
func (w *Window) Offset() int { return w.offset }

// Len is the size of the whole view.
func (w *Window) Len() int { return len(w.view) }

// PageSize returns the configured page size.
func (w *Window) PageSize() int { return w.pageSize }

// Exhausted reports whether every post of the view has been handed out.
func (w *Window) Exhausted() bool { return w.offset >= len(w.view) }
