// Package loader holds the browsing state shared by every front end: the
// loaded aggregate, the active criteria and the page window over the result.
package loader

import (
	"context"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"agaxfeed/internal/blog"
	"agaxfeed/internal/filter"
	"agaxfeed/internal/pager"
)

// LoadState is the outcome of the last load cycle.
type LoadState int

const (
	Idle LoadState = iota
	Loading
	Error
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Error:
		return "error"
	default:
		return "idle"
	}
}

// Aggregator loads the merged, sorted posts of all sources.
type Aggregator interface {
	LoadAll(ctx context.Context, sources []*blog.Source, maxResults int) []blog.Post
}

// Options configures a Loader.
type Options struct {
	Sources    []*blog.Source
	MaxResults int
	PageSize   int
	Location   *time.Location // used for date filters, time.Local when nil
	Logger     log.FieldLogger
}

// Loader is not safe for concurrent use. Callers serialize access.
type Loader struct {
	agg        Aggregator
	sources    []*blog.Source
	maxResults int
	loc        *time.Location
	logger     log.FieldLogger

	state     LoadState
	aggregate []blog.Post
	criteria  filter.Criteria
	filtered  []blog.Post
	window    *pager.Window
}

// New builds a loader in the Idle state with an empty aggregate.
func New(agg Aggregator, opts Options) *Loader {
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Loader{
		agg:        agg,
		sources:    opts.Sources,
		maxResults: opts.MaxResults,
		loc:        opts.Location,
		logger:     opts.Logger,
		criteria:   filter.All(),
		window:     pager.New(opts.PageSize),
	}
}

// BeginLoad marks a load cycle as started.
func (l *Loader) BeginLoad() {
	l.state = Loading
}

// Load runs a full load cycle and applies the result.
func (l *Loader) Load(ctx context.Context) LoadState {
	l.BeginLoad()
	return l.SetAggregate(l.agg.LoadAll(ctx, l.sources, l.maxResults))
}

// Fetch runs the aggregator without touching the loader state, so a UI can
// run it off its event loop and hand the result to SetAggregate.
func (l *Loader) Fetch(ctx context.Context) []blog.Post {
	return l.agg.LoadAll(ctx, l.sources, l.maxResults)
}

// SetAggregate stores posts as the new aggregate, keeps the current criteria
// and rewinds the window. An empty aggregate puts the loader in Error.
func (l *Loader) SetAggregate(posts []blog.Post) LoadState {
	l.aggregate = posts
	l.recompute()

	l.state = Idle
	if len(posts) == 0 {
		l.state = Error
		l.logger.Warn("every source failed or returned no posts")
	}
	return l.state
}

// State returns the current load state.
func (l *Loader) State() LoadState { return l.state }

// Apply replaces the criteria, recomputes the filtered view and rewinds the
// window.
func (l *Loader) Apply(c filter.Criteria) {
	l.criteria = c
	l.recompute()
}

// SetSearch replaces the search text.
func (l *Loader) SetSearch(text string) {
	l.Apply(l.criteria.WithSearch(text))
}

// SetDateRange sets the inclusive day range. Empty strings clear a bound.
func (l *Loader) SetDateRange(fromDay, toDay string) error {
	from, to, err := filter.DayRange(fromDay, toDay, l.loc)
	if err != nil {
		return err
	}
	l.Apply(l.criteria.WithDates(from, to))
	return nil
}

// ToggleSource selects a source, or returns to all sources when it is
// already selected.
func (l *Loader) ToggleSource(id string) {
	l.Apply(l.criteria.WithSource(id))
}

// Clear drops every filter.
func (l *Loader) Clear() {
	l.Apply(filter.All())
}

// NextPage hands out the next page of the filtered view.
func (l *Loader) NextPage() pager.Page {
	return l.window.NextPage()
}

// Rewind restarts paging over the same filtered view.
func (l *Loader) Rewind() {
	l.window.Reset()
}

func (l *Loader) Criteria() filter.Criteria { return l.criteria }
func (l *Loader) Filtered() []blog.Post      { return l.filtered }
func (l *Loader) Aggregate() []blog.Post     { return l.aggregate }
func (l *Loader) Sources() []*blog.Source    { return l.sources }
func (l *Loader) PageSize() int              { return l.window.PageSize() }
func (l *Loader) Location() *time.Location   { return l.loc }

// Source returns the configured source with the given ID.
func (l *Loader) Source(id string) (*blog.Source, bool) {
	return lo.Find(l.sources, func(s *blog.Source) bool { return s.ID == id })
}

// Find looks a post up by link in the whole aggregate.
func (l *Loader) Find(link string) (blog.Post, bool) {
	return lo.Find(l.aggregate, func(p blog.Post) bool { return p.Link == link })
}

func (l *Loader) recompute() {
	l.filtered = filter.Apply(l.criteria, l.aggregate)
	l.window.SetView(l.filtered)
	l.logger.WithFields(log.Fields{
		"search":   l.criteria.SearchText,
		"from":     filter.FormatDay(l.criteria.DateFrom),
		"to":       filter.FormatDay(l.criteria.DateTo),
		"source":   l.criteria.SourceID,
		"filtered": len(l.filtered),
		"total":    len(l.aggregate),
	}).Debug("filters applied")
}
