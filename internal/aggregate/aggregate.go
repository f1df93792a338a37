// Package aggregate fans feed loads out across sources and merges the result
// into one date-descending list.
package aggregate

import (
	"context"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"agaxfeed/internal/blog"
	"agaxfeed/internal/feedclient"
	"agaxfeed/internal/normalize"
)

// Fetcher is the part of feedclient.Client the aggregator needs.
type Fetcher interface {
	Fetch(ctx context.Context, src *blog.Source, req feedclient.Request) []blog.RawEntry
}

// Aggregator loads posts from many sources.
type Aggregator struct {
	fetcher Fetcher
	timeout time.Duration
	logger  log.FieldLogger
}

// New returns an aggregator that bounds every per-source fetch by timeout.
// A zero timeout leaves the fetcher's own default in place.
func New(fetcher Fetcher, timeout time.Duration, logger log.FieldLogger) *Aggregator {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Aggregator{fetcher: fetcher, timeout: timeout, logger: logger}
}

// LoadAll fetches up to maxResults entries from every source concurrently,
// waits for all of them and returns the merged posts sorted newest first.
// Failed sources contribute nothing; LoadAll itself never fails.
func (a *Aggregator) LoadAll(ctx context.Context, sources []*blog.Source, maxResults int) []blog.Post {
	started := time.Now()
	results := make([][]blog.Post, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = a.LoadSource(ctx, src, feedclient.Request{MaxResults: maxResults})
		}()
	}
	wg.Wait()

	total := 0
	for _, r := range results {
		total += len(r)
	}
	posts := make([]blog.Post, 0, total)
	for _, r := range results {
		posts = append(posts, r...)
	}
	SortNewestFirst(posts)

	failed := 0
	for _, r := range results {
		if len(r) == 0 {
			failed++
		}
	}
	a.logger.WithFields(log.Fields{
		"sources":       len(sources),
		"empty_sources": failed,
		"posts":         len(posts),
		"duration":      time.Since(started).Round(time.Millisecond),
	}).Info("aggregate loaded")
	return posts
}

// LoadSource runs the fetch and normalize pipeline for a single source. It is
// also used on its own for incremental start-index paging of one blog.
func (a *Aggregator) LoadSource(ctx context.Context, src *blog.Source, req feedclient.Request) []blog.Post {
	if req.Timeout <= 0 {
		req.Timeout = a.timeout
	}
	entries := a.fetcher.Fetch(ctx, src, req)
	return normalize.Batch(entries, src, a.logger)
}

// SortNewestFirst orders posts by PublishedAt descending. Ties keep their
// existing relative order.
func SortNewestFirst(posts []blog.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})
}
