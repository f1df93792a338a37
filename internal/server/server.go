// Package server exposes the aggregate as MCP tools over stdio.
package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"agaxfeed/internal/article"
	"agaxfeed/internal/blog"
	"agaxfeed/internal/filter"
	"agaxfeed/internal/loader"
	"agaxfeed/internal/pager"
	"agaxfeed/internal/version"
)

type ListPostsParams struct {
	Search string `json:"search,omitempty" jsonschema:"case-insensitive text matched against post titles"`
	From   string `json:"from,omitempty" jsonschema:"first day to include, YYYY-MM-DD"`
	To     string `json:"to,omitempty" jsonschema:"last day to include, YYYY-MM-DD"`
	Source string `json:"source,omitempty" jsonschema:"source id, see list_sources"`
	Page   int    `json:"page,omitempty" jsonschema:"1-based page number"`
}

type GetPostParams struct {
	URL            string `json:"url" jsonschema:"link of the post"`
	IncludeContent bool   `json:"include_content,omitempty" jsonschema:"return the full text instead of the summary"`
}

type EmptyParams struct{}

type sourceDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Color  string `json:"color,omitempty"`
	Format string `json:"format"`
	Posts  int    `json:"posts"`
}

type postDTO struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Date        string    `json:"date"`
	Summary     string    `json:"summary"`
	Labels      []string  `json:"labels"`
	Image       string    `json:"image,omitempty"`
	Content     string    `json:"content,omitempty"`
}

// Server serializes every tool call on one Loader.
type Server struct {
	mu       sync.Mutex
	loader   *loader.Loader
	articles *article.Extractor
	logger   log.FieldLogger
}

func New(l *loader.Loader, articles *article.Extractor, logger log.FieldLogger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Server{loader: l, articles: articles, logger: logger}
}

// MCP builds the MCP server with every tool registered.
func (s *Server) MCP() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "agaxfeed", Version: version.Version}, nil)

	mcp.AddTool(server, &mcp.Tool{Name: "list_sources", Description: "List the configured blogs and how many posts each one contributed"}, s.handleListSources)
	mcp.AddTool(server, &mcp.Tool{Name: "list_posts", Description: "List aggregated blog posts, newest first, filtered by title text, date range and source"}, s.handleListPosts)
	mcp.AddTool(server, &mcp.Tool{Name: "get_post", Description: "Get one post by its link, optionally with its full text"}, s.handleGetPost)
	mcp.AddTool(server, &mcp.Tool{Name: "reload", Description: "Fetch every blog again and rebuild the aggregate"}, s.handleReload)
	return server
}

// Run loads the aggregate, schedules refreshes on refreshSpec (a cron spec,
// empty to disable) and serves MCP on stdio until ctx is done.
func (s *Server) Run(ctx context.Context, refreshSpec string) error {
	s.reload(ctx)

	if refreshSpec != "" {
		c := cron.New()
		if _, err := c.AddFunc(refreshSpec, func() { s.reload(ctx) }); err != nil {
			return fmt.Errorf("schedule refresh %q: %w", refreshSpec, err)
		}
		c.Start()
		defer c.Stop()
		s.logger.WithField("spec", refreshSpec).Info("periodic refresh scheduled")
	}

	return s.MCP().Run(ctx, &mcp.StdioTransport{})
}

// reload fetches outside the lock and swaps the aggregate in under it.
func (s *Server) reload(ctx context.Context) loader.LoadState {
	posts := s.loader.Fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.loader.SetAggregate(posts)
	s.logger.WithFields(log.Fields{"posts": len(posts), "state": state.String()}).Info("aggregate reloaded")
	return state
}

func (s *Server) handleListSources(ctx context.Context, req *mcp.CallToolRequest, p EmptyParams) (*mcp.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[string]int{}
	for _, post := range s.loader.Aggregate() {
		counts[post.SourceID()]++
	}
	items := make([]sourceDTO, 0, len(s.loader.Sources()))
	for _, src := range s.loader.Sources() {
		items = append(items, sourceDTO{
			ID:     src.ID,
			Name:   src.Name,
			URL:    src.URL,
			Color:  src.Color,
			Format: src.Format,
			Posts:  counts[src.ID],
		})
	}
	return nil, map[string]any{"count": len(items), "sources": items}, nil
}

func (s *Server) handleListPosts(ctx context.Context, req *mcp.CallToolRequest, p ListPostsParams) (*mcp.CallToolResult, any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loader.State() == loader.Error {
		return nil, errorResult(), nil
	}
	if p.Source != "" {
		if _, ok := s.loader.Source(p.Source); !ok {
			return nil, map[string]any{
				"ok":      false,
				"message": fmt.Sprintf("unknown source %q", p.Source),
				"hint":    "Call list_sources for the available ids.",
			}, nil
		}
	}
	from, to, err := filter.DayRange(p.From, p.To, s.loader.Location())
	if err != nil {
		return nil, map[string]any{
			"ok":      false,
			"message": "invalid date, expected YYYY-MM-DD",
			"error":   err.Error(),
		}, nil
	}
	if p.Page <= 0 {
		p.Page = 1
	}

	s.loader.Apply(filter.All().WithSearch(p.Search).WithDates(from, to).WithSource(p.Source))
	var page pager.Page
	for i := 0; i < p.Page; i++ {
		page = s.loader.NextPage()
	}

	items := make([]postDTO, 0, len(page.Posts))
	for _, post := range page.Posts {
		items = append(items, toDTO(post))
	}
	resp := map[string]any{
		"ok":    true,
		"state": page.State.String(),
		"page":  p.Page,
		"total": len(s.loader.Filtered()),
		"count": len(items),
		"items": items,
	}
	switch page.State {
	case pager.HasMore:
		resp["next_page"] = p.Page + 1
	case pager.ExhaustedNoResults:
		resp["message"] = loader.MsgNoResults
	}
	return nil, resp, nil
}

func (s *Server) handleGetPost(ctx context.Context, req *mcp.CallToolRequest, p GetPostParams) (*mcp.CallToolResult, any, error) {
	s.mu.Lock()
	post, ok := s.loader.Find(p.URL)
	s.mu.Unlock()

	if !ok {
		return nil, map[string]any{
			"ok":      false,
			"message": fmt.Sprintf("no post with url %q in the aggregate", p.URL),
			"hint":    "Use a url returned by list_posts, or call reload.",
		}, nil
	}

	dto := toDTO(post)
	if p.IncludeContent {
		text, err := s.articles.Text(ctx, post)
		if err != nil {
			s.logger.WithError(err).WithField("url", post.Link).Warn("full text unavailable")
			dto.Content = post.Summary
		} else {
			dto.Content = text
		}
	}
	return nil, map[string]any{"ok": true, "post": dto}, nil
}

func (s *Server) handleReload(ctx context.Context, req *mcp.CallToolRequest, p EmptyParams) (*mcp.CallToolResult, any, error) {
	if s.reload(ctx) == loader.Error {
		return nil, errorResult(), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return nil, map[string]any{"ok": true, "count": len(s.loader.Aggregate())}, nil
}

func errorResult() map[string]any {
	return map[string]any{
		"ok":      false,
		"message": loader.MsgError,
		"hint":    loader.MsgErrorHint + " Call reload to try again.",
	}
}

func toDTO(p blog.Post) postDTO {
	return postDTO{
		Title:       p.Title,
		URL:         p.Link,
		Source:      p.SourceID(),
		PublishedAt: p.PublishedAt,
		Date:        blog.FormatDate(p.PublishedAt),
		Summary:     p.Summary,
		Labels:      p.Labels,
		Image:       p.DetailImageURL,
	}
}
