package feedclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"agaxfeed/internal/blog"
	"agaxfeed/internal/httpclient"
)

var (
	ErrFetchTimeout   = errors.New("feed fetch timed out")
	ErrFetchTransport = errors.New("feed fetch failed")
	ErrParse          = errors.New("feed response could not be parsed")
)

// Request bounds a single fetch.
type Request struct {
	// StartIndex is Blogger's 1-based start-index. 0 and 1 both mean the newest entry.
	StartIndex int
	// MaxResults caps the number of entries. 0 leaves the server default.
	MaxResults int
	// Timeout overrides the client timeout when > 0.
	Timeout time.Duration
}

// Client fetches raw entries for one source at a time.
type Client struct {
	http   *httpclient.Client
	logger log.FieldLogger
}

// New returns a feed client. A nil http client gets the default timeout and
// a nil logger falls back to the logrus standard logger.
func New(hc *httpclient.Client, logger log.FieldLogger) *Client {
	if hc == nil {
		hc = httpclient.New(httpclient.DefaultTimeout)
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Client{http: hc, logger: logger}
}

// Fetch returns up to req.MaxResults raw entries for src. It never fails:
// timeouts, transport and parse errors are logged and yield an empty slice.
func (c *Client) Fetch(ctx context.Context, src *blog.Source, req Request) []blog.RawEntry {
	fetchID := uuid.NewString()
	logger := c.logger.WithFields(log.Fields{"source": src.ID, "fetch_id": fetchID})

	started := time.Now()
	entries, err := c.fetch(ctx, src, req, fetchID)
	if err != nil {
		logger.WithError(err).Warn("feed unavailable, skipping source for this load")
		return []blog.RawEntry{}
	}

	logger.WithFields(log.Fields{
		"entries":  len(entries),
		"duration": time.Since(started).Round(time.Millisecond),
	}).Debug("feed fetched")
	return entries
}

func (c *Client) fetch(ctx context.Context, src *blog.Source, req Request, fetchID string) ([]blog.RawEntry, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.http.GetTimeout()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch src.Format {
	case "", blog.FormatBlogger:
		return c.fetchBlogger(ctx, src, req, fetchID)
	case blog.FormatFeed:
		return c.fetchFeed(ctx, src, req, fetchID)
	default:
		return nil, fmt.Errorf("%w: unknown source format %q", ErrParse, src.Format)
	}
}

func (c *Client) fetchBlogger(ctx context.Context, src *blog.Source, req Request, fetchID string) ([]blog.RawEntry, error) {
	endpoint, err := BloggerURL(src.URL, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchTransport, err)
	}

	body, err := c.get(ctx, endpoint, fetchID)
	if err != nil {
		return nil, err
	}

	var doc blog.Feed
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	entries := doc.Feed.Entries
	if entries == nil {
		entries = []blog.RawEntry{}
	}
	if req.MaxResults > 0 && len(entries) > req.MaxResults {
		entries = entries[:req.MaxResults]
	}
	return entries, nil
}

func (c *Client) get(ctx context.Context, endpoint, fetchID string) ([]byte, error) {
	body, err := c.http.GetBody(ctx, endpoint, map[string]string{
		httpclient.RequestIDHeader: fetchID,
		"Accept":                   "application/json, application/rss+xml, application/atom+xml, */*",
	})
	if err != nil {
		return nil, classify(err)
	}
	return body, nil
}

// BloggerURL builds the Blogger JSON feed endpoint for a blog base URL.
func BloggerURL(base string, req Request) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + "/feeds/posts/default")
	if err != nil {
		return "", fmt.Errorf("invalid source url %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid source url %q: scheme must be http or https", base)
	}

	q := u.Query()
	q.Set("alt", "json")
	if req.StartIndex > 1 {
		q.Set("start-index", strconv.Itoa(req.StartIndex))
	}
	if req.MaxResults > 0 {
		q.Set("max-results", strconv.Itoa(req.MaxResults))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", ErrFetchTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrFetchTransport, err)
}
