package demo

import (
	"net/http/httptest"
	"testing"

	"agaxfeed/internal/blog"
)

// NewTestServer starts the demo handler for the duration of the test and
// returns the server with Blogger sources pointing at it.
func NewTestServer(t testing.TB, opts ...Option) (*httptest.Server, []*blog.Source) {
	t.Helper()
	server := httptest.NewServer(NewDemoHandler(opts...))
	t.Cleanup(server.Close)
	return server, Sources(server.URL)
}
