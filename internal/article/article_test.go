package article

import (
	"errors"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agaxfeed/internal/blog"
	"agaxfeed/internal/demo"
	"agaxfeed/internal/httpclient"
)

func newExtractor() *Extractor {
	logger, _ := logtest.NewNullLogger()
	return NewExtractor(httpclient.New(5*time.Second), logger)
}

func TestHTMLToText(t *testing.T) {
	in := "<p>Primeiro&nbsp;parágrafo</p><script>x()</script><ul><li>un</li><li>dous</li></ul>texto<br>final"
	assert.Equal(t, "Primeiro parágrafo\nun\ndous\ntexto\nfinal", HTMLToText(in))
	assert.Equal(t, "", HTMLToText("  "))
}

func TestMarkdown_UsesFeedContent(t *testing.T) {
	p := blog.Post{Content: "<p>Corpo do <b>artigo</b></p>", Link: "http://127.0.0.1:1/never"}
	md, err := newExtractor().Markdown(t.Context(), p)
	require.NoError(t, err)
	assert.Equal(t, "Corpo do **artigo**", md)
}

func TestText_FallsBackToPage(t *testing.T) {
	server, _ := demo.NewTestServer(t)
	b, _ := demo.Find("novas")
	empty := b.Posts[4]
	require.Empty(t, empty.Content)

	p := blog.Post{Title: empty.Title, Link: demo.Link(server.URL, "novas", empty)}
	txt, err := newExtractor().Text(t.Context(), p)
	require.NoError(t, err)
	assert.Contains(t, txt, "fase regular")
}

func TestText_Errors(t *testing.T) {
	server, _ := demo.NewTestServer(t)
	e := newExtractor()

	_, err := e.Text(t.Context(), blog.Post{})
	assert.ErrorIs(t, err, ErrNoContent)

	_, err = e.Text(t.Context(), blog.Post{Link: server.URL + "/novas/2024/01/missing.html"})
	var statusErr *httpclient.StatusError
	assert.True(t, errors.As(err, &statusErr))
}
