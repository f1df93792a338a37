package normalize

import (
	"strings"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agaxfeed/internal/blog"
)

var novas = &blog.Source{ID: "novas", Name: "Novas", URL: "https://agaxnet.blogspot.com", Color: "#006699"}

func entry(title, link, published, content string) blog.RawEntry {
	e := blog.RawEntry{
		Title:     blog.Text{T: title},
		Published: blog.Text{T: published},
	}
	if link != "" {
		e.Links = []blog.Link{{Rel: "alternate", Href: link}}
	}
	if content != "" {
		e.Content = &blog.Text{T: content}
	}
	return e
}

func TestPost(t *testing.T) {
	raw := entry("  Torneo de Nadal ", "https://agaxnet.blogspot.com/2024/01/nadal.html",
		"2024-01-05T10:00:00.000+01:00",
		`<p>Partidas&nbsp;rápidas</p><img alt="x" src="https://blogger.googleusercontent.com/img/b/R29v/s200/nadal.jpg">`)
	raw.Category = []blog.Category{{Term: "torneos"}, {Term: " "}, {Term: "rápidas"}}

	post, err := Post(raw, novas)
	require.NoError(t, err)

	assert.Equal(t, "Torneo de Nadal", post.Title)
	assert.Equal(t, "https://agaxnet.blogspot.com/2024/01/nadal.html", post.Link)
	assert.True(t, post.PublishedAt.Equal(time.Date(2024, time.January, 5, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Partidas rápidas", post.Summary)
	assert.Equal(t, "https://blogger.googleusercontent.com/img/b/R29v/s400/nadal.jpg", post.ThumbnailURL)
	assert.Equal(t, "https://blogger.googleusercontent.com/img/b/R29v/s800/nadal.jpg", post.DetailImageURL)
	assert.Equal(t, []string{"torneos", "rápidas"}, post.Labels)
	assert.Same(t, novas, post.Source)
}

func TestPost_Defaults(t *testing.T) {
	post, err := Post(entry("", "https://b.example/p.html", "2024-01-05T10:00:00Z", ""), novas)
	require.NoError(t, err)

	assert.Equal(t, untitled, post.Title)
	assert.Equal(t, Placeholder, post.Summary)
	assert.Empty(t, post.ThumbnailURL)
	assert.Empty(t, post.DetailImageURL)
	assert.NotNil(t, post.Labels)
	assert.Empty(t, post.Labels)
	assert.False(t, post.HasImage())
}

func TestPost_ExplicitSummaryWins(t *testing.T) {
	raw := entry("T", "https://b.example/p.html", "2024-01-05T10:00:00Z", "<p>Long body</p>")
	raw.Summary = &blog.Text{T: "<b>Short</b> teaser"}

	post, err := Post(raw, novas)
	require.NoError(t, err)
	assert.Equal(t, "Short teaser", post.Summary)
	assert.Equal(t, "<p>Long body</p>", post.Content)
}

func TestPost_Malformed(t *testing.T) {
	_, err := Post(entry("No link", "", "2024-01-05T10:00:00Z", ""), novas)
	assert.ErrorIs(t, err, ErrMalformedEntry)

	_, err = Post(entry("Bad date", "https://b.example/p.html", "5 de xaneiro", ""), novas)
	assert.ErrorIs(t, err, ErrMalformedEntry)

	_, err = Post(entry("No date", "https://b.example/p.html", "", ""), novas)
	assert.ErrorIs(t, err, ErrMalformedEntry)
}

func TestBatch_SkipsMalformed(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	entries := []blog.RawEntry{
		entry("one", "https://b.example/1.html", "2024-01-03T10:00:00Z", ""),
		entry("broken", "", "2024-01-02T10:00:00Z", ""),
		entry("three", "https://b.example/3.html", "2024-01-01T10:00:00Z", ""),
	}

	posts := Batch(entries, novas, logger)
	require.Len(t, posts, 2)
	assert.Equal(t, "one", posts[0].Title)
	assert.Equal(t, "three", posts[1].Title)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "broken", hook.LastEntry().Data["title"])
	assert.Equal(t, 1, hook.LastEntry().Data["index"])

	assert.NotNil(t, Batch(nil, novas, logger))
}

func TestSummary(t *testing.T) {
	long := strings.Repeat("a", 300)
	got := Summary("<p>" + long + "</p>")
	assert.Equal(t, strings.Repeat("a", 250)+"...", got)
	assert.Len(t, []rune(got), 253)

	exact := strings.Repeat("é", 250)
	assert.Equal(t, exact, Summary(exact))

	assert.Equal(t, "Tom & Jerry", Summary("<div>Tom &amp; Jerry</div>"))
	assert.Equal(t, Placeholder, Summary("<img src=\"x.jpg\">&nbsp; "))
	assert.Equal(t, Placeholder, Summary(""))
}

func TestResize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		size Size
		want string
	}{
		{"plain size token", "https://blogger.googleusercontent.com/img/b/R29v/s200/a.jpg", Medium,
			"https://blogger.googleusercontent.com/img/b/R29v/s800/a.jpg"},
		{"crop token", "https://1.bp.blogspot.com/-abc/XYZ/AAAA/s72-c/nadal.jpg", Small,
			"https://1.bp.blogspot.com/-abc/XYZ/AAAA/s400/nadal.jpg"},
		{"width height token", "https://blogger.googleusercontent.com/img/b/R29v/w400-h300/a.png", Large,
			"https://blogger.googleusercontent.com/img/b/R29v/s1600/a.png"},
		{"no token", "https://blogger.googleusercontent.com/img/b/R29v/a.png", Medium,
			"https://blogger.googleusercontent.com/img/b/R29v/s800/a.png"},
		{"suffix form", "https://blogger.googleusercontent.com/img/b/R29vZ2xl=w400-h300", Medium,
			"https://blogger.googleusercontent.com/img/b/R29vZ2xl=s800"},
		{"scheme relative", "//2.bp.blogspot.com/x/s320/b.jpg", Medium,
			"https://2.bp.blogspot.com/x/s800/b.jpg"},
		{"other host untouched", "https://example.com/img/s200/a.jpg", Medium,
			"https://example.com/img/s200/a.jpg"},
		{"lookalike host untouched", "https://notblogspot.com/s200/a.jpg", Medium,
			"https://notblogspot.com/s200/a.jpg"},
		{"no file name", "https://1.bp.blogspot.com/x/s200/", Medium,
			"https://1.bp.blogspot.com/x/s200/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resize(tt.in, tt.size))
		})
	}
}

func TestImage(t *testing.T) {
	withImg := entry("", "", "", `<p>x</p><img class="a" src="https://example.com/a.jpg?x=1&amp;y=2"><img src="https://example.com/b.jpg">`)
	assert.Equal(t, "https://example.com/a.jpg?x=1&y=2", Image(withImg, Medium))

	thumbOnly := entry("", "", "", "<p>no images</p>")
	thumbOnly.Thumbnail = &blog.Thumbnail{URL: "https://1.bp.blogspot.com/-abc/s72-c/t.jpg"}
	assert.Equal(t, "https://1.bp.blogspot.com/-abc/s800/t.jpg", Image(thumbOnly, Medium))

	assert.Empty(t, Image(entry("", "", "", "<p>nothing</p>"), Medium))
}
