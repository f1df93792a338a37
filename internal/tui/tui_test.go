package tui

import (
	"context"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agaxfeed/internal/blog"
	"agaxfeed/internal/filter"
	"agaxfeed/internal/loader"
	"agaxfeed/internal/pager"
)

var (
	novas   = &blog.Source{ID: "novas", Name: "Novas AGAX", Color: "#1e88e5"}
	xogando = &blog.Source{ID: "xogando", Name: "Xogando", Color: "#43a047"}
)

type stubAggregator struct {
	posts []blog.Post
}

func (s stubAggregator) LoadAll(context.Context, []*blog.Source, int) []blog.Post {
	return s.posts
}

func testPosts(n int) []blog.Post {
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	posts := make([]blog.Post, 0, n)
	for i := range n {
		src := novas
		if i%2 == 1 {
			src = xogando
		}
		posts = append(posts, blog.Post{
			Title:       fmt.Sprintf("Post %02d", i),
			Link:        fmt.Sprintf("https://%s.example/%02d.html", src.ID, i),
			PublishedAt: base.AddDate(0, 0, -i),
			Content:     "<p>Corpo</p>",
			Summary:     "Corpo",
			Labels:      []string{},
			Source:      src,
		})
	}
	return posts
}

func newTestLoader(posts []blog.Post) *loader.Loader {
	logger, _ := logtest.NewNullLogger()
	return loader.New(stubAggregator{posts: posts}, loader.Options{
		Sources:  []*blog.Source{novas, xogando},
		PageSize: 10,
		Location: time.UTC,
		Logger:   logger,
	})
}

func newTestRoot(posts []blog.Post) rootPage {
	logger, _ := logtest.NewNullLogger()
	return newRootPage(context.Background(), Options{
		Loader:   newTestLoader(posts),
		Debounce: 300 * time.Millisecond,
		Logger:   logger,
	})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m rootPage, msg tea.Msg) (rootPage, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	root, ok := next.(rootPage)
	require.True(t, ok)
	return root, cmd
}

func TestRootPage_LoadCycle(t *testing.T) {
	m := newTestRoot(testPosts(23))
	assert.True(t, m.loading)
	assert.Equal(t, loader.Loading, m.loader.State())
	assert.Contains(t, m.View(), loader.MsgLoading)

	msg := m.loadCmd()()
	loaded, ok := msg.(loadedMsg)
	require.True(t, ok)
	assert.Len(t, loaded.posts, 23)

	m, _ = send(t, m, loaded)
	assert.False(t, m.loading)
	assert.Equal(t, loader.Idle, m.loader.State())
	assert.Len(t, m.tablePage.posts, 10)
	assert.Equal(t, pager.HasMore, m.tablePage.state)
	assert.Contains(t, m.View(), "Post 00")
}

func TestRootPage_ErrorAndRetry(t *testing.T) {
	m := newTestRoot(nil)
	m, _ = send(t, m, loadedMsg{})

	assert.Equal(t, loader.Error, m.loader.State())
	assert.Contains(t, m.View(), loader.MsgError)

	m, cmd := send(t, m, key("r"))
	assert.NotNil(t, cmd)
	assert.True(t, m.loading)
	assert.Equal(t, loader.Loading, m.loader.State())
}

func TestTablePage_InfinitePaging(t *testing.T) {
	m := newTestRoot(testPosts(23))
	m, _ = send(t, m, loadedMsg{posts: testPosts(23)})

	for range 9 {
		m, _ = send(t, m, key("j"))
	}
	assert.Equal(t, 9, m.tablePage.cursor)
	assert.Len(t, m.tablePage.posts, 20, "reaching the last row pulls the next page")

	for range 10 {
		m, _ = send(t, m, key("j"))
	}
	assert.Len(t, m.tablePage.posts, 23)
	assert.Equal(t, pager.ExhaustedWithResults, m.tablePage.state)

	m, _ = send(t, m, key("G"))
	assert.Equal(t, 22, m.tablePage.cursor)
	assert.Contains(t, m.View(), loader.MsgEnd)
}

func TestTablePage_OpenPost(t *testing.T) {
	m := newTestRoot(testPosts(5))
	m, _ = send(t, m, loadedMsg{posts: testPosts(5)})
	m, _ = send(t, m, key("j"))

	_, cmd := send(t, m, key("enter"))
	require.NotNil(t, cmd)
	open, ok := cmd().(openPostMsg)
	require.True(t, ok)
	assert.Equal(t, "Post 01", open.post.Title)

	m, cmd = send(t, m, open)
	assert.Nil(t, cmd, "posts with feed content need no download")
	assert.Equal(t, detailView, m.viewMode)
	assert.Equal(t, open.post.Link, m.detailPage.post.Link)
	assert.False(t, m.detailPage.fetching)

	m, _ = send(t, m, goToTableMsg{})
	assert.Equal(t, tableView, m.viewMode)
}

func TestTablePage_NoResults(t *testing.T) {
	m := newTestRoot(testPosts(5))
	m, _ = send(t, m, loadedMsg{posts: testPosts(5)})

	m.loader.SetSearch("non existe")
	m, _ = send(t, m, criteriaChangedMsg{})

	assert.Empty(t, m.tablePage.posts)
	assert.Equal(t, pager.ExhaustedNoResults, m.tablePage.state)
	assert.Contains(t, m.View(), loader.MsgNoResults)
}

func TestFiltersPage_DebouncedSearch(t *testing.T) {
	l := newTestLoader(testPosts(12))
	l.SetAggregate(testPosts(12))

	m := newFiltersPage(l, 300*time.Millisecond)
	m, _ = m.setFocus(focusSearch)

	for _, r := range []string{"0", "3"} {
		next, cmd := m.Update(key(r))
		m = next.(filtersPage)
		assert.NotNil(t, cmd)
	}
	assert.Equal(t, 2, m.seq)
	assert.Equal(t, "", l.Criteria().SearchText, "nothing applied before the delay")

	next, cmd := m.Update(searchTickMsg{seq: 1})
	m = next.(filtersPage)
	assert.Nil(t, cmd)
	assert.Equal(t, "", l.Criteria().SearchText, "stale ticks are ignored")

	_, cmd = m.Update(searchTickMsg{seq: 2})
	require.NotNil(t, cmd)
	assert.IsType(t, criteriaChangedMsg{}, cmd())
	assert.Equal(t, "03", l.Criteria().SearchText)
	require.Len(t, l.Filtered(), 1)
	assert.Equal(t, "Post 03", l.Filtered()[0].Title)
}

func TestFiltersPage_SourceChipToggle(t *testing.T) {
	l := newTestLoader(testPosts(12))
	l.SetAggregate(testPosts(12))

	m := newFiltersPage(l, 0)
	m, _ = m.setFocus(focusSources)

	next, _ := m.Update(key("right"))
	m = next.(filtersPage)
	next, cmd := m.Update(key("enter"))
	m = next.(filtersPage)
	require.NotNil(t, cmd)
	assert.Equal(t, "novas", l.Criteria().SourceID)
	assert.Len(t, l.Filtered(), 6)

	_, _ = m.Update(key("enter"))
	assert.Equal(t, filter.AllSources, l.Criteria().SourceID, "picking the active chip goes back to all")
	assert.Len(t, l.Filtered(), 12)
}

func TestFiltersPage_Dates(t *testing.T) {
	l := newTestLoader(testPosts(12))
	l.SetAggregate(testPosts(12))

	m := newFiltersPage(l, 0)
	m.inputs[focusFrom].SetValue("2024-02-27")
	m.inputs[focusTo].SetValue("2024-02-28")
	m, _ = m.setFocus(focusTo)

	next, cmd := m.Update(key("enter"))
	m = next.(filtersPage)
	require.NotNil(t, cmd)
	assert.NoError(t, m.err)
	assert.Len(t, l.Filtered(), 2)

	m.inputs[focusFrom].SetValue("27/02/2024")
	next, cmd = m.Update(key("enter"))
	m = next.(filtersPage)
	assert.Nil(t, cmd)
	assert.Error(t, m.err)
	assert.Len(t, l.Filtered(), 2, "invalid dates keep the previous criteria")
}

func TestRootPage_ClearFilters(t *testing.T) {
	m := newTestRoot(testPosts(12))
	m, _ = send(t, m, loadedMsg{posts: testPosts(12)})

	m.loader.ToggleSource("xogando")
	m.filtersPage.inputs[focusSearch].SetValue("post")
	m, _ = send(t, m, criteriaChangedMsg{})
	assert.Len(t, m.tablePage.posts, 6)

	m, _ = send(t, m, clearFiltersMsg{})
	assert.True(t, m.loader.Criteria().IsZero())
	assert.Equal(t, "", m.filtersPage.inputs[focusSearch].Value())
	assert.Len(t, m.tablePage.posts, 10)
}

func TestDetailPage_FetchedBody(t *testing.T) {
	p := testPosts(1)[0]
	p.Content = ""

	m := detailPage{}.open(p, true)
	assert.True(t, m.fetching)

	next, _ := m.Update(bodyMsg{link: "https://other.example/x.html", body: "outro"})
	m = next.(detailPage)
	assert.True(t, m.fetching, "bodies for other posts are ignored")

	next, _ = m.Update(bodyMsg{link: p.Link, body: "Texto completo do artigo"})
	m = next.(detailPage)
	assert.False(t, m.fetching)
	assert.Equal(t, "Texto completo do artigo", m.body)
}

func TestCardLabels(t *testing.T) {
	assert.Equal(t, "", cardLabels(nil))
	assert.Equal(t, "a, b", cardLabels([]string{"a", "b"}))
	assert.Equal(t, "a, b, c +2", cardLabels([]string{"a", "b", "c", "d", "e"}))
}
