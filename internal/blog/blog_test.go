package blog

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC), "5 de xaneiro de 2024"},
		{time.Date(2023, time.June, 30, 0, 0, 0, 0, time.UTC), "30 de xuño de 2023"},
		{time.Date(2022, time.December, 1, 23, 59, 0, 0, time.UTC), "1 de decembro de 2022"},
		{time.Time{}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDate(tt.in))
	}
}

func TestRawEntry_DecodeBloggerJSON(t *testing.T) {
	doc := `{"feed":{"title":{"$t":"Novas"},"entry":[{
		"title":{"$t":"Torneo de Nadal"},
		"link":[{"rel":"replies","href":"https://b.example/c"},{"rel":"alternate","type":"text/html","href":"https://b.example/p/1.html"}],
		"published":{"$t":"2024-01-02T10:00:00.000+01:00"},
		"content":{"$t":"<p>Body</p>"},
		"category":[{"scheme":"http://www.blogger.com/atom/ns#","term":"xadrez"}],
		"media$thumbnail":{"url":"https://x.bp.blogspot.com/s72-c/a.jpg","height":"72","width":"72"}
	}]}}`

	var f Feed
	require.NoError(t, json.Unmarshal([]byte(doc), &f))
	require.Len(t, f.Feed.Entries, 1)

	e := f.Feed.Entries[0]
	assert.Equal(t, "Torneo de Nadal", e.Title.T)
	link, ok := e.AlternateLink()
	assert.True(t, ok)
	assert.Equal(t, "https://b.example/p/1.html", link)
	assert.Equal(t, "<p>Body</p>", e.ContentHTML())
	assert.Nil(t, e.Summary)
	require.NotNil(t, e.Thumbnail)
	assert.Equal(t, "https://x.bp.blogspot.com/s72-c/a.jpg", e.Thumbnail.URL)
	assert.Equal(t, "xadrez", e.Category[0].Term)
}

func TestRawEntry_NoAlternateLink(t *testing.T) {
	e := RawEntry{Links: []Link{{Rel: "self", Href: "https://b.example/feeds/1"}}}
	_, ok := e.AlternateLink()
	assert.False(t, ok)
	assert.Equal(t, "", e.ContentHTML())
}

func TestPost_SourceID(t *testing.T) {
	assert.Equal(t, "", Post{}.SourceID())
	assert.Equal(t, "novas", Post{Source: &Source{ID: "novas"}}.SourceID())
}
