package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agaxfeed/internal/blog"
)

var (
	novas   = &blog.Source{ID: "novas"}
	xogando = &blog.Source{ID: "xogando"}
)

func post(title string, published time.Time, src *blog.Source) blog.Post {
	return blog.Post{Title: title, Link: title, PublishedAt: published, Source: src}
}

func fixture() []blog.Post {
	return []blog.Post{
		post("Chess Openings", time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC), xogando),
		post("Torneo de Nadal", time.Date(2024, 1, 5, 23, 30, 0, 0, time.UTC), novas),
		post("Problema: CHESS puzzle", time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC), xogando),
		post("Asemblea anual", time.Date(2023, 11, 20, 19, 0, 0, 0, time.UTC), novas),
	}
}

func titles(posts []blog.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}

func TestApply_AllKeepsEverything(t *testing.T) {
	posts := fixture()
	assert.Equal(t, posts, Apply(All(), posts))
	assert.True(t, All().IsZero())
	assert.True(t, Criteria{}.IsZero())
}

func TestApply_SearchIsCaseInsensitiveOnTitle(t *testing.T) {
	c := All().WithSearch("  Chess ")
	assert.Equal(t, "chess", c.SearchText)
	assert.Equal(t, []string{"Chess Openings", "Problema: CHESS puzzle"}, titles(Apply(c, fixture())))

	// raw criteria built by hand are matched case-insensitively as well
	assert.Len(t, Apply(Criteria{SearchText: "NADAL", SourceID: AllSources}, fixture()), 1)
}

func TestApply_DateRangeInclusive(t *testing.T) {
	from, to, err := DayRange("2024-01-05", "2024-01-05", time.UTC)
	require.NoError(t, err)

	c := All().WithDates(from, to)
	assert.Equal(t, []string{"Torneo de Nadal", "Problema: CHESS puzzle"}, titles(Apply(c, fixture())))

	onlyTo := All().WithDates(nil, to)
	assert.Equal(t, []string{"Torneo de Nadal", "Problema: CHESS puzzle", "Asemblea anual"}, titles(Apply(onlyTo, fixture())))
}

func TestApply_Source(t *testing.T) {
	c := All().WithSource("novas")
	assert.Equal(t, []string{"Torneo de Nadal", "Asemblea anual"}, titles(Apply(c, fixture())))

	assert.Empty(t, Apply(All().WithSource("unknown"), fixture()))
}

func TestApply_CombinesWithAnd(t *testing.T) {
	from, _, err := DayRange("2024-01-01", "", time.UTC)
	require.NoError(t, err)

	c := All().WithSearch("chess").WithSource("xogando").WithDates(from, nil)
	assert.Equal(t, []string{"Chess Openings", "Problema: CHESS puzzle"}, titles(Apply(c, fixture())))

	c = c.WithSearch("openings")
	assert.Equal(t, []string{"Chess Openings"}, titles(Apply(c, fixture())))
}

func TestApply_Idempotent(t *testing.T) {
	from, to, _ := DayRange("2023-12-01", "2024-02-01", time.UTC)
	for _, c := range []Criteria{
		All(),
		All().WithSearch("chess"),
		All().WithSource("novas"),
		All().WithDates(from, to),
	} {
		once := Apply(c, fixture())
		assert.Equal(t, once, Apply(c, once))
	}
}

func TestWithSource_Toggle(t *testing.T) {
	c := All().WithSource("novas")
	assert.Equal(t, "novas", c.SourceID)
	assert.Equal(t, AllSources, c.WithSource("novas").SourceID)
	assert.Equal(t, "xogando", c.WithSource("xogando").SourceID)
	assert.Equal(t, AllSources, c.WithSource(AllSources).SourceID)
}

func TestEndOfDay(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	got := EndOfDay(time.Date(2024, 2, 29, 8, 0, 0, 0, loc))
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 999999999, loc), got)
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay("", time.UTC)
	assert.NoError(t, err)
	assert.Nil(t, day)

	day, err = ParseDay("2024-01-05", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-05", FormatDay(day))

	_, err = ParseDay("05/01/2024", time.UTC)
	assert.Error(t, err)
	_, _, err = DayRange("2024-01-01", "bad", time.UTC)
	assert.Error(t, err)
}
