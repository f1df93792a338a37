package demo

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"agaxfeed/internal/blog"
)

const bloggerDate = "2006-01-02T15:04:05.000-07:00"

type options struct {
	delay  map[string]time.Duration
	broken map[string]bool
}

// Option tweaks how the demo handler serves a given blog.
type Option func(*options)

// WithDelay makes every feed response of blogID wait d before answering.
func WithDelay(blogID string, d time.Duration) Option {
	return func(o *options) { o.delay[blogID] = d }
}

// WithBrokenFeed makes blogID answer with a body that is not valid JSON.
func WithBrokenFeed(blogID string) Option {
	return func(o *options) { o.broken[blogID] = true }
}

// NewDemoHandler serves the fixture blogs the way Blogger does:
//
//	/{blog}/feeds/posts/default?alt=json   Blogger JSON feed
//	/{blog}/rss                            RSS 2.0 feed
//	/{blog}/{year}/{month}/{slug}.html     article page
func NewDemoHandler(opts ...Option) http.Handler {
	o := &options{delay: map[string]time.Duration{}, broken: map[string]bool{}}
	for _, opt := range opts {
		opt(o)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{blog}/feeds/posts/default", o.bloggerHandler)
	mux.HandleFunc("GET /{blog}/rss", o.rssHandler)
	mux.HandleFunc("GET /{blog}/{year}/{month}/{file}", articleHandler)
	mux.HandleFunc("GET /{$}", homeHandler)
	return mux
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// wait honours the configured delay unless the client goes away first.
func (o *options) wait(r *http.Request, id string) bool {
	d, ok := o.delay[id]
	if !ok {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-r.Context().Done():
		return false
	}
}

func (o *options) bloggerHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("blog")
	b, ok := Find(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !o.wait(r, id) {
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	if o.broken[id] {
		w.Write([]byte(`{"feed": {"entry": [`))
		return
	}

	start := queryInt(r, "start-index", 1)
	limit := queryInt(r, "max-results", 25)
	posts := window(b.Posts, start, limit)

	var doc blog.Feed
	doc.Feed.Title = blog.Text{T: b.Name}
	doc.Feed.Entries = make([]blog.RawEntry, 0, len(posts))
	base := baseURL(r)
	for _, p := range posts {
		doc.Feed.Entries = append(doc.Feed.Entries, rawEntry(base, b.ID, p))
	}

	if err := json.NewEncoder(w).Encode(doc); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (o *options) rssHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("blog")
	b, ok := Find(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !o.wait(r, id) {
		return
	}

	base := baseURL(r)
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	sb.WriteString(`<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/"><channel>`)
	fmt.Fprintf(&sb, "<title>%s</title><link>%s/%s</link>", html.EscapeString(b.Name), base, b.ID)
	for _, p := range b.Posts {
		sb.WriteString("<item>")
		fmt.Fprintf(&sb, "<title>%s</title>", html.EscapeString(p.Title))
		fmt.Fprintf(&sb, "<link>%s</link>", Link(base, b.ID, p))
		fmt.Fprintf(&sb, "<pubDate>%s</pubDate>", p.Published.Format(time.RFC1123Z))
		for _, l := range p.Labels {
			fmt.Fprintf(&sb, "<category>%s</category>", html.EscapeString(l))
		}
		if p.Content != "" {
			fmt.Fprintf(&sb, "<description><![CDATA[%s]]></description>", p.Content)
		}
		if p.Thumbnail != "" {
			fmt.Fprintf(&sb, `<media:thumbnail url="%s" height="72" width="72"/>`, p.Thumbnail)
		}
		sb.WriteString("</item>")
	}
	sb.WriteString("</channel></rss>")

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	w.Write([]byte(sb.String()))
}

func articleHandler(w http.ResponseWriter, r *http.Request) {
	b, ok := Find(r.PathValue("blog"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	slug := strings.TrimSuffix(r.PathValue("file"), ".html")
	for _, p := range b.Posts {
		if p.Slug != slug {
			continue
		}
		body := p.Content
		if body == "" {
			body = fallbackBody()
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, articleTemplate, html.EscapeString(p.Title), html.EscapeString(b.Name), html.EscapeString(p.Title), body)
		return
	}
	http.NotFound(w, r)
}

func homeHandler(w http.ResponseWriter, r *http.Request) {
	base := baseURL(r)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "agaxfeed demo server")
	for _, b := range Blogs() {
		fmt.Fprintf(w, "  %-12s %s/%s/feeds/posts/default?alt=json\n", b.ID, base, b.ID)
	}
}

const articleTemplate = `<!DOCTYPE html>
<html lang="gl">
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<header><nav><a href="/">%s</a></nav></header>
<main>
<article>
<h1>%s</h1>
%s
</article>
</main>
<footer><p>Publicado con Blogger</p></footer>
</body>
</html>`

// fallbackBody is the page text for posts whose feed entry carries no content.
func fallbackBody() string {
	return paragraphs(
		"A liga por equipos pechou a súa fase regular con vitoria do equipo da casa na última xornada.",
		"Os resultados completos e a clasificación final están dispoñibles na sección de competicións da federación.",
		"A fase de ascenso comezará o próximo mes con oito equipos en dous grupos de catro.",
	)
}

func rawEntry(base, blogID string, p Post) blog.RawEntry {
	e := blog.RawEntry{
		Title: blog.Text{T: p.Title},
		Links: []blog.Link{
			{Rel: "replies", Type: "text/html", Href: Link(base, blogID, p) + "#comment-form"},
			{Rel: "alternate", Type: "text/html", Href: Link(base, blogID, p)},
		},
		Published: blog.Text{T: p.Published.Format(bloggerDate)},
	}
	if p.Content != "" {
		e.Content = &blog.Text{T: p.Content}
	}
	for _, l := range p.Labels {
		e.Category = append(e.Category, blog.Category{Scheme: "http://www.blogger.com/atom/ns#", Term: l})
	}
	if p.Thumbnail != "" {
		e.Thumbnail = &blog.Thumbnail{URL: p.Thumbnail, Height: "72", Width: "72"}
	}
	return e
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// window applies Blogger's 1-based start-index and max-results.
func window(posts []Post, start, limit int) []Post {
	from := start - 1
	if from >= len(posts) {
		return nil
	}
	to := min(from+limit, len(posts))
	return posts[from:to]
}
