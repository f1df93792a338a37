// Package article provides the readable text of a post, downloading the
// public page when the feed entry carries no body.
package article

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	neturl "net/url"
	"strings"

	trafilatura "github.com/markusmobius/go-trafilatura"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"agaxfeed/internal/blog"
	"agaxfeed/internal/httpclient"
	"agaxfeed/internal/markdown"
)

// ErrNoContent is returned when neither the feed nor the page yields text.
var ErrNoContent = errors.New("no readable content")

// minExtractedLen discards extractions that are most likely boilerplate.
const minExtractedLen = 100

// Extractor resolves post bodies.
type Extractor struct {
	client *httpclient.Client
	logger log.FieldLogger
}

func NewExtractor(client *httpclient.Client, logger log.FieldLogger) *Extractor {
	if client == nil {
		client = httpclient.New(httpclient.DefaultTimeout)
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Extractor{client: client, logger: logger}
}

// Markdown returns the post body as markdown. Posts without content fall
// back to the text extracted from their page.
func (e *Extractor) Markdown(ctx context.Context, p blog.Post) (string, error) {
	if strings.TrimSpace(p.Content) != "" {
		if md := markdown.ConvertHTMLString(p.Content); md != "" {
			return md, nil
		}
	}
	return e.extract(ctx, p)
}

// Text returns the post body as plain text, for prompts and CLI output.
func (e *Extractor) Text(ctx context.Context, p blog.Post) (string, error) {
	if txt := HTMLToText(p.Content); txt != "" {
		return txt, nil
	}
	return e.extract(ctx, p)
}

func (e *Extractor) extract(ctx context.Context, p blog.Post) (string, error) {
	logger := e.logger.WithFields(log.Fields{"source": p.SourceID(), "url": p.Link})
	if strings.TrimSpace(p.Link) == "" {
		return "", ErrNoContent
	}

	body, err := e.client.GetBody(ctx, p.Link, nil)
	if err != nil {
		logger.WithError(err).Warn("article download failed")
		return "", fmt.Errorf("download %s: %w", p.Link, err)
	}

	u, _ := neturl.Parse(p.Link)
	res, err := trafilatura.Extract(bytes.NewReader(body), trafilatura.Options{
		OriginalURL:    u,
		EnableFallback: true,
		Focus:          trafilatura.Balanced,
	})
	if err != nil || res == nil {
		logger.WithError(err).Debug("article extraction failed")
		return "", ErrNoContent
	}

	txt := strings.TrimSpace(res.ContentText)
	if len(txt) < minExtractedLen {
		logger.WithField("length", len(txt)).Debug("article extraction too short")
		return "", ErrNoContent
	}
	logger.WithField("length", len(txt)).Debug("article extracted")
	return txt, nil
}

// HTMLToText converts an HTML fragment into plain text, one line per block.
func HTMLToText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	n, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return ""
	}

	var lines []string
	var current strings.Builder
	flush := func() {
		if t := strings.TrimSpace(current.String()); t != "" {
			lines = append(lines, t)
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			if t := strings.Join(strings.Fields(strings.ReplaceAll(n.Data, "\u00a0", " ")), " "); t != "" {
				if current.Len() > 0 {
					current.WriteString(" ")
				}
				current.WriteString(t)
			}
		case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style"):
			return
		case n.Type == html.ElementNode && n.Data == "br":
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlock(n.Data) {
			flush()
		}
	}
	walk(n)
	flush()
	return strings.Join(lines, "\n")
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "tr", "section", "article":
		return true
	}
	return false
}
