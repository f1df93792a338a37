// Package markdown converts Blogger post HTML into markdown for terminal
// rendering.
package markdown

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/samber/lo"
	"golang.org/x/net/html"

	"agaxfeed/internal/blog"
	"agaxfeed/internal/normalize"
)

var blankLines = regexp.MustCompile(`\n{3,}`)

// Converter handles HTML to Markdown conversion using node traversal
type Converter struct {
	// imageSize is the Blogger size token applied to <img> sources.
	imageSize normalize.Size
}

// NewConverter creates a converter that rewrites Blogger images to size.
func NewConverter(size normalize.Size) *Converter {
	return &Converter{imageSize: size}
}

// ConvertHTMLString converts an HTML fragment to markdown
func (c *Converter) ConvertHTMLString(htmlStr string) string {
	if strings.TrimSpace(htmlStr) == "" {
		return ""
	}

	nodes, err := html.ParseFragment(strings.NewReader(htmlStr), &html.Node{
		Type: html.ElementNode, Data: "body",
	})
	if err != nil {
		return ""
	}

	var sb strings.Builder
	for _, n := range nodes {
		appendPiece(&sb, c.convertNode(n))
	}
	return tidy(sb.String())
}

func tidy(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(s, "\n\n"))
}

func (c *Converter) convertNode(node *html.Node) string {
	switch node.Type {
	case html.TextNode:
		return collapseSpace(node.Data)
	case html.ElementNode:
		return c.convertElement(node)
	case html.DocumentNode:
		return c.convertChildren(node)
	default:
		return ""
	}
}

// collapseSpace folds runs of whitespace, including non-breaking spaces,
// into single spaces as a browser would.
func collapseSpace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	if strings.TrimSpace(s) == "" {
		if s == "" {
			return ""
		}
		return " "
	}
	out := strings.Join(strings.Fields(s), " ")
	if unicode.IsSpace(rune(s[0])) {
		out = " " + out
	}
	if unicode.IsSpace(rune(s[len(s)-1])) {
		out += " "
	}
	return out
}

func (c *Converter) convertElement(node *html.Node) string {
	switch node.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		content := strings.TrimSpace(c.convertChildren(node))
		if content == "" {
			return ""
		}
		level, _ := strconv.Atoi(node.Data[1:])
		return block(strings.Repeat("#", level) + " " + content)
	case "p":
		return block(strings.TrimSpace(c.convertChildren(node)))
	case "strong", "b":
		return wrap("**", c.convertChildren(node))
	case "em", "i":
		return wrap("*", c.convertChildren(node))
	case "a":
		return c.convertLink(node)
	case "img":
		return c.convertImage(node)
	case "br":
		return "\n"
	case "ul", "ol":
		return c.convertList(node)
	case "code":
		return wrap("`", c.convertChildren(node))
	case "pre":
		return block("```\n" + textContent(node) + "\n```")
	case "blockquote":
		return c.convertBlockquote(node)
	case "hr":
		return block("---")
	case "iframe":
		if src := attr(node, "src"); src != "" {
			return block(fmt.Sprintf("[▶ vídeo](%s)", src))
		}
		return ""
	case "script", "style", "noscript":
		return ""
	default:
		// containers such as div, span and table cells
		return c.convertChildren(node)
	}
}

func block(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return "\n\n" + s + "\n\n"
}

func wrap(marker, s string) string {
	inner := strings.TrimSpace(s)
	if inner == "" {
		return s
	}
	return marker + inner + marker
}

func (c *Converter) convertLink(node *html.Node) string {
	content := strings.TrimSpace(c.convertChildren(node))
	href := attr(node, "href")
	if href == "" || strings.HasPrefix(href, "javascript:") {
		return content
	}
	if content == "" {
		return ""
	}
	// Blogger wraps images in links to the full size file.
	if strings.HasPrefix(content, "![") {
		return content
	}
	return "[" + content + "](" + href + ")"
}

func (c *Converter) convertImage(node *html.Node) string {
	src := attr(node, "src")
	if src == "" {
		return ""
	}
	if c.imageSize != "" {
		src = normalize.Resize(src, c.imageSize)
	}
	alt := strings.TrimSpace(attr(node, "alt"))
	return block("![" + alt + "](" + src + ")")
}

func (c *Converter) convertList(node *html.Node) string {
	ordered := node.Data == "ol"
	var sb strings.Builder
	n := 0
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode || child.Data != "li" {
			continue
		}
		item := strings.TrimSpace(tidy(c.convertChildren(child)))
		if item == "" {
			continue
		}
		n++
		marker := "- "
		if ordered {
			marker = strconv.Itoa(n) + ". "
		}
		sb.WriteString(marker + strings.ReplaceAll(item, "\n", "\n   ") + "\n")
	}
	return block(strings.TrimRight(sb.String(), "\n"))
}

func (c *Converter) convertBlockquote(node *html.Node) string {
	content := tidy(c.convertChildren(node))
	if content == "" {
		return ""
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ">"
		} else {
			lines[i] = "> " + line
		}
	}
	return block(strings.Join(lines, "\n"))
}

func (c *Converter) convertChildren(node *html.Node) string {
	var result strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		appendPiece(&result, c.convertNode(child))
	}
	return result.String()
}

// appendPiece drops leading spaces of text that starts a new line.
func appendPiece(sb *strings.Builder, piece string) {
	if sb.Len() == 0 || strings.HasSuffix(sb.String(), "\n") {
		piece = strings.TrimLeft(piece, " ")
	}
	sb.WriteString(piece)
}

func attr(node *html.Node, key string) string {
	for _, a := range node.Attr {
		if strings.EqualFold(a.Key, key) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func textContent(node *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			sb.WriteString("\n")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return strings.Trim(sb.String(), "\n")
}

// ConvertHTMLString converts HTML with images rewritten to the medium size.
func ConvertHTMLString(htmlStr string) string {
	return NewConverter(normalize.Medium).ConvertHTMLString(htmlStr)
}

// Post renders the markdown document of a post detail view: title, date,
// source and labels, the featured image when the body does not already show
// it, then the body. body overrides the post content when non-empty.
func Post(p blog.Post, body string) string {
	var sb strings.Builder
	sb.WriteString("# " + p.Title + "\n\n")

	meta := []string{blog.FormatDate(p.PublishedAt)}
	if p.Source != nil {
		meta = append(meta, p.Source.Name)
	}
	if meta = lo.Compact(meta); len(meta) > 0 {
		sb.WriteString("*" + strings.Join(meta, " · ") + "*\n\n")
	}
	if len(p.Labels) > 0 {
		sb.WriteString("`" + strings.Join(p.Labels, "` `") + "`\n\n")
	}

	content := body
	if strings.TrimSpace(content) == "" {
		content = ConvertHTMLString(p.Content)
	}

	if p.DetailImageURL != "" && !strings.Contains(content, p.DetailImageURL) {
		sb.WriteString("![](" + p.DetailImageURL + ")\n\n")
	}

	if strings.TrimSpace(content) == "" {
		content = p.Summary
	}
	sb.WriteString(content + "\n\n")
	sb.WriteString("[" + p.Link + "](" + p.Link + ")\n")
	return sb.String()
}
