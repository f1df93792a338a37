package normalize

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	SummaryLength = 250
	ellipsis      = "..."

	// Placeholder is used when an entry has neither summary nor content text.
	Placeholder = "Sen descrición dispoñible."
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Summary reduces HTML to at most SummaryLength characters of plain text,
// followed by "..." when truncated.
func Summary(htmlText string) string {
	text := tagPattern.ReplaceAllString(htmlText, "")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.TrimSpace(html.UnescapeString(text))
	if text == "" {
		return Placeholder
	}

	if utf8.RuneCountInString(text) <= SummaryLength {
		return text
	}
	return string([]rune(text)[:SummaryLength]) + ellipsis
}
