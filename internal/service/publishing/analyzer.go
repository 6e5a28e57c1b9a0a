package publishing

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	pubSvc "pressroom/internal/domain/services/publishing"
)

type contentAnalyzer struct{}

// NewContentAnalyzer creates a new content analyzer.
func NewContentAnalyzer() pubSvc.ContentAnalyzer {
	return &contentAnalyzer{}
}

// CountWords counts the words in the markup's text content.
func (a *contentAnalyzer) CountWords(markup string) int {
	text := a.ExtractText(markup)

	words := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r)
	})

	count := 0
	for _, word := range words {
		if len(strings.TrimSpace(word)) > 0 {
			count++
		}
	}
	return count
}

// ExtractText strips markup tags and returns plain text. Text nodes are
// joined with a space so adjacent blocks do not fuse into one word.
// Markup that defeats parsing is returned as-is; a word count is
// advisory, never a save blocker.
func (a *contentAnalyzer) ExtractText(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return markup
	}

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Find("body").Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}
