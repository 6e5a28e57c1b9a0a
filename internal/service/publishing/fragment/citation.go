package fragment

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"pressroom/internal/domain/models/publishing"
)

// renderCitationSpan serializes an inline citation marker. The entire
// citation record is written as data attributes and the display link text
// becomes the span's text content, so the span survives copy/paste and
// reload without consulting the reference store.
func renderCitationSpan(obj Object) (string, error) {
	span, ok := obj.(CitationSpan)
	if !ok {
		return "", fmt.Errorf("renderCitationSpan: expected CitationSpan, got %T", obj)
	}
	c := span.Citation

	var b strings.Builder
	b.WriteString("<span")
	writeAttr(&b, AttrFragment, string(KindCitation))
	writeAttr(&b, "data-citation-id", c.ID)
	writeAttr(&b, "data-kind", string(c.Kind))
	writeAttr(&b, "data-first-name", c.FirstName)
	writeAttr(&b, "data-last-name", c.LastName)
	writeAttr(&b, "data-title", c.Title)
	writeAttr(&b, "data-publisher", c.Publisher)
	writeAttr(&b, "data-date", c.Date)
	writeAttr(&b, "data-url", c.URL)
	writeAttr(&b, "data-journal", c.Journal)
	writeAttr(&b, "data-volume", c.Volume)
	writeAttr(&b, "data-issue", c.Issue)
	writeAttr(&b, "data-pages", c.Pages)
	writeAttr(&b, "data-doi", c.DOI)
	writeAttr(&b, "data-follow", string(c.Follow))
	b.WriteString(` class="citation-span">`)
	b.WriteString(html.EscapeString(c.LinkText))
	b.WriteString("</span>")

	return b.String(), nil
}

// parseCitationSpan recovers the full citation record from the span's
// data attributes; the display text comes back from the text content.
func parseCitationSpan(n *html.Node) (Object, error) {
	if Kind(attr(n, AttrFragment)) != KindCitation {
		return nil, fmt.Errorf("parseCitationSpan: not a citation fragment")
	}

	return CitationSpan{
		Citation: publishing.Citation{
			ID:        attr(n, "data-citation-id"),
			Kind:      publishing.ReferenceKind(attr(n, "data-kind")),
			LinkText:  textContent(n),
			FirstName: attr(n, "data-first-name"),
			LastName:  attr(n, "data-last-name"),
			Title:     attr(n, "data-title"),
			Publisher: attr(n, "data-publisher"),
			Date:      attr(n, "data-date"),
			URL:       attr(n, "data-url"),
			Journal:   attr(n, "data-journal"),
			Volume:    attr(n, "data-volume"),
			Issue:     attr(n, "data-issue"),
			Pages:     attr(n, "data-pages"),
			DOI:       attr(n, "data-doi"),
			Follow:    publishing.FollowPolicy(attr(n, "data-follow")),
		},
	}, nil
}
