package pipeline

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	models "pressroom/internal/domain/models/publishing"
)

// removeTOC strips a previously generated TOC heading and its immediately
// following list, both detected by their reserved ids. No-op when the pair
// is absent.
func (p *Pipeline) removeTOC(doc *goquery.Document) error {
	heading := doc.Find("#" + p.opts.TOCHeadingID)
	if heading.Length() == 0 {
		return nil
	}

	if next := heading.Next(); next.Is("ol#" + p.opts.TOCListID) {
		next.Remove()
	}
	heading.Remove()
	return nil
}

// synthesizeTOC scans level-2 headings in document order, assigns each a
// unique anchor id and inserts a fresh TOC block immediately after the
// first level-1 heading. Headings with empty text are excluded. When the
// document has no level-1 heading the block goes at the top of the body.
func (p *Pipeline) synthesizeTOC(doc *goquery.Document) error {
	anchors := newAnchorSet()
	var entries []models.TOCEntry

	doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		anchor := anchors.derive(text)
		s.SetAttr("id", anchor)
		entries = append(entries, models.TOCEntry{Anchor: anchor, Text: text, Level: 2})
	})

	if len(entries) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(`<h2 id="`)
	b.WriteString(p.opts.TOCHeadingID)
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(p.opts.TOCTitle))
	b.WriteString(`</h2><ol id="`)
	b.WriteString(p.opts.TOCListID)
	b.WriteString(`">`)
	for _, e := range entries {
		b.WriteString(`<li><a href="#`)
		b.WriteString(e.Anchor)
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(e.Text))
		b.WriteString(`</a></li>`)
	}
	b.WriteString(`</ol>`)

	if first := doc.Find("h1").First(); first.Length() > 0 {
		first.AfterHtml(b.String())
	} else {
		doc.Find("body").PrependHtml(b.String())
	}
	return nil
}
