package fragment

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// renderCallout serializes a callout card. Title, body and severity ride
// on the wrapper as data attributes; the glyph is display-only and derived
// from the severity on every render.
func renderCallout(obj Object) (string, error) {
	card, ok := obj.(Callout)
	if !ok {
		return "", fmt.Errorf("renderCallout: expected Callout, got %T", obj)
	}

	var b strings.Builder
	b.WriteString("<div")
	writeAttr(&b, AttrFragment, string(KindCallout))
	writeAttr(&b, "data-type", string(card.Type))
	writeAttr(&b, "data-title", card.Title)
	writeAttr(&b, "data-body", card.Body)
	b.WriteString(` class="callout callout-`)
	b.WriteString(html.EscapeString(string(card.Type)))
	b.WriteString(`">`)

	b.WriteString(`<span class="callout-glyph">`)
	b.WriteString(card.Glyph())
	b.WriteString(`</span>`)

	if card.Title != "" {
		b.WriteString(`<strong class="callout-title">`)
		b.WriteString(html.EscapeString(card.Title))
		b.WriteString(`</strong>`)
	}
	if card.Body != "" {
		b.WriteString(`<p class="callout-body">`)
		b.WriteString(html.EscapeString(card.Body))
		b.WriteString(`</p>`)
	}

	b.WriteString("</div>")
	return b.String(), nil
}

// parseCallout recovers the attribute bag from the wrapper's data
// attributes. The visible children are presentation only.
func parseCallout(n *html.Node) (Object, error) {
	if Kind(attr(n, AttrFragment)) != KindCallout {
		return nil, fmt.Errorf("parseCallout: not a callout fragment")
	}

	return Callout{
		Title: attr(n, "data-title"),
		Body:  attr(n, "data-body"),
		Type:  CalloutType(attr(n, "data-type")),
	}, nil
}
