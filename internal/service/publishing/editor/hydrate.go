package editor

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"pressroom/internal/domain/models/publishing"
	"pressroom/internal/service/publishing/fragment"
)

// voidElements never carry children or a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// hydrateSegments walks parsed markup and splits it into live segments:
// every recognized fragment node becomes an object segment via the
// registry's parse contract, and the surrounding markup is re-rendered
// into text runs. Concatenating the segments reproduces the document, so
// no side index is needed.
//
// Anchor elements are classified on the way through: any rel containing a
// nofollow token is normalized to rel="nofollow", everything else loses
// the rel attribute. That folds imported links onto the follow-policy
// attribute.
func hydrateSegments(reg *fragment.Registry, nodes []*html.Node) ([]Segment, error) {
	var segments []Segment
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			segments = append(segments, Segment{Text: buf.String()})
			buf.Reset()
		}
	}

	var walk func(n *html.Node) error
	walk = func(n *html.Node) error {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(escapeText(n.Data))
			return nil
		case html.CommentNode, html.DoctypeNode:
			return nil
		case html.ElementNode:
			// fall through
		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if err := walk(c); err != nil {
					return err
				}
			}
			return nil
		}

		if _, ok := reg.Recognize(n); ok {
			obj, err := reg.Parse(n)
			if err != nil {
				return fmt.Errorf("hydrate fragment: %w", err)
			}
			flush()
			segments = append(segments, Segment{Object: obj})
			return nil
		}

		writeOpenTag(&buf, n)
		if voidElements[n.Data] {
			return nil
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		buf.WriteString("</")
		buf.WriteString(n.Data)
		buf.WriteString(">")
		return nil
	}

	for _, n := range nodes {
		if err := walk(n); err != nil {
			return nil, err
		}
	}
	flush()
	return segments, nil
}

// writeOpenTag renders an element's opening tag, normalizing anchor rel
// attributes onto the follow policy.
func writeOpenTag(b *strings.Builder, n *html.Node) {
	b.WriteString("<")
	b.WriteString(n.Data)

	isAnchor := n.Data == "a"
	for _, a := range n.Attr {
		if isAnchor && a.Key == "rel" {
			continue
		}
		b.WriteString(" ")
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteString(`"`)
	}
	if isAnchor && fragment.ClassifyLink(n) == publishing.Nofollow {
		b.WriteString(` rel="nofollow"`)
	}

	if voidElements[n.Data] {
		b.WriteString("/>")
	} else {
		b.WriteString(">")
	}
}

// escapeText escapes the characters that terminate a text run. Quotes are
// left alone so prose round-trips byte for byte.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
