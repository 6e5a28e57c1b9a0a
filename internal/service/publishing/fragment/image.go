package fragment

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// renderImage serializes a block-level image fragment. Descriptive
// metadata rides on the figure wrapper so the fragment stays
// self-contained through copy/paste.
func renderImage(obj Object) (string, error) {
	img, ok := obj.(Image)
	if !ok {
		return "", fmt.Errorf("renderImage: expected Image, got %T", obj)
	}

	var b strings.Builder
	b.WriteString("<figure")
	writeAttr(&b, AttrFragment, string(KindImage))
	writeAttr(&b, "data-src", img.Src)
	writeAttr(&b, "data-caption", img.Caption)
	writeAttr(&b, "data-alt", img.Alt)
	writeAttr(&b, "data-attribution", img.Attribution)
	b.WriteString(">")

	b.WriteString("<img")
	writeAttr(&b, "src", img.Src)
	writeAttr(&b, "alt", img.Alt)
	b.WriteString("/>")

	if img.Caption != "" || img.Attribution != "" {
		b.WriteString("<figcaption>")
		b.WriteString(html.EscapeString(img.Caption))
		if img.Attribution != "" {
			b.WriteString("<cite>")
			b.WriteString(html.EscapeString(img.Attribution))
			b.WriteString("</cite>")
		}
		b.WriteString("</figcaption>")
	}

	b.WriteString("</figure>")
	return b.String(), nil
}

// parseImage recovers the attribute bag from the figure's data attributes.
func parseImage(n *html.Node) (Object, error) {
	if Kind(attr(n, AttrFragment)) != KindImage {
		return nil, fmt.Errorf("parseImage: not an image fragment")
	}

	return Image{
		Src:         attr(n, "data-src"),
		Caption:     attr(n, "data-caption"),
		Alt:         attr(n, "data-alt"),
		Attribution: attr(n, "data-attribution"),
	}, nil
}
