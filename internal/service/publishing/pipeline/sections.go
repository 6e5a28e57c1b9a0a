package pipeline

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// wrapSections turns the document into a sequence of self-contained
// sections: a new section opens at every level-2 heading (heading
// inclusive), the first section opens before the first heading's content
// and the last closes at document end.
func wrapSections(doc *goquery.Document) error {
	body := doc.Find("body")
	if body.Length() == 0 {
		return nil
	}
	bodyNode := body.Get(0)

	var kids []*html.Node
	for c := bodyNode.FirstChild; c != nil; c = c.NextSibling {
		kids = append(kids, c)
	}
	if len(kids) == 0 {
		return nil
	}

	for _, k := range kids {
		bodyNode.RemoveChild(k)
	}

	var section *html.Node
	for _, k := range kids {
		startsSection := k.Type == html.ElementNode && k.DataAtom == atom.H2
		if section == nil || startsSection {
			section = &html.Node{
				Type:     html.ElementNode,
				Data:     "section",
				DataAtom: atom.Section,
				Attr:     []html.Attribute{{Key: "class", Val: "article-section"}},
			}
			bodyNode.AppendChild(section)
		}
		section.AppendChild(k)
	}
	return nil
}
