package pipeline

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"pressroom/internal/service/publishing/fragment"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Elements whose direct text content is author prose: whitespace-only text
// nodes inside them may separate words and are collapsed, not removed.
var inlineContainers = map[string]bool{
	"p": true, "span": true, "a": true, "strong": true, "em": true,
	"b": true, "i": true, "u": true, "s": true, "li": true, "td": true,
	"th": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "figcaption": true, "cite": true, "blockquote": true,
	"code": true, "label": true, "caption": true,
}

// Whitespace inside these subtrees is significant and left alone.
var preformatted = map[string]bool{
	"pre": true, "code": true, "script": true, "style": true, "textarea": true,
}

// normalize performs the save-time markup cleanup: unwrap paragraph
// wrappers holding nothing but one image fragment, strip paragraphs that
// contain only whitespace or line breaks, collapse whitespace runs, drop
// inter-tag whitespace, and remove the new-tab attribute from anchors
// inside the generated TOC list.
func (p *Pipeline) normalize(doc *goquery.Document) error {
	unwrapImageParagraphs(doc)
	stripEmptyParagraphs(doc)

	if body := doc.Find("body"); body.Length() > 0 {
		collapseWhitespace(body.Get(0), false)
	}

	doc.Find("ol#" + p.opts.TOCListID + " a").RemoveAttr("target")
	return nil
}

// unwrapImageParagraphs replaces a paragraph that wraps exactly one image
// fragment (and nothing else) with the fragment itself.
func unwrapImageParagraphs(doc *goquery.Document) {
	doc.Find("p").Each(func(_ int, para *goquery.Selection) {
		if strings.TrimSpace(para.Text()) != "" {
			return
		}
		children := para.Children()
		if children.Length() != 1 {
			return
		}
		only := children.First()
		if !only.Is(`figure[` + fragment.AttrFragment + `="image"]`) && !only.Is("img") {
			return
		}

		paraNode := para.Get(0)
		childNode := only.Get(0)
		parent := paraNode.Parent

		paraNode.RemoveChild(childNode)
		parent.InsertBefore(childNode, paraNode)
		parent.RemoveChild(paraNode)
	})
}

// stripEmptyParagraphs removes paragraphs whose content is only whitespace
// and line-break markers. Paragraphs containing any other element survive.
func stripEmptyParagraphs(doc *goquery.Document) {
	doc.Find("p").Each(func(_ int, para *goquery.Selection) {
		if strings.TrimSpace(para.Text()) != "" {
			return
		}
		if para.Children().Not("br").Length() > 0 {
			return
		}
		para.Remove()
	})
}

// collapseWhitespace walks the tree collapsing runs of whitespace in text
// nodes. Whitespace-only text nodes outside inline containers are
// structural indentation between tags and are removed entirely.
func collapseWhitespace(n *html.Node, inPre bool) {
	if n.Type == html.ElementNode && preformatted[n.Data] {
		inPre = true
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode && !inPre {
			if strings.TrimSpace(c.Data) == "" && !inlineContainers[n.Data] {
				n.RemoveChild(c)
			} else {
				c.Data = whitespaceRun.ReplaceAllString(c.Data, " ")
			}
		} else {
			collapseWhitespace(c, inPre)
		}
		c = next
	}
}
