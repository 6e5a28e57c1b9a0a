package sanitizer

import (
	"github.com/microcosm-cc/bluemonday"
)

// MarkupSanitizer strips dangerous elements from authored markup before
// the transformation pipeline runs. The policy is built by hand rather
// than from the UGC preset: the preset forces rel="nofollow" onto every
// link, which would destroy the author's follow policy, and it drops the
// data attributes that make embedded fragments self-describing.
//
// Thread-safe for concurrent use.
type MarkupSanitizer struct {
	policy *bluemonday.Policy
}

// NewMarkupSanitizer creates a sanitizer that admits the publishing
// markup surface: prose elements, headings, lists, tables, images,
// fragment wrappers with their data attributes, and anchors with an
// author-controlled rel.
func NewMarkupSanitizer() *MarkupSanitizer {
	policy := bluemonday.NewPolicy()

	policy.AllowElements(
		"p", "br", "hr",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li",
		"strong", "em", "b", "i", "u", "s",
		"blockquote", "pre", "code",
		"div", "span", "section",
		"figure", "figcaption", "cite",
		"table", "thead", "tbody", "tr", "td", "th",
	)

	policy.AllowStandardURLs()
	policy.AllowAttrs("href", "rel", "target").OnElements("a")
	policy.AllowElements("a")
	policy.AllowAttrs("src", "alt").OnElements("img")
	policy.AllowElements("img")

	// Fragment state and heading anchors ride on these.
	policy.AllowDataAttributes()
	policy.AllowAttrs("id", "class").Globally()

	return &MarkupSanitizer{policy: policy}
}

// Sanitize removes script tags, event handlers, javascript: URLs and
// other active content while preserving the fragment grammar.
func (s *MarkupSanitizer) Sanitize(markup string) string {
	return s.policy.Sanitize(markup)
}
