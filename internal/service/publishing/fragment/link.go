package fragment

import (
	"strings"

	"golang.org/x/net/html"

	"pressroom/internal/domain/models/publishing"
)

// Links are not a fragment kind but carry one embedded concept: the
// follow policy. Nofollow links emit the crawler-visibility attribute on
// render; imported markup is classified by its presence.

// RenderLink renders an anchor with the given follow policy.
func RenderLink(href, text string, policy publishing.FollowPolicy) string {
	var b strings.Builder
	b.WriteString("<a")
	writeAttr(&b, "href", href)
	if policy == publishing.Nofollow {
		writeAttr(&b, "rel", "nofollow")
	}
	b.WriteString(">")
	b.WriteString(html.EscapeString(text))
	b.WriteString("</a>")
	return b.String()
}

// ClassifyLink derives the follow policy from an anchor node on import:
// any "nofollow" token in rel means nofollow, everything else is dofollow.
func ClassifyLink(n *html.Node) publishing.FollowPolicy {
	for _, token := range strings.Fields(attr(n, "rel")) {
		if strings.EqualFold(token, "nofollow") {
			return publishing.Nofollow
		}
	}
	return publishing.Dofollow
}
