package pipeline

import (
	"fmt"
	"strings"
	"unicode"
)

// anchorSet derives unique heading anchor ids within one document.
type anchorSet struct {
	seen  map[string]int
	taken map[string]bool
}

func newAnchorSet() *anchorSet {
	return &anchorSet{
		seen:  make(map[string]int),
		taken: make(map[string]bool),
	}
}

// derive builds an anchor id from heading text: lowercased, non-alphanumeric
// characters stripped, first three words joined with '-'. Colliding anchors
// get a numeric suffix, so two identical headings yield "intro" and
// "intro-1" in document order.
func (a *anchorSet) derive(text string) string {
	base := anchorBase(text)

	n := a.seen[base]
	a.seen[base] = n + 1

	anchor := base
	if n > 0 {
		anchor = fmt.Sprintf("%s-%d", base, n)
	}
	for a.taken[anchor] {
		n++
		a.seen[base] = n + 1
		anchor = fmt.Sprintf("%s-%d", base, n)
	}
	a.taken[anchor] = true
	return anchor
}

func anchorBase(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	words := strings.Fields(b.String())
	if len(words) > 3 {
		words = words[:3]
	}
	if len(words) == 0 {
		return "section"
	}
	return strings.Join(words, "-")
}
