// Package fragment defines the embeddable object kinds that live inside
// article markup. Every kind serializes to a self-describing markup
// fragment: each attribute is written as a machine-readable property on
// the fragment itself, so copy/paste and raw storage stay a single string
// and parse is an exact inverse of render.
package fragment

import (
	"pressroom/internal/domain/models/publishing"
)

// Kind discriminates embedded object types.
type Kind string

const (
	KindCallout  Kind = "callout"
	KindImage    Kind = "image"
	KindCitation Kind = "citation"
)

// AttrFragment is the discriminator attribute carried by every rendered
// fragment.
const AttrFragment = "data-fragment"

// Object is the tagged union over embedded object kinds. Each variant
// carries its own attribute struct and is dispatched through the registry.
type Object interface {
	FragmentKind() Kind
}

// CalloutType selects the visual severity of a callout card.
type CalloutType string

const (
	CalloutInfo    CalloutType = "info"
	CalloutWarning CalloutType = "warning"
	CalloutSuccess CalloutType = "success"
	CalloutError   CalloutType = "error"
)

// Callout is an authored callout card.
type Callout struct {
	Title string      `json:"title"`
	Body  string      `json:"body"`
	Type  CalloutType `json:"type"`
}

func (Callout) FragmentKind() Kind { return KindCallout }

// Glyph returns the display glyph for the callout's severity. The glyph is
// derived from Type on every render and never persisted as an attribute.
func (c Callout) Glyph() string {
	switch c.Type {
	case CalloutWarning:
		return "⚠"
	case CalloutSuccess:
		return "✓"
	case CalloutError:
		return "✕"
	default:
		return "ℹ"
	}
}

// Image is a block-level image with descriptive metadata.
type Image struct {
	Src         string `json:"src"`
	Caption     string `json:"caption"`
	Alt         string `json:"alt"`
	Attribution string `json:"attribution"`
}

func (Image) FragmentKind() Kind { return KindImage }

// CitationSpan is an inline citation marker. It carries the full citation
// record so the fragment survives copy/paste on its own; the reference
// store stays the source of truth for partition membership only.
type CitationSpan struct {
	Citation publishing.Citation `json:"citation"`
}

func (CitationSpan) FragmentKind() Kind { return KindCitation }
