// Package pipeline implements the content transformation pipeline: pure,
// idempotent markup-to-markup transforms applied at save time (TOC
// removal, TOC synthesis, normalization) and at read time (ad-marker
// insertion, section wrapping).
//
// All transforms run on a server-safe parser (goquery over x/net/html);
// no live DOM is ever assumed. A transform failure is cosmetic, never
// fatal: the runner fails closed by returning the original markup and
// logging, so a save is never blocked by a transform.
package pipeline

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Options carries the reserved markup identifiers and ad-placement
// defaults. The two TOC ids are reserved: they must not collide with
// user-authored ids.
type Options struct {
	TOCHeadingID string
	TOCListID    string
	TOCTitle     string

	AdSkipFirst int
	AdInterval  int
	AdMaxSlots  int
}

// Pipeline runs markup transforms with shared options and logging.
type Pipeline struct {
	opts   Options
	logger *slog.Logger
}

// New creates a pipeline. A nil logger falls back to slog.Default().
func New(opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{opts: opts, logger: logger}
}

// transform mutates a parsed document in place.
type transform func(doc *goquery.Document) error

// run parses the markup, applies the transforms in order and re-serializes
// the body. Any failure returns the original markup unchanged.
func (p *Pipeline) run(markup, name string, transforms ...transform) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		p.logger.Warn("content transform skipped, keeping original markup",
			"transform", name, "error", err)
		return markup
	}

	for _, t := range transforms {
		if err := t(doc); err != nil {
			p.logger.Warn("content transform failed, keeping original markup",
				"transform", name, "error", err)
			return markup
		}
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		p.logger.Warn("content serialization failed, keeping original markup",
			"transform", name, "error", err)
		return markup
	}
	return out
}

// SavePass runs the save-time sequence: TOC removal, optional TOC
// synthesis, then normalization.
func (p *Pipeline) SavePass(markup string, generateTOC bool) string {
	transforms := []transform{p.removeTOC}
	if generateTOC {
		transforms = append(transforms, p.synthesizeTOC)
	}
	transforms = append(transforms, p.normalize)
	return p.run(markup, "save", transforms...)
}

// RemoveTOC strips a previously generated TOC heading+list pair. No-op
// when no such pair exists; running it twice equals running it once.
func (p *Pipeline) RemoveTOC(markup string) string {
	return p.run(markup, "remove-toc", p.removeTOC)
}

// SynthesizeTOC assigns anchor ids to level-2 headings and inserts a fresh
// TOC block immediately after the first level-1 heading.
func (p *Pipeline) SynthesizeTOC(markup string) string {
	return p.run(markup, "synthesize-toc", p.synthesizeTOC)
}

// Normalize collapses whitespace, strips empty paragraphs, unwraps
// image-only paragraph wrappers and removes the new-tab attribute from
// TOC links.
func (p *Pipeline) Normalize(markup string) string {
	return p.run(markup, "normalize", p.normalize)
}

// InsertAdMarkers walks level-2 headings, skips the first skipFirst, then
// inserts a placeholder marker after every interval-th subsequent heading,
// capped at maxAds markers. Read-time only.
func (p *Pipeline) InsertAdMarkers(markup string, skipFirst, interval, maxAds int) string {
	return p.run(markup, "ad-markers", func(doc *goquery.Document) error {
		return insertAdMarkers(doc, p.opts.TOCHeadingID, skipFirst, interval, maxAds)
	})
}

// WrapSections wraps the content between consecutive level-2 headings
// (heading inclusive) in section containers. Read-time only.
func (p *Pipeline) WrapSections(markup string) string {
	return p.run(markup, "sections", wrapSections)
}
