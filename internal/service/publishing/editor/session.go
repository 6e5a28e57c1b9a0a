// Package editor hosts the document editing surface: a single-document
// authoring session that owns insertion and deletion of embedded objects
// at cursor positions and keeps the reference and FAQ stores in sync with
// author actions.
//
// The session is single-threaded and cooperative: every mutation happens
// synchronously in response to one discrete author action, and the full
// document is re-serialized after each mutation. Correctness, not minimal
// re-render, is the invariant.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	models "pressroom/internal/domain/models/publishing"
	pubSvc "pressroom/internal/domain/services/publishing"
	"pressroom/internal/service/publishing"
	"pressroom/internal/service/publishing/fragment"
)

// SessionState tracks whether the session has unsaved mutations.
type SessionState string

const (
	StateIdle    SessionState = "idle"
	StateEditing SessionState = "editing"
)

// Segment is one run of the document: either a raw markup text run or a
// live embedded object. Concatenating all segments in order yields the
// serialized document.
type Segment struct {
	Text   string
	Object fragment.Object
}

// IsObject reports whether the segment is a live embedded object.
func (s Segment) IsObject() bool { return s.Object != nil }

// Position is an explicit cursor location: a segment index plus a byte
// offset within that segment's text. Transient UI state is always passed
// in explicitly, never read from ambient globals.
type Position struct {
	Segment int
	Offset  int
}

// Session is one document editing session. Each session owns its own
// reference store and FAQ store, constructed fresh from the loaded
// content record; nothing is shared across documents.
type Session struct {
	slug        string
	state       SessionState
	segments    []Segment
	cursor      *Position
	markup      string
	generateTOC bool

	registry *fragment.Registry
	refs     *publishing.ReferenceStore
	faqs     *publishing.FAQStore
	logger   *slog.Logger
}

// NewSession creates an empty session for the given slug.
func NewSession(slug string, registry *fragment.Registry, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		slug:     slug,
		state:    StateIdle,
		registry: registry,
		refs:     publishing.NewReferenceStore(),
		faqs:     publishing.NewFAQStore(),
		logger:   logger,
	}
}

// Hydrate loads a persisted content record into the session. The markup
// is parsed through the registry so recognized fragments come back as
// live objects; reference and FAQ state is rehydrated from the record's
// side-tables, not re-derived from the markup.
func (s *Session) Hydrate(record *models.Article) error {
	nodes, err := fragment.ParseBodyFragment(record.Content)
	if err != nil {
		return fmt.Errorf("parse stored markup: %w", err)
	}
	segments, err := hydrateSegments(s.registry, nodes)
	if err != nil {
		return err
	}

	s.segments = segments
	s.refs.Rehydrate(record.Refs)
	s.faqs.ReplaceAll(record.FAQs)
	s.generateTOC = record.GeneratedTOC
	s.cursor = nil
	s.state = StateIdle
	s.reserialize()
	return nil
}

// Slug returns the content identifier this session edits.
func (s *Session) Slug() string { return s.slug }

// State returns the session state.
func (s *Session) State() SessionState { return s.state }

// Markup returns the current serialized document.
func (s *Session) Markup() string { return s.markup }

// Refs exposes the session's reference store.
func (s *Session) Refs() *publishing.ReferenceStore { return s.refs }

// FAQs exposes the session's FAQ store.
func (s *Session) FAQs() *publishing.FAQStore { return s.faqs }

// Segments returns the current segment list.
func (s *Session) Segments() []Segment {
	out := make([]Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

// SetGenerateTOC toggles TOC synthesis for the next save.
func (s *Session) SetGenerateTOC(on bool) { s.generateTOC = on }

// SetCursor places the cursor. Out-of-range positions clear it instead of
// erroring; a subsequent insert simply becomes a no-op.
func (s *Session) SetCursor(pos Position) {
	if pos.Segment < 0 || pos.Segment > len(s.segments) {
		s.cursor = nil
		return
	}
	if pos.Segment < len(s.segments) {
		seg := s.segments[pos.Segment]
		if seg.IsObject() {
			if pos.Offset != 0 {
				s.cursor = nil
				return
			}
		} else if pos.Offset < 0 || pos.Offset > len(seg.Text) {
			s.cursor = nil
			return
		}
	} else if pos.Offset != 0 {
		s.cursor = nil
		return
	}
	s.cursor = &pos
}

// ClearCursor drops the selection.
func (s *Session) ClearCursor() { s.cursor = nil }

// InsertText inserts text at the cursor. Without a cursor the insert is a
// silent no-op: authoring actions are advisory on an interactive surface.
func (s *Session) InsertText(text string) {
	if s.cursor == nil || text == "" {
		return
	}

	pos := *s.cursor
	if pos.Segment == len(s.segments) || s.segments[pos.Segment].IsObject() {
		// At document end or on an object boundary: open a text run.
		s.segments = insertSegment(s.segments, pos.Segment, Segment{Text: text})
		s.cursor = &Position{Segment: pos.Segment, Offset: len(text)}
	} else {
		seg := s.segments[pos.Segment]
		seg.Text = seg.Text[:pos.Offset] + text + seg.Text[pos.Offset:]
		s.segments[pos.Segment] = seg
		s.cursor = &Position{Segment: pos.Segment, Offset: pos.Offset + len(text)}
	}

	s.state = StateEditing
	s.reserialize()
}

// InsertObject inserts an embedded object at the cursor. Citation spans
// additionally register their record in the inline partition of the
// reference store, minting an id when the record has none. Without a
// cursor the insert is a silent no-op.
func (s *Session) InsertObject(obj fragment.Object) {
	if s.cursor == nil {
		return
	}

	if span, ok := obj.(fragment.CitationSpan); ok {
		if span.Citation.ID == "" {
			span.Citation.ID = uuid.NewString()
			obj = span
		}
		s.refs.Add(span.Citation, true)
	}

	pos := *s.cursor
	objIndex := pos.Segment
	if pos.Segment < len(s.segments) && !s.segments[pos.Segment].IsObject() && pos.Offset > 0 {
		// Split the text run at the cursor.
		seg := s.segments[pos.Segment]
		before := Segment{Text: seg.Text[:pos.Offset]}
		after := Segment{Text: seg.Text[pos.Offset:]}
		s.segments[pos.Segment] = before
		s.segments = insertSegment(s.segments, pos.Segment+1, after)
		objIndex = pos.Segment + 1
	}
	s.segments = insertSegment(s.segments, objIndex, Segment{Object: obj})
	s.cursor = &Position{Segment: objIndex + 1, Offset: 0}

	s.state = StateEditing
	s.reserialize()
}

// AddBackgroundCitation registers a bibliography-only citation. No span is
// inserted into the body.
func (s *Session) AddBackgroundCitation(c models.Citation) models.Citation {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.refs.Add(c, false)
	s.state = StateEditing
	return c
}

// Backspace deletes backwards from the cursor. When the cursor sits
// immediately after an embedded object, the object is removed as one
// atomic unit; a citation span additionally drops its id from whichever
// store partition holds it. A span is never partially deleted, since its
// attributes would desynchronize from the store.
func (s *Session) Backspace() {
	if s.cursor == nil {
		return
	}
	pos := *s.cursor

	if pos.Offset > 0 {
		seg := s.segments[pos.Segment]
		_, size := utf8.DecodeLastRuneInString(seg.Text[:pos.Offset])
		seg.Text = seg.Text[:pos.Offset-size] + seg.Text[pos.Offset:]
		s.segments[pos.Segment] = seg
		s.cursor = &Position{Segment: pos.Segment, Offset: pos.Offset - size}
		s.state = StateEditing
		s.reserialize()
		return
	}

	prev := pos.Segment - 1
	if prev < 0 {
		return
	}

	if s.segments[prev].IsObject() {
		at := s.removeObjectSegment(prev)
		s.cursor = &at
		s.state = StateEditing
		s.reserialize()
		return
	}

	// Cursor at the start of a run: delete the previous run's last rune.
	seg := s.segments[prev]
	if seg.Text == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(seg.Text)
	seg.Text = seg.Text[:len(seg.Text)-size]
	s.segments[prev] = seg
	s.state = StateEditing
	s.reserialize()
}

// removeObjectSegment drops the object at index, syncs the reference
// store and merges the neighbouring text runs. It returns the position
// where the object stood so callers can place the cursor there.
func (s *Session) removeObjectSegment(index int) Position {
	if span, ok := s.segments[index].Object.(fragment.CitationSpan); ok {
		s.refs.Delete(span.Citation.ID)
	}
	s.segments = append(s.segments[:index], s.segments[index+1:]...)

	at := Position{Segment: index, Offset: 0}
	if index > 0 && !s.segments[index-1].IsObject() {
		at = Position{Segment: index - 1, Offset: len(s.segments[index-1].Text)}

		// Merge the text runs now adjacent across the removal.
		if index < len(s.segments) && !s.segments[index].IsObject() {
			s.segments[index-1].Text += s.segments[index].Text
			s.segments = append(s.segments[:index], s.segments[index+1:]...)
		}
	}

	// An insertion split can leave an empty run behind the object.
	if at.Segment < len(s.segments) && !s.segments[at.Segment].IsObject() &&
		s.segments[at.Segment].Text == "" {
		s.segments = append(s.segments[:at.Segment], s.segments[at.Segment+1:]...)
	}
	return at
}

// DeleteCitationSpan removes the span carrying the given citation id as an
// atomic unit and deletes the id from the reference store. The cursor is
// left alone when it sits before the removed span; positions at or past
// the span are invalidated by the removal and cleared.
func (s *Session) DeleteCitationSpan(id string) {
	for i, seg := range s.segments {
		span, ok := seg.Object.(fragment.CitationSpan)
		if !ok || span.Citation.ID != id {
			continue
		}
		old := s.cursor
		s.removeObjectSegment(i)
		s.cursor = nil
		if old != nil && old.Segment < i {
			s.cursor = old
		}
		s.state = StateEditing
		s.reserialize()
		return
	}
}

// EditCitation updates the citation record everywhere it lives: the
// store entry keeps its partition, and any inline span carrying the id is
// re-rendered with the new attributes.
func (s *Session) EditCitation(id string, updated models.Citation) {
	s.refs.Edit(id, updated)
	updated.ID = id

	changed := false
	for i, seg := range s.segments {
		span, ok := seg.Object.(fragment.CitationSpan)
		if !ok || span.Citation.ID != id {
			continue
		}
		s.segments[i] = Segment{Object: fragment.CitationSpan{Citation: updated}}
		changed = true
	}
	if changed {
		s.state = StateEditing
		s.reserialize()
	}
}

// Paste inserts external markup at the cursor. Recognized fragments come
// back as live objects rather than inert text; pasted citation spans are
// registered inline unless the store already holds their id. Links are
// classified by the presence of a nofollow marker during hydration.
// Without a cursor the paste is a silent no-op.
func (s *Session) Paste(markup string) error {
	if s.cursor == nil {
		return nil
	}

	nodes, err := fragment.ParseBodyFragment(markup)
	if err != nil {
		return fmt.Errorf("parse pasted markup: %w", err)
	}
	pasted, err := hydrateSegments(s.registry, nodes)
	if err != nil {
		return err
	}
	if len(pasted) == 0 {
		return nil
	}

	for _, seg := range pasted {
		span, ok := seg.Object.(fragment.CitationSpan)
		if !ok {
			continue
		}
		if _, _, exists := s.refs.Get(span.Citation.ID); !exists {
			s.refs.Add(span.Citation, true)
		}
	}

	pos := *s.cursor
	at := pos.Segment
	if pos.Segment < len(s.segments) && !s.segments[pos.Segment].IsObject() && pos.Offset > 0 {
		seg := s.segments[pos.Segment]
		before := Segment{Text: seg.Text[:pos.Offset]}
		after := Segment{Text: seg.Text[pos.Offset:]}
		s.segments[pos.Segment] = before
		s.segments = insertSegment(s.segments, pos.Segment+1, after)
		at = pos.Segment + 1
	}
	tail := make([]Segment, len(s.segments[at:]))
	copy(tail, s.segments[at:])
	s.segments = append(append(s.segments[:at:at], pasted...), tail...)
	s.cursor = &Position{Segment: at + len(pasted), Offset: 0}

	s.state = StateEditing
	s.reserialize()
	return nil
}

// AddFAQ appends a question/answer pair, minting an id.
func (s *Session) AddFAQ(question, answer string) models.FAQ {
	faq := models.FAQ{ID: uuid.NewString(), Question: question, Answer: answer}
	s.faqs.Add(faq)
	s.state = StateEditing
	return faq
}

// UpdateFAQ replaces the entry with a matching id in place.
func (s *Session) UpdateFAQ(faq models.FAQ) {
	s.faqs.Update(faq)
	s.state = StateEditing
}

// DeleteFAQ removes the entry with the matching id.
func (s *Session) DeleteFAQ(id string) {
	s.faqs.Delete(id)
	s.state = StateEditing
}

// Save pushes the session through the persistence boundary. On failure
// the in-memory state is preserved untouched so the author can retry; on
// success the session returns to idle. A reload must wait for the save to
// return, which the synchronous call guarantees.
func (s *Session) Save(ctx context.Context, svc pubSvc.ArticleService) (*models.Article, error) {
	record, err := svc.SaveContent(ctx, &pubSvc.SaveContentRequest{
		Slug:        s.slug,
		Content:     s.markup,
		GenerateTOC: s.generateTOC,
		Refs:        s.refs.Snapshot(),
		FAQs:        s.faqs.List(),
	})
	if err != nil {
		return nil, err
	}
	s.state = StateIdle
	return record, nil
}

// reserialize rebuilds the full document markup from the segments. The
// whole document is re-serialized on every mutation; there is no
// incremental diffing contract.
func (s *Session) reserialize() {
	var b strings.Builder
	for _, seg := range s.segments {
		if !seg.IsObject() {
			b.WriteString(seg.Text)
			continue
		}
		rendered, err := s.registry.Render(seg.Object)
		if err != nil {
			// An unregistered object cannot reach here through the public
			// API; keep the rest of the document intact regardless.
			s.logger.Error("fragment render failed", "kind", seg.Object.FragmentKind(), "error", err)
			continue
		}
		b.WriteString(rendered)
	}
	s.markup = b.String()
}

func insertSegment(segments []Segment, index int, seg Segment) []Segment {
	segments = append(segments, Segment{})
	copy(segments[index+1:], segments[index:])
	segments[index] = seg
	return segments
}
