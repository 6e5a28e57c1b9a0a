package editor

import (
	"context"
	"errors"
	"strings"
	"testing"

	models "pressroom/internal/domain/models/publishing"
	pubSvc "pressroom/internal/domain/services/publishing"
	"pressroom/internal/service/publishing/fragment"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	return NewSession("test-article", fragment.NewRegistry(), nil)
}

func TestInsertTextAtCursor(t *testing.T) {
	s := newTestSession(t)

	s.SetCursor(Position{Segment: 0, Offset: 0})
	s.InsertText("<p>hello world</p>")

	if got := s.Markup(); got != "<p>hello world</p>" {
		t.Errorf("Markup() = %q", got)
	}
	if s.State() != StateEditing {
		t.Errorf("State() = %q, want editing", s.State())
	}

	// cursor advanced to the end of the inserted run; type more
	s.InsertText("<p>more</p>")
	if got := s.Markup(); got != "<p>hello world</p><p>more</p>" {
		t.Errorf("Markup() = %q", got)
	}
}

func TestInsertTextWithoutCursor(t *testing.T) {
	s := newTestSession(t)

	s.InsertText("<p>lost</p>")

	if s.Markup() != "" {
		t.Errorf("insert without a cursor must be a no-op, got %q", s.Markup())
	}
	if s.State() != StateIdle {
		t.Errorf("State() = %q, want idle", s.State())
	}
}

func TestInsertObjectWithoutCursor(t *testing.T) {
	s := newTestSession(t)

	s.InsertObject(fragment.Callout{Title: "x", Type: fragment.CalloutInfo})

	if s.Markup() != "" || len(s.Segments()) != 0 {
		t.Errorf("insert without a cursor must be a no-op, got %q", s.Markup())
	}
}

func TestInsertCitationSpanRegistersInline(t *testing.T) {
	s := newTestSession(t)
	s.SetCursor(Position{Segment: 0, Offset: 0})

	s.InsertObject(fragment.CitationSpan{Citation: models.Citation{
		Kind:     models.ReferenceBook,
		LinkText: "Doe 2020",
		Title:    "the book",
	}})

	segs := s.Segments()
	if len(segs) != 1 || !segs[0].IsObject() {
		t.Fatalf("Segments() = %+v, want one object segment", segs)
	}
	span := segs[0].Object.(fragment.CitationSpan)
	if span.Citation.ID == "" {
		t.Fatal("citation id should be minted on insert")
	}

	c, isInline, found := s.Refs().Get(span.Citation.ID)
	if !found || !isInline {
		t.Fatalf("inserted citation not in inline partition: found=%v inline=%v", found, isInline)
	}
	if c.Title != "the book" {
		t.Errorf("stored Title = %q", c.Title)
	}
	if !strings.Contains(s.Markup(), `data-citation-id="`+span.Citation.ID+`"`) {
		t.Errorf("markup missing citation span: %s", s.Markup())
	}
}

func TestInsertObjectSplitsTextRun(t *testing.T) {
	s := newTestSession(t)
	s.SetCursor(Position{Segment: 0, Offset: 0})
	s.InsertText("beforeafter")

	s.SetCursor(Position{Segment: 0, Offset: len("before")})
	s.InsertObject(fragment.Callout{Title: "mid", Type: fragment.CalloutInfo})

	segs := s.Segments()
	if len(segs) != 3 {
		t.Fatalf("len(Segments()) = %d, want 3", len(segs))
	}
	if segs[0].Text != "before" || !segs[1].IsObject() || segs[2].Text != "after" {
		t.Errorf("Segments() = %+v", segs)
	}
	if !strings.HasPrefix(s.Markup(), "before<div") || !strings.HasSuffix(s.Markup(), "after") {
		t.Errorf("Markup() = %q", s.Markup())
	}
}

func TestBackspaceDeletesRune(t *testing.T) {
	s := newTestSession(t)
	s.SetCursor(Position{Segment: 0, Offset: 0})
	s.InsertText("héllo")

	s.Backspace()
	s.Backspace()
	s.Backspace()
	s.Backspace()

	if got := s.Markup(); got != "h" {
		t.Errorf("Markup() = %q, want %q", got, "h")
	}
}

func TestBackspaceAfterSpanDeletesAtomically(t *testing.T) {
	s := newTestSession(t)
	s.SetCursor(Position{Segment: 0, Offset: 0})
	s.InsertText("intro ")

	s.InsertObject(fragment.CitationSpan{Citation: models.Citation{
		ID:       "cit-1",
		Kind:     models.ReferenceWebsite,
		LinkText: "source",
	}})
	s.InsertText(" outro")

	// place the cursor at the start of the trailing run, right after the span
	s.SetCursor(Position{Segment: 2, Offset: 0})
	s.Backspace()

	if got := s.Markup(); got != "intro  outro" {
		t.Errorf("span must vanish in one action, got %q", got)
	}
	if _, _, found := s.Refs().Get("cit-1"); found {
		t.Error("deleting the span must drop its citation from the store")
	}
	// the flanking text runs merge back into one
	if segs := s.Segments(); len(segs) != 1 || segs[0].IsObject() {
		t.Errorf("Segments() = %+v, want one merged text run", segs)
	}
}

func TestBackspaceAfterObjectContinuesIntoText(t *testing.T) {
	s := newTestSession(t)
	s.SetCursor(Position{Segment: 0, Offset: 0})
	s.InsertText("ab")
	s.InsertObject(fragment.Callout{Title: "note", Type: fragment.CalloutInfo})

	s.Backspace() // removes the callout
	s.Backspace() // then eats into the preceding run

	if got := s.Markup(); got != "a" {
		t.Errorf("Markup() = %q, want %q", got, "a")
	}
	if segs := s.Segments(); len(segs) != 1 || segs[0].Text != "a" {
		t.Errorf("Segments() = %+v, want a single %q run", segs, "a")
	}
}

func TestBackspaceDeletesAdjacentObjectsInOrder(t *testing.T) {
	s := newTestSession(t)
	s.SetCursor(Position{Segment: 0, Offset: 0})
	s.InsertText("x")
	s.InsertObject(fragment.Callout{Title: "first", Type: fragment.CalloutInfo})
	s.InsertObject(fragment.Callout{Title: "second", Type: fragment.CalloutWarning})

	s.Backspace() // last object goes first
	segs := s.Segments()
	if len(segs) != 2 || !segs[1].IsObject() {
		t.Fatalf("Segments() = %+v, want a text run and one object", segs)
	}
	if !strings.Contains(s.Markup(), "first") {
		t.Errorf("Markup() = %q, want the first callout to survive", s.Markup())
	}

	s.Backspace() // then the remaining object, never the text between
	if got := s.Markup(); got != "x" {
		t.Errorf("Markup() = %q, want %q", got, "x")
	}
}

func TestBackspaceAtDocumentStart(t *testing.T) {
	s := newTestSession(t)
	s.SetCursor(Position{Segment: 0, Offset: 0})
	s.InsertText("x")
	s.SetCursor(Position{Segment: 0, Offset: 0})

	s.Backspace() // nothing before the cursor

	if s.Markup() != "x" {
		t.Errorf("Markup() = %q, want %q", s.Markup(), "x")
	}
}

func TestDeleteCitationSpanByID(t *testing.T) {
	s := newTestSession(t)
	s.SetCursor(Position{Segment: 0, Offset: 0})
	s.InsertText("a ")
	s.InsertObject(fragment.CitationSpan{Citation: models.Citation{
		ID:       "cit-9",
		Kind:     models.ReferenceBook,
		LinkText: "ref",
	}})
	s.InsertText(" b")

	s.DeleteCitationSpan("cit-9")

	if got := s.Markup(); got != "a  b" {
		t.Errorf("Markup() = %q, want %q", got, "a  b")
	}
	if _, _, found := s.Refs().Get("cit-9"); found {
		t.Error("citation must leave the store with its span")
	}

	// unknown id stays a no-op
	s.DeleteCitationSpan("ghost")
	if got := s.Markup(); got != "a  b" {
		t.Errorf("Markup() = %q after ghost delete", got)
	}
}

func TestDeleteCitationSpanKeepsCursorBeforeSpan(t *testing.T) {
	s := newTestSession(t)
	s.SetCursor(Position{Segment: 0, Offset: 0})
	s.InsertText("head tail")
	s.SetCursor(Position{Segment: 0, Offset: len("head tail")})
	s.InsertObject(fragment.CitationSpan{Citation: models.Citation{
		ID:       "cit-5",
		Kind:     models.ReferenceBook,
		LinkText: "ref",
	}})
	s.SetCursor(Position{Segment: 0, Offset: len("head")})

	s.DeleteCitationSpan("cit-5")

	// the author's position in the leading run survives the removal
	s.InsertText("er")
	if got := s.Markup(); got != "header tail" {
		t.Errorf("Markup() = %q, want %q", got, "header tail")
	}
}

func TestDeleteCitationSpanWithoutCursor(t *testing.T) {
	s := newTestSession(t)
	s.SetCursor(Position{Segment: 0, Offset: 0})
	s.InsertText("a ")
	s.InsertObject(fragment.CitationSpan{Citation: models.Citation{
		ID:       "cit-6",
		Kind:     models.ReferenceBook,
		LinkText: "ref",
	}})
	s.ClearCursor()

	s.DeleteCitationSpan("cit-6")

	// no cursor going in means no cursor coming out
	s.InsertText("zzz")
	if got := s.Markup(); got != "a " {
		t.Errorf("Markup() = %q, want %q", got, "a ")
	}
}

func TestEditCitationRerendersSpans(t *testing.T) {
	s := newTestSession(t)
	s.SetCursor(Position{Segment: 0, Offset: 0})
	s.InsertObject(fragment.CitationSpan{Citation: models.Citation{
		ID:       "cit-2",
		Kind:     models.ReferenceBook,
		LinkText: "old text",
		Title:    "old title",
	}})

	s.EditCitation("cit-2", models.Citation{
		Kind:     models.ReferenceBook,
		LinkText: "new text",
		Title:    "new title",
	})

	if !strings.Contains(s.Markup(), ">new text</span>") {
		t.Errorf("span text not re-rendered: %s", s.Markup())
	}
	if !strings.Contains(s.Markup(), `data-title="new title"`) {
		t.Errorf("span attributes not re-rendered: %s", s.Markup())
	}
	c, isInline, found := s.Refs().Get("cit-2")
	if !found || !isInline || c.Title != "new title" {
		t.Errorf("store entry = %+v inline=%v found=%v", c, isInline, found)
	}
}

func TestPasteHydratesFragments(t *testing.T) {
	s := newTestSession(t)
	s.SetCursor(Position{Segment: 0, Offset: 0})

	reg := fragment.NewRegistry()
	spanMarkup, err := reg.Render(fragment.CitationSpan{Citation: models.Citation{
		ID:       "pasted-1",
		Kind:     models.ReferenceWebsite,
		LinkText: "pasted source",
		URL:      "https://example.com",
	}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if err := s.Paste(`<p>copied</p>` + spanMarkup + `<p>tail</p>`); err != nil {
		t.Fatalf("Paste() error = %v", err)
	}

	segs := s.Segments()
	if len(segs) != 3 {
		t.Fatalf("len(Segments()) = %d, want 3: %+v", len(segs), segs)
	}
	if segs[0].Text != "<p>copied</p>" {
		t.Errorf("Segments()[0] = %+v", segs[0])
	}
	span, ok := segs[1].Object.(fragment.CitationSpan)
	if !ok || span.Citation.LinkText != "pasted source" {
		t.Errorf("Segments()[1] = %+v, want live citation span", segs[1])
	}

	// the pasted span registers inline
	if _, isInline, found := s.Refs().Get("pasted-1"); !found || !isInline {
		t.Errorf("pasted citation not registered inline: found=%v inline=%v", found, isInline)
	}
}

func TestPasteKeepsExistingPartition(t *testing.T) {
	s := newTestSession(t)
	s.Refs().Add(models.Citation{ID: "bg-1", Title: "already here"}, false)
	s.SetCursor(Position{Segment: 0, Offset: 0})

	reg := fragment.NewRegistry()
	spanMarkup, _ := reg.Render(fragment.CitationSpan{Citation: models.Citation{
		ID:       "bg-1",
		Kind:     models.ReferenceBook,
		LinkText: "dup",
	}})

	if err := s.Paste(spanMarkup); err != nil {
		t.Fatalf("Paste() error = %v", err)
	}

	c, isInline, found := s.Refs().Get("bg-1")
	if !found || isInline {
		t.Errorf("existing citation must keep its partition: inline=%v found=%v", isInline, found)
	}
	if c.Title != "already here" {
		t.Errorf("existing record must not be overwritten: %+v", c)
	}
}

func TestPasteWithoutCursor(t *testing.T) {
	s := newTestSession(t)

	if err := s.Paste(`<p>nope</p>`); err != nil {
		t.Fatalf("Paste() error = %v", err)
	}
	if s.Markup() != "" {
		t.Errorf("paste without a cursor must be a no-op, got %q", s.Markup())
	}
}

func TestPasteNormalizesLinkRel(t *testing.T) {
	s := newTestSession(t)
	s.SetCursor(Position{Segment: 0, Offset: 0})

	if err := s.Paste(`<p><a href="https://a.example" rel="noopener nofollow">a</a><a href="https://b.example" rel="noopener">b</a></p>`); err != nil {
		t.Fatalf("Paste() error = %v", err)
	}

	got := s.Markup()
	if !strings.Contains(got, `<a href="https://a.example" rel="nofollow">a</a>`) {
		t.Errorf("nofollow link not normalized: %s", got)
	}
	if !strings.Contains(got, `<a href="https://b.example">b</a>`) {
		t.Errorf("dofollow link should lose its rel noise: %s", got)
	}
}

func TestHydrateFromRecord(t *testing.T) {
	s := newTestSession(t)

	refs := models.NewReferences()
	refs.Inline["cit-1"] = models.Citation{ID: "cit-1", Title: "inline"}
	refs.Background["cit-2"] = models.Citation{ID: "cit-2", Title: "background"}

	reg := fragment.NewRegistry()
	spanMarkup, _ := reg.Render(fragment.CitationSpan{Citation: models.Citation{
		ID:       "cit-1",
		Kind:     models.ReferenceBook,
		LinkText: "inline ref",
	}})

	record := &models.Article{
		Slug:         "test-article",
		Content:      `<p>body</p>` + spanMarkup,
		Refs:         refs,
		FAQs:         []models.FAQ{{ID: "f1", Question: "q?", Answer: "a"}},
		GeneratedTOC: true,
	}
	if err := s.Hydrate(record); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}

	if s.State() != StateIdle {
		t.Errorf("State() = %q, want idle after hydrate", s.State())
	}
	segs := s.Segments()
	if len(segs) != 2 || !segs[1].IsObject() {
		t.Fatalf("Segments() = %+v", segs)
	}
	if _, isInline, found := s.Refs().Get("cit-2"); !found || isInline {
		t.Errorf("background citation lost on hydrate: found=%v inline=%v", found, isInline)
	}
	if faqs := s.FAQs().List(); len(faqs) != 1 || faqs[0].Question != "q?" {
		t.Errorf("FAQs() = %+v", faqs)
	}
}

func TestSetCursorOutOfRangeClears(t *testing.T) {
	s := newTestSession(t)
	s.SetCursor(Position{Segment: 0, Offset: 0})
	s.InsertText("abc")

	s.SetCursor(Position{Segment: 5, Offset: 0})
	s.InsertText("zzz")

	if s.Markup() != "abc" {
		t.Errorf("out-of-range cursor must clear and ignore inserts, got %q", s.Markup())
	}

	s.SetCursor(Position{Segment: 0, Offset: 99})
	s.InsertText("zzz")
	if s.Markup() != "abc" {
		t.Errorf("out-of-range offset must clear and ignore inserts, got %q", s.Markup())
	}
}

func TestAddBackgroundCitation(t *testing.T) {
	s := newTestSession(t)

	c := s.AddBackgroundCitation(models.Citation{Title: "bibliography only"})

	if c.ID == "" {
		t.Fatal("background citation should get a minted id")
	}
	if _, isInline, found := s.Refs().Get(c.ID); !found || isInline {
		t.Errorf("background citation misplaced: found=%v inline=%v", found, isInline)
	}
	if s.Markup() != "" {
		t.Errorf("background citation must not touch the body, got %q", s.Markup())
	}
}

// fakeArticleService records the last save request and can fail on demand.
type fakeArticleService struct {
	saveErr  error
	lastSave *pubSvc.SaveContentRequest
}

func (f *fakeArticleService) SaveContent(ctx context.Context, req *pubSvc.SaveContentRequest) (*models.Article, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.lastSave = req
	return &models.Article{Slug: req.Slug, Content: req.Content}, nil
}

func (f *fakeArticleService) GetArticle(ctx context.Context, slug string) (*models.Article, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeArticleService) RenderView(ctx context.Context, slug string, opts *pubSvc.ViewOptions) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeArticleService) ExportArticle(ctx context.Context, slug, format string) (string, string, error) {
	return "", "", errors.New("not implemented")
}

func (f *fakeArticleService) ListArticles(ctx context.Context) ([]models.Article, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeArticleService) DeleteArticle(ctx context.Context, slug string) error {
	return errors.New("not implemented")
}

func TestSave(t *testing.T) {
	s := newTestSession(t)
	s.SetCursor(Position{Segment: 0, Offset: 0})
	s.InsertText("<p>draft</p>")
	s.AddBackgroundCitation(models.Citation{Title: "bg"})
	s.AddFAQ("q?", "a")

	svc := &fakeArticleService{}
	record, err := s.Save(context.Background(), svc)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if record.Slug != "test-article" {
		t.Errorf("Slug = %q", record.Slug)
	}
	if s.State() != StateIdle {
		t.Errorf("State() = %q, want idle after save", s.State())
	}
	if svc.lastSave == nil || svc.lastSave.Content != "<p>draft</p>" {
		t.Errorf("save request = %+v", svc.lastSave)
	}
	if len(svc.lastSave.Refs.Background) != 1 || len(svc.lastSave.FAQs) != 1 {
		t.Errorf("side state missing from save request: %+v", svc.lastSave)
	}
}

func TestSaveFailureKeepsState(t *testing.T) {
	s := newTestSession(t)
	s.SetCursor(Position{Segment: 0, Offset: 0})
	s.InsertText("<p>unsaved</p>")

	svc := &fakeArticleService{saveErr: errors.New("database unavailable")}
	if _, err := s.Save(context.Background(), svc); err == nil {
		t.Fatal("Save() expected the persistence error to surface")
	}

	// the author can retry: nothing was discarded
	if s.State() != StateEditing {
		t.Errorf("State() = %q, want editing preserved on failure", s.State())
	}
	if s.Markup() != "<p>unsaved</p>" {
		t.Errorf("Markup() = %q, want draft preserved", s.Markup())
	}
}

func TestFAQLifecycle(t *testing.T) {
	s := newTestSession(t)

	f1 := s.AddFAQ("first?", "one")
	f2 := s.AddFAQ("second?", "two")

	s.UpdateFAQ(models.FAQ{ID: f2.ID, Question: "second?", Answer: "revised"})
	s.DeleteFAQ(f1.ID)

	faqs := s.FAQs().List()
	if len(faqs) != 1 || faqs[0].Answer != "revised" {
		t.Errorf("FAQs() = %+v", faqs)
	}
}
