package fragment

import (
	"reflect"
	"strings"
	"testing"

	"pressroom/internal/domain/models/publishing"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
	}{
		{
			name: "callout with all fields",
			obj:  Callout{Title: "Heads up", Body: "Read the docs first.", Type: CalloutWarning},
		},
		{
			name: "callout zero value",
			obj:  Callout{},
		},
		{
			name: "callout with markup in body",
			obj:  Callout{Title: `a "quoted" <title>`, Body: "1 < 2 && 3 > 2", Type: CalloutInfo},
		},
		{
			name: "image with all fields",
			obj: Image{
				Src:         "https://cdn.example.com/a.png",
				Caption:     "A caption",
				Alt:         "alt text",
				Attribution: "Photo by Someone",
			},
		},
		{
			name: "image without caption",
			obj:  Image{Src: "/img/b.jpg", Alt: "b"},
		},
		{
			name: "citation span",
			obj: CitationSpan{Citation: publishing.Citation{
				ID:        "cit-1",
				Kind:      publishing.ReferenceBook,
				LinkText:  "Doe 2020",
				FirstName: "john",
				LastName:  "doe",
				Title:     "the book",
				Publisher: "Acme",
				Date:      "2020-01-01",
				Follow:    publishing.Nofollow,
			}},
		},
		{
			name: "citation span journal fields",
			obj: CitationSpan{Citation: publishing.Citation{
				ID:       "cit-2",
				Kind:     publishing.ReferenceJournal,
				LinkText: "Lovelace",
				Journal:  "Scientific Memoirs",
				Volume:   "3",
				Issue:    "1",
				Pages:    "666-731",
				DOI:      "10.1000/xyz",
			}},
		},
	}

	reg := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			markup, err := reg.Render(tt.obj)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}

			got, err := reg.ParseString(markup)
			if err != nil {
				t.Fatalf("ParseString() error = %v\nmarkup: %s", err, markup)
			}
			if !reflect.DeepEqual(got, tt.obj) {
				t.Errorf("round trip mismatch\n got: %#v\nwant: %#v\nmarkup: %s", got, tt.obj, markup)
			}
		})
	}
}

func TestRenderAttributesOnWrapper(t *testing.T) {
	reg := NewRegistry()
	markup, err := reg.Render(Callout{Title: "T", Body: "B", Type: CalloutError})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{
		`data-fragment="callout"`,
		`data-type="error"`,
		`data-title="T"`,
		`data-body="B"`,
	} {
		if !strings.Contains(markup, want) {
			t.Errorf("markup missing %s: %s", want, markup)
		}
	}
	// the glyph is derived presentation, never a stored attribute
	if strings.Contains(markup, `data-glyph`) {
		t.Errorf("glyph must not be persisted: %s", markup)
	}
	if !strings.Contains(markup, "✕") {
		t.Errorf("error callout should render its glyph: %s", markup)
	}
}

func TestCitationSpanLinkText(t *testing.T) {
	reg := NewRegistry()
	span := CitationSpan{Citation: publishing.Citation{
		ID:       "c1",
		Kind:     publishing.ReferenceWebsite,
		LinkText: "see <source>",
	}}
	markup, err := reg.Render(span)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(markup, "see &lt;source&gt;") {
		t.Errorf("link text should be escaped in markup: %s", markup)
	}

	got, err := reg.ParseString(markup)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if got.(CitationSpan).Citation.LinkText != "see <source>" {
		t.Errorf("LinkText = %q, want %q", got.(CitationSpan).Citation.LinkText, "see <source>")
	}
}

func TestRecognize(t *testing.T) {
	reg := NewRegistry()

	nodes, err := ParseBodyFragment(`<p>plain</p><div data-fragment="callout" data-type="info"></div><div data-fragment="poll"></div>`)
	if err != nil {
		t.Fatalf("ParseBodyFragment() error = %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("len(nodes) = %d, want 3", len(nodes))
	}

	if kind, ok := reg.Recognize(nodes[0]); ok {
		t.Errorf("plain paragraph recognized as %q", kind)
	}
	kind, ok := reg.Recognize(nodes[1])
	if !ok || kind != KindCallout {
		t.Errorf("Recognize(callout) = %q, %v", kind, ok)
	}
	if _, ok := reg.Recognize(nodes[2]); ok {
		t.Error("unregistered kind tag should not be recognized")
	}
}

func TestClassifyLink(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   publishing.FollowPolicy
	}{
		{"no rel", `<a href="https://example.com">x</a>`, publishing.Dofollow},
		{"nofollow", `<a href="https://example.com" rel="nofollow">x</a>`, publishing.Nofollow},
		{"nofollow among tokens", `<a href="#" rel="noopener nofollow noreferrer">x</a>`, publishing.Nofollow},
		{"unrelated rel", `<a href="#" rel="noopener">x</a>`, publishing.Dofollow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := ParseBodyFragment(tt.markup)
			if err != nil {
				t.Fatalf("ParseBodyFragment() error = %v", err)
			}
			if got := ClassifyLink(nodes[0]); got != tt.want {
				t.Errorf("ClassifyLink() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderLink(t *testing.T) {
	got := RenderLink("https://example.com", "Example", publishing.Nofollow)
	want := `<a href="https://example.com" rel="nofollow">Example</a>`
	if got != want {
		t.Errorf("RenderLink() = %q, want %q", got, want)
	}

	got = RenderLink("https://example.com", "Example", publishing.Dofollow)
	if strings.Contains(got, "nofollow") {
		t.Errorf("dofollow link must not carry the crawler attribute: %q", got)
	}
}
