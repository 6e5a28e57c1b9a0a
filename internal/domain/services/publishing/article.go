package publishing

import (
	"context"

	"pressroom/internal/domain/models/publishing"
)

// ArticleService handles the publish/save contract and read-side views.
type ArticleService interface {
	// SaveContent runs the save-time transformation pipeline over the
	// submitted markup (TOC removal, optional TOC synthesis, normalization)
	// and persists the result together with the reference partitions and
	// FAQ list under the slug, overwriting any prior record.
	//
	// A pipeline failure never blocks the save: the original markup is
	// persisted untransformed and the failure is logged.
	SaveContent(ctx context.Context, req *SaveContentRequest) (*publishing.Article, error)

	// GetArticle retrieves the stored content record by slug. Callers
	// rehydrate reference and FAQ state from the returned record directly,
	// not by re-parsing the markup.
	GetArticle(ctx context.Context, slug string) (*publishing.Article, error)

	// RenderView returns the stored markup with the read-time transforms
	// applied: ad-marker interval insertion and section wrapping.
	RenderView(ctx context.Context, slug string, opts *ViewOptions) (string, error)

	// ExportArticle converts the stored markup into the requested format
	// (markdown, text). Returns the converted content and its MIME type.
	ExportArticle(ctx context.Context, slug, format string) (content, contentType string, err error)

	// ListArticles retrieves metadata for all content records
	ListArticles(ctx context.Context) ([]publishing.Article, error)

	// DeleteArticle removes a content record by slug
	DeleteArticle(ctx context.Context, slug string) error
}

// SaveContentRequest is the single write operation accepted by the
// persistence boundary.
type SaveContentRequest struct {
	Slug        string                `json:"slug"`
	Content     string                `json:"content"`
	GenerateTOC bool                  `json:"generate_toc"`
	Refs        publishing.References `json:"refs"`
	FAQs        []publishing.FAQ      `json:"faqs"`
}

// ViewOptions controls read-time ad-marker placement. Nil fields fall back
// to the configured publishing defaults.
type ViewOptions struct {
	SkipFirst *int `json:"skip_first,omitempty"` // headings skipped before the first marker
	Interval  *int `json:"interval,omitempty"`   // insert after every Nth subsequent heading
	MaxAds    *int `json:"max_ads,omitempty"`    // upper bound on inserted markers
}

// ContentAnalyzer derives metrics from article markup.
type ContentAnalyzer interface {
	// CountWords counts words in the markup's text content
	CountWords(markup string) int

	// ExtractText strips markup and returns plain text content
	ExtractText(markup string) string
}

// Exporter converts stored article markup into an external format.
// Each exporter handles one output format (markdown, plain text).
//
// Implementations should be stateless and thread-safe.
type Exporter interface {
	// Export transforms article markup into the target format.
	// Returns an error if conversion fails.
	Export(ctx context.Context, markup string) (string, error)

	// Format returns the format key used for registry lookup (e.g. "markdown").
	Format() string

	// ContentType returns the MIME type for HTTP responses.
	ContentType() string
}
