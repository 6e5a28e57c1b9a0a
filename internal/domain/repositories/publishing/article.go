package publishing

import (
	"context"

	"pressroom/internal/domain/models/publishing"
)

// ArticleRepository defines data access operations for content records.
type ArticleRepository interface {
	// Upsert creates the record on first publish and overwrites it on every
	// subsequent save. Last write wins; ordering is not enforced here.
	Upsert(ctx context.Context, article *publishing.Article) error

	// GetBySlug retrieves a content record by slug
	GetBySlug(ctx context.Context, slug string) (*publishing.Article, error)

	// ListMetadata retrieves all records without content, refs or FAQs
	ListMetadata(ctx context.Context) ([]publishing.Article, error)

	// Delete removes a content record by slug
	Delete(ctx context.Context, slug string) error
}
