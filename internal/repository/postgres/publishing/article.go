package publishing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"pressroom/internal/domain"
	models "pressroom/internal/domain/models/publishing"
	pubRepo "pressroom/internal/domain/repositories/publishing"
	"pressroom/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresArticleRepository implements the ArticleRepository interface.
// Reference partitions and FAQ lists are stored as JSONB side-columns next
// to the markup blob.
type PostgresArticleRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
	logger *slog.Logger
}

// NewArticleRepository creates a new article repository
func NewArticleRepository(config *postgres.RepositoryConfig) pubRepo.ArticleRepository {
	return &PostgresArticleRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Upsert creates the record on first publish and overwrites it on every
// subsequent save. Last write wins at the database.
func (r *PostgresArticleRepository) Upsert(ctx context.Context, article *models.Article) error {
	refs, err := json.Marshal(article.Refs)
	if err != nil {
		return fmt.Errorf("marshal refs: %w", err)
	}
	faqs, err := json.Marshal(article.FAQs)
	if err != nil {
		return fmt.Errorf("marshal faqs: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (slug, content, refs, faqs, generated_toc, word_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (slug) DO UPDATE SET
			content = EXCLUDED.content,
			refs = EXCLUDED.refs,
			faqs = EXCLUDED.faqs,
			generated_toc = EXCLUDED.generated_toc,
			word_count = EXCLUDED.word_count,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`, r.tables.Articles)

	executor := postgres.GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		article.Slug,
		article.Content,
		refs,
		faqs,
		article.GeneratedTOC,
		article.WordCount,
		article.CreatedAt,
		article.UpdatedAt,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)

	if err != nil {
		return upsertError(article.Slug, err)
	}
	return nil
}

// upsertError maps driver failures to domain errors. The slug column is
// upserted in place, so a unique violation here means a concurrent writer
// raced this save on another key; the caller sees it as a conflict rather
// than an opaque server error.
func upsertError(slug string, err error) error {
	if postgres.IsPgDuplicateError(err) {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("article %s already exists", slug),
			ResourceType: "article",
			ResourceID:   slug,
		}
	}
	return fmt.Errorf("upsert article: %w", err)
}

// GetBySlug retrieves a content record by slug
func (r *PostgresArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	query := fmt.Sprintf(`
		SELECT id, slug, content, refs, faqs, generated_toc, word_count, created_at, updated_at
		FROM %s
		WHERE slug = $1
	`, r.tables.Articles)

	var article models.Article
	var refs, faqs []byte

	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, slug).Scan(
		&article.ID,
		&article.Slug,
		&article.Content,
		&refs,
		&faqs,
		&article.GeneratedTOC,
		&article.WordCount,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("article %s: %w", slug, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get article: %w", err)
	}

	if err := json.Unmarshal(refs, &article.Refs); err != nil {
		return nil, fmt.Errorf("unmarshal refs for %s: %w", slug, err)
	}
	if article.Refs.Inline == nil || article.Refs.Background == nil {
		normalized := models.NewReferences()
		for id, c := range article.Refs.Inline {
			normalized.Inline[id] = c
		}
		for id, c := range article.Refs.Background {
			normalized.Background[id] = c
		}
		article.Refs = normalized
	}
	if err := json.Unmarshal(faqs, &article.FAQs); err != nil {
		return nil, fmt.Errorf("unmarshal faqs for %s: %w", slug, err)
	}
	if article.FAQs == nil {
		article.FAQs = []models.FAQ{}
	}

	return &article, nil
}

// ListMetadata retrieves all records without content, refs or FAQs
func (r *PostgresArticleRepository) ListMetadata(ctx context.Context) ([]models.Article, error) {
	query := fmt.Sprintf(`
		SELECT id, slug, generated_toc, word_count, created_at, updated_at
		FROM %s
		ORDER BY updated_at DESC
	`, r.tables.Articles)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		var article models.Article
		if err := rows.Scan(
			&article.ID,
			&article.Slug,
			&article.GeneratedTOC,
			&article.WordCount,
			&article.CreatedAt,
			&article.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}

	return articles, nil
}

// Delete removes a content record by slug
func (r *PostgresArticleRepository) Delete(ctx context.Context, slug string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE slug = $1`, r.tables.Articles)

	executor := postgres.GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, slug)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("article %s: %w", slug, domain.ErrNotFound)
	}
	return nil
}
