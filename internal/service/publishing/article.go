package publishing

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"pressroom/internal/config"
	"pressroom/internal/domain"
	models "pressroom/internal/domain/models/publishing"
	"pressroom/internal/domain/repositories"
	pubRepo "pressroom/internal/domain/repositories/publishing"
	pubSvc "pressroom/internal/domain/services/publishing"
	"pressroom/internal/service/publishing/export"
	"pressroom/internal/service/publishing/pipeline"
	"pressroom/internal/service/publishing/sanitizer"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// articleService implements the ArticleService interface: the persistence
// boundary's save contract plus the read-side views.
type articleService struct {
	repo      pubRepo.ArticleRepository
	txManager repositories.TransactionManager
	pipe      *pipeline.Pipeline
	sanitizer *sanitizer.MarkupSanitizer
	analyzer  pubSvc.ContentAnalyzer
	exporters *export.Registry
	ads       config.AdSettings
	logger    *slog.Logger
}

// NewArticleService creates a new article service.
func NewArticleService(
	repo pubRepo.ArticleRepository,
	txManager repositories.TransactionManager,
	pipe *pipeline.Pipeline,
	san *sanitizer.MarkupSanitizer,
	analyzer pubSvc.ContentAnalyzer,
	exporters *export.Registry,
	ads config.AdSettings,
	logger *slog.Logger,
) pubSvc.ArticleService {
	return &articleService{
		repo:      repo,
		txManager: txManager,
		pipe:      pipe,
		sanitizer: san,
		analyzer:  analyzer,
		exporters: exporters,
		ads:       ads,
		logger:    logger,
	}
}

// SaveContent sanitizes the submitted markup, runs the save-time pipeline
// (TOC removal, flag-gated TOC synthesis, normalization) and persists the
// result with the reference partitions and FAQ list under the slug. The
// pipeline fails closed, so a cosmetic transform failure never blocks the
// save.
func (s *articleService) SaveContent(ctx context.Context, req *pubSvc.SaveContentRequest) (*models.Article, error) {
	if err := validateSaveContent(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	refs := normalizeReferences(req.Refs)

	content := s.sanitizer.Sanitize(req.Content)
	content = s.pipe.SavePass(content, req.GenerateTOC)

	now := time.Now().UTC()
	article := &models.Article{
		Slug:         req.Slug,
		Content:      content,
		Refs:         refs,
		FAQs:         req.FAQs,
		GeneratedTOC: req.GenerateTOC,
		WordCount:    s.analyzer.CountWords(content),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if article.FAQs == nil {
		article.FAQs = []models.FAQ{}
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.repo.Upsert(txCtx, article)
	})
	if err != nil {
		return nil, fmt.Errorf("save content %q: %w", req.Slug, err)
	}

	s.logger.Info("content saved",
		"slug", article.Slug,
		"word_count", article.WordCount,
		"generated_toc", article.GeneratedTOC,
		"inline_refs", len(refs.Inline),
		"background_refs", len(refs.Background),
		"faqs", len(article.FAQs),
	)
	return article, nil
}

// GetArticle retrieves the stored content record by slug.
func (s *articleService) GetArticle(ctx context.Context, slug string) (*models.Article, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// RenderView applies the read-time transforms over the stored markup:
// ad-marker interval insertion, then heading-based section wrapping.
// Unset options fall back to the configured defaults.
func (s *articleService) RenderView(ctx context.Context, slug string, opts *pubSvc.ViewOptions) (string, error) {
	article, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return "", err
	}

	skipFirst, interval, maxAds := s.ads.SkipFirst, s.ads.Interval, s.ads.MaxSlots
	if opts != nil {
		if opts.SkipFirst != nil {
			skipFirst = *opts.SkipFirst
		}
		if opts.Interval != nil {
			interval = *opts.Interval
		}
		if opts.MaxAds != nil {
			maxAds = *opts.MaxAds
		}
	}

	markup := s.pipe.InsertAdMarkers(article.Content, skipFirst, interval, maxAds)
	return s.pipe.WrapSections(markup), nil
}

// ExportArticle converts the stored markup into the requested format.
func (s *articleService) ExportArticle(ctx context.Context, slug, format string) (string, string, error) {
	article, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return "", "", err
	}

	exporter := s.exporters.Get(format)
	if exporter == nil {
		return "", "", fmt.Errorf("%w: unsupported export format %q", domain.ErrValidation, format)
	}

	out, err := exporter.Export(ctx, article.Content)
	if err != nil {
		return "", "", fmt.Errorf("export %q as %s: %w", slug, format, err)
	}
	return out, exporter.ContentType(), nil
}

// ListArticles retrieves metadata for all content records.
func (s *articleService) ListArticles(ctx context.Context) ([]models.Article, error) {
	return s.repo.ListMetadata(ctx)
}

// DeleteArticle removes a content record by slug.
func (s *articleService) DeleteArticle(ctx context.Context, slug string) error {
	return s.repo.Delete(ctx, slug)
}

// validateSaveContent checks the save contract's inputs.
func validateSaveContent(req *pubSvc.SaveContentRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Slug,
			validation.Required,
			validation.Length(1, 200),
			validation.Match(slugPattern).Error("slug must be lowercase letters, digits and hyphens"),
		),
		validation.Field(&req.Content, validation.Required),
	)
}

// normalizeReferences restores the single-partition invariant on incoming
// state: nil maps become empty and an id present in both partitions keeps
// only its inline copy.
func normalizeReferences(in models.References) models.References {
	refs := models.NewReferences()
	for id, c := range in.Inline {
		refs.Inline[id] = c
	}
	for id, c := range in.Background {
		if _, dup := refs.Inline[id]; dup {
			continue
		}
		refs.Background[id] = c
	}
	return refs
}
