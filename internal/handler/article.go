package handler

import (
	"log/slog"
	"net/http"
	"time"

	pubSvc "pressroom/internal/domain/services/publishing"
	"pressroom/internal/httputil"
)

// ArticleHandler handles article HTTP requests
type ArticleHandler struct {
	articleService pubSvc.ArticleService
	logger         *slog.Logger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(articleService pubSvc.ArticleService, logger *slog.Logger) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		logger:         logger,
	}
}

// SaveContent runs the publish/save contract for a slug
// PUT /api/articles/{slug}
func (h *ArticleHandler) SaveContent(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Article slug is required")
		return
	}

	var req pubSvc.SaveContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Slug = slug

	article, err := h.articleService.SaveContent(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, article)
}

// GetArticle retrieves the stored content record
// GET /api/articles/{slug}
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Article slug is required")
		return
	}

	article, err := h.articleService.GetArticle(r.Context(), slug)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, article)
}

// RenderView returns the reader-facing markup with ad markers and section
// wrapping applied
// GET /api/articles/{slug}/view
func (h *ArticleHandler) RenderView(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Article slug is required")
		return
	}

	opts := &pubSvc.ViewOptions{
		SkipFirst: queryInt(r, "skip_first"),
		Interval:  queryInt(r, "interval"),
		MaxAds:    queryInt(r, "max_ads"),
	}

	markup, err := h.articleService.RenderView(r.Context(), slug, opts)
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(markup))
}

// ExportArticle converts the stored markup into an external format
// GET /api/articles/{slug}/export?format=markdown|text
func (h *ArticleHandler) ExportArticle(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Article slug is required")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "markdown"
	}

	content, contentType, err := h.articleService.ExportArticle(r.Context(), slug, format)
	if err != nil {
		handleError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}

// ListArticles retrieves metadata for all content records
// GET /api/articles
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articleService.ListArticles(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, articles)
}

// DeleteArticle removes a content record
// DELETE /api/articles/{slug}
func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		httputil.RespondError(w, http.StatusBadRequest, "Article slug is required")
		return
	}

	if err := h.articleService.DeleteArticle(r.Context(), slug); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint
func (h *ArticleHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
