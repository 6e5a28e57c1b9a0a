package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"pressroom/internal/config"
	models "pressroom/internal/domain/models/publishing"
	"pressroom/internal/repository/postgres"
	postgresPub "pressroom/internal/repository/postgres/publishing"
	servicePub "pressroom/internal/service/publishing"
	"pressroom/internal/service/publishing/editor"
	"pressroom/internal/service/publishing/export"
	"pressroom/internal/service/publishing/fragment"
	"pressroom/internal/service/publishing/pipeline"
	"pressroom/internal/service/publishing/sanitizer"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop the articles table before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo content")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	pub, err := config.LoadPublishing()
	if err != nil {
		log.Fatalf("Failed to load publishing defaults: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		logger.Warn("dropping articles table", "table", tables.Articles)
		if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS `+tables.Articles); err != nil {
			log.Fatalf("Failed to drop table: %v", err)
		}
	}

	if err := setupSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to set up schema: %v", err)
	}
	logger.Info("schema ready", "table", tables.Articles)

	if *schemaOnly {
		return
	}

	articleRepo := postgresPub.NewArticleRepository(&postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	})
	pipe := pipeline.New(pipeline.Options{
		TOCHeadingID: pub.TOC.HeadingID,
		TOCListID:    pub.TOC.ListID,
		TOCTitle:     pub.TOC.Title,
		AdSkipFirst:  pub.Ads.SkipFirst,
		AdInterval:   pub.Ads.Interval,
		AdMaxSlots:   pub.Ads.MaxSlots,
	}, logger)
	articleService := servicePub.NewArticleService(
		articleRepo,
		postgres.NewTransactionManager(pool),
		pipe,
		sanitizer.NewMarkupSanitizer(),
		servicePub.NewContentAnalyzer(),
		export.NewRegistry(),
		pub.Ads,
		logger,
	)

	// Author the demo article the way the editing surface would: text and
	// objects inserted at an explicit cursor, reference and FAQ state
	// accumulating in the session's stores.
	session := editor.NewSession("welcome-to-pressroom", fragment.NewRegistry(), logger)
	session.SetCursor(editor.Position{Segment: 0, Offset: 0})

	session.InsertText(`<h1>Welcome to Pressroom</h1>`)
	session.InsertText(`<p>This demo article exercises the whole authoring surface: headings, embedded objects, citations and a generated table of contents.</p>`)

	session.InsertText(`<h2>Embedded objects</h2><p>Callout cards carry their state as attributes on the markup itself:</p>`)
	session.InsertObject(fragment.Callout{
		Title: "Heads up",
		Body:  "Everything you see here survives copy, paste and reload.",
		Type:  fragment.CalloutInfo,
	})

	session.InsertText(`<h2>Images</h2>`)
	session.InsertObject(fragment.Image{
		Src:         "https://images.example.com/printing-press.jpg",
		Caption:     "A nineteenth-century printing press",
		Alt:         "printing press",
		Attribution: "Public domain",
	})

	session.InsertText(`<h2>Citations</h2><p>Inline sources render as spans that delete atomically: `)
	session.InsertObject(fragment.CitationSpan{Citation: models.Citation{
		Kind:      models.ReferenceBook,
		LinkText:  "Eisenstein 1979",
		FirstName: "elizabeth",
		LastName:  "eisenstein",
		Title:     "the printing press as an agent of change",
		Publisher: "Cambridge University Press",
		Date:      "1979",
	}})
	session.InsertText(`.</p>`)

	session.AddBackgroundCitation(models.Citation{
		Kind:      models.ReferenceWebsite,
		LinkText:  "Go documentation",
		Title:     "the Go programming language",
		URL:       "https://go.dev",
		Date:      "2026-01-15",
		Publisher: "Google",
		Follow:    models.Dofollow,
	})

	session.InsertText(`<h2>Frequently asked</h2><p>Questions live beside the body, not inside it.</p>`)
	session.AddFAQ("Does the table of contents update itself?", "Yes. It is stripped and rebuilt on every save while generation is on.")
	session.AddFAQ("What happens to ad markers?", "They are inserted at read time only; the stored markup never contains them.")

	session.SetGenerateTOC(true)

	article, err := session.Save(ctx, articleService)
	if err != nil {
		log.Fatalf("Failed to save demo article: %v", err)
	}

	logger.Info("demo article seeded",
		"slug", article.Slug,
		"word_count", article.WordCount,
		"inline_refs", len(article.Refs.Inline),
		"background_refs", len(article.Refs.Background),
		"faqs", len(article.FAQs),
	)
}

// setupSchema creates the articles table and its indexes if they do not
// exist. Reference partitions and the FAQ list ride beside the markup as
// JSONB documents.
func setupSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	createArticles := `
		CREATE TABLE IF NOT EXISTS ` + tables.Articles + ` (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			slug TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL,
			refs JSONB NOT NULL DEFAULT '{}'::jsonb,
			faqs JSONB NOT NULL DEFAULT '[]'::jsonb,
			generated_toc BOOLEAN NOT NULL DEFAULT FALSE,
			word_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createArticles); err != nil {
		return err
	}

	index := `CREATE INDEX IF NOT EXISTS idx_` + tables.Articles +
		`_updated_at ON ` + tables.Articles + `(updated_at DESC)`
	if _, err := pool.Exec(ctx, index); err != nil {
		return err
	}
	return nil
}
