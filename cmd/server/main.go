package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"pressroom/internal/config"
	"pressroom/internal/handler"
	"pressroom/internal/middleware"
	"pressroom/internal/repository/postgres"
	postgresPub "pressroom/internal/repository/postgres/publishing"
	servicePub "pressroom/internal/service/publishing"
	"pressroom/internal/service/publishing/export"
	"pressroom/internal/service/publishing/pipeline"
	"pressroom/internal/service/publishing/sanitizer"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logWriter := io.Writer(os.Stdout)
	if dir := os.Getenv("LOG_DIR"); dir != "" {
		logFile, err := config.SetupLogFile(dir, 5)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logWriter = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Publishing defaults (TOC identifiers, ad placement)
	pub, err := config.LoadPublishing()
	if err != nil {
		log.Fatalf("Failed to load publishing defaults: %v", err)
	}

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	articleRepo := postgresPub.NewArticleRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Create the content transformation pipeline and its collaborators
	pipe := pipeline.New(pipeline.Options{
		TOCHeadingID: pub.TOC.HeadingID,
		TOCListID:    pub.TOC.ListID,
		TOCTitle:     pub.TOC.Title,
		AdSkipFirst:  pub.Ads.SkipFirst,
		AdInterval:   pub.Ads.Interval,
		AdMaxSlots:   pub.Ads.MaxSlots,
	}, logger)
	markupSanitizer := sanitizer.NewMarkupSanitizer()
	contentAnalyzer := servicePub.NewContentAnalyzer()
	exporterRegistry := export.NewRegistry()

	articleService := servicePub.NewArticleService(
		articleRepo,
		txManager,
		pipe,
		markupSanitizer,
		contentAnalyzer,
		exporterRegistry,
		pub.Ads,
		logger,
	)

	articleHandler := handler.NewArticleHandler(articleService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", articleHandler.HealthCheck)

	// Article routes
	mux.HandleFunc("GET /api/articles", articleHandler.ListArticles)
	mux.HandleFunc("PUT /api/articles/{slug}", articleHandler.SaveContent)
	mux.HandleFunc("GET /api/articles/{slug}", articleHandler.GetArticle)
	mux.HandleFunc("DELETE /api/articles/{slug}", articleHandler.DeleteArticle)
	mux.HandleFunc("GET /api/articles/{slug}/view", articleHandler.RenderView)
	mux.HandleFunc("GET /api/articles/{slug}/export", articleHandler.ExportArticle)

	// Build middleware chain
	var httpHandler http.Handler = mux
	httpHandler = middleware.Recovery(logger)(httpHandler)

	// CORS - handles OPTIONS pre-flight requests before anything else
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
