// Package main is the entry point for the StandPress cover editor server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"standpress/internal/cache"
	"standpress/internal/config"
	"standpress/internal/database"
	"standpress/internal/export"
	"standpress/internal/handlers"
	"standpress/internal/logging"
	"standpress/internal/middleware"
	"standpress/internal/router"
	"standpress/internal/session"
	"standpress/internal/storage"
	"standpress/internal/store"
	"standpress/internal/variables"
)

func main() {
	// Load configuration from defaults, standpress.yaml and the environment.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON otherwise.
	logCloser := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Dev:    cfg.IsDev(),
	})
	defer logCloser.Close()

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the shared design templates in development (no-op if present).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (sessions, editor drafts and rendered PDFs).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Sessions are issued by the back-office login service.
	sessionStore := session.NewStore(valkeyClient, session.DefaultTTL)

	// Development has no login service, so hand out a session to call the
	// API with (X-Session-ID header or sp_session cookie).
	if cfg.IsDev() {
		devSession := &session.Data{UserID: uuid.New(), TenantID: uuid.New(), Email: "dev@standpress.local", Role: "sales"}
		id, err := sessionStore.Issue(context.Background(), devSession)
		if err != nil {
			slog.Error("failed to issue development session", "error", err)
			os.Exit(1)
		}
		slog.Info("development session issued", "session_id", id, "tenant_id", devSession.TenantID)
	}

	locale, ok := variables.ParseLocale(cfg.DefaultLocale)
	if !ok {
		slog.Warn("unsupported default locale, using fallback", "locale", cfg.DefaultLocale, "fallback", locale)
	}

	deps := handlers.Deps{
		Templates:     store.NewDesignTemplateStore(db),
		Designs:       store.NewCoverDesignStore(db),
		Proposals:     store.NewProposalStore(db),
		Drafts:        cache.NewDraftStore(valkeyClient, time.Duration(cfg.DraftTTLMinutes)*time.Minute),
		Renders:       cache.NewRenderCache(valkeyClient, time.Duration(cfg.RenderTTLMinutes)*time.Minute),
		DefaultLocale: locale,
	}

	// Connect to S3-compatible object storage (optional; backgrounds fall
	// back to inline data URIs without it).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	var objects export.ObjectReader
	if storageClient != nil {
		deps.Objects = storageClient
		objects = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, library uploads disabled")
	}

	deps.Renderer = export.NewRenderer(export.NewSourceLoader(objects, cfg.ImageHosts()...), cfg.PDFFont)

	origins := cfg.AllowedOrigins()
	api := handlers.NewAPI(deps, origins)

	// A zero limit disables upload rate limiting.
	var uploadLimiter *middleware.RateLimiter
	if cfg.UploadRateLimit > 0 {
		uploadLimiter = middleware.NewRateLimiter(cfg.UploadRateLimit, time.Duration(cfg.UploadRateWindow)*time.Second)
		defer uploadLimiter.Stop()
	}

	r := router.New(sessionStore, api, origins, uploadLimiter)

	// WriteTimeout must accommodate PDF rendering with remote images. Editor
	// websockets are hijacked and not bound by it.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
