package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/curingwithcare/care-site/internal/api"
	"github.com/curingwithcare/care-site/internal/config"
	"github.com/curingwithcare/care-site/internal/content"
	"github.com/curingwithcare/care-site/internal/db"
	"github.com/curingwithcare/care-site/internal/logging"
	"github.com/curingwithcare/care-site/internal/site"
	"github.com/curingwithcare/care-site/internal/storage"
	"github.com/curingwithcare/care-site/internal/web"
	"github.com/gin-gonic/gin"
)

func main() {
	defer logging.Sync()

	// Load environment variables from .env file if it exists
	if !config.LoadDotEnv() {
		logging.LogKV("info", "No .env file found, using environment variables", nil)
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		logging.LogKV("warn", "config load incomplete", map[string]interface{}{"error": err})
	}

	logging.LogKV("info", "care-site starting", map[string]interface{}{
		"git_sha":    os.Getenv("GIT_SHA"),
		"build_time": os.Getenv("BUILD_TIME"),
		"port":       cfg.Port,
	})

	source, closeSource := openSource(ctx, cfg)
	defer closeSource()

	lister, err := storage.NewS3Lister(ctx, storage.S3Options{
		Bucket:          cfg.Bucket,
		Region:          cfg.AWSRegion,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretKey,
	})
	if err != nil {
		// listings fail per card; pages still render
		logging.LogKV("warn", "storage lister unavailable", map[string]interface{}{"error": err})
		lister = &storage.S3Lister{}
	}
	cache := storage.NewCachedLister(lister, cfg.ListingCacheTTL)

	copyText, err := content.Load(cfg.ContentPath)
	if err != nil {
		logging.LogKV("error", "content load failed, using embedded copy", map[string]interface{}{"error": err})
		copyText = content.Default()
	}

	s := site.New(site.Options{
		Records:      db.NewRecords(source),
		Resolver:     storage.NewResolver(cfg.SupabaseURL, cfg.Bucket),
		Images:       cache,
		Content:      copyText,
		FeaturedCity: cfg.FeaturedCity,
	})
	renderer, err := web.NewRenderer()
	if err != nil {
		logging.LogKV("error", "template parse failed", map[string]interface{}{"error": err})
		os.Exit(1)
	}

	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(cfg.GinMode)
	}
	router := api.NewRouter(api.NewHandler(s, renderer, cache), api.RouterOptions{
		JWTSecret:   cfg.JWTSecret,
		AllowOrigin: cfg.EditorOrigin,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.LogKV("info", "Starting server", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.LogKV("error", "Failed to start server", map[string]interface{}{"error": err})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.LogKV("info", "Shutting down server...", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogKV("error", "graceful shutdown failed", map[string]interface{}{"error": err})
	}
}

// openSource connects to Postgres when a DSN is configured and falls back to
// the fixture data otherwise. A failed connection is not fatal: the process
// still starts so /live answers and /ready reports the outage.
func openSource(ctx context.Context, cfg config.Config) (db.Source, func()) {
	if cfg.DatabaseURL == "" {
		store, err := db.LoadFixtureStore(cfg.FixturesPath)
		if err != nil {
			logging.LogKV("error", "fixture load failed", map[string]interface{}{"error": err})
			os.Exit(1)
		}
		logging.LogKV("warn", "No database configuration; serving fixture data", map[string]interface{}{"fixtures": cfg.FixturesPath})
		return store, func() {}
	}

	database, err := db.NewDatabaseWithRetry(ctx, cfg.DatabaseURL, 5, 2*time.Second)
	if err != nil {
		logging.LogKV("warn", "Database initialization failed at startup", map[string]interface{}{"error": err})
		return &db.Database{}, func() {}
	}
	return database, database.Close
}
