package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/config"
	"github.com/AnshRaj112/travel-journal-backend/internal/database"
	"github.com/AnshRaj112/travel-journal-backend/internal/handlers"
	"github.com/AnshRaj112/travel-journal-backend/internal/logger"
	"github.com/AnshRaj112/travel-journal-backend/internal/middleware"
	"github.com/AnshRaj112/travel-journal-backend/internal/repository"
	"github.com/AnshRaj112/travel-journal-backend/internal/routes"
	"github.com/AnshRaj112/travel-journal-backend/internal/services"
	"github.com/AnshRaj112/travel-journal-backend/web"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Environment, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	os.Exit(exitCode(zlog, run(cfg, zlog)))
}

// exitCode logs how run ended and flushes the logger, since os.Exit skips
// deferred calls.
func exitCode(zlog *zap.Logger, err error) int {
	code := 0
	if err != nil {
		zlog.Error("server stopped", zap.Error(err))
		code = 1
	}
	zlog.Sync()
	return code
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	zlog.Info("starting travel journal backend", zap.Stringer("config", cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database: PostgreSQL first, SQLite when it is unreachable or USE_SQLITE is set.
	primary := database.NewPostgres(database.PostgresOptions{
		Host:           cfg.DB.Host,
		Port:           cfg.DB.Port,
		User:           cfg.DB.User,
		Password:       cfg.DB.Password,
		Database:       cfg.DB.Name,
		SSLMode:        cfg.DB.SSLMode,
		ConnectTimeout: cfg.DB.ConnectTimeout,
		MaxOpenConns:   cfg.DB.MaxOpenConns,
	})
	fallback := database.NewSQLite(cfg.SQLite.Path)
	db := database.NewAdapter(primary, fallback, database.NewActiveEngine(cfg.SQLite.Force), database.Options{
		ConnectTimeout: cfg.DB.ConnectTimeout,
		Logger:         zlog,
	})
	defer func() {
		if err := db.Close(); err != nil {
			zlog.Warn("closing database handles", zap.Error(err))
		}
	}()

	db.InitSchema(ctx)

	repo := repository.NewRepository(db, zlog, cfg.DB.QueryTimeout)

	// Photo uploads are optional.
	var uploader handlers.PhotoUploader
	if cfg.UploadsEnabled() {
		cld, err := services.NewCloudinaryService(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey,
			cfg.Cloudinary.APISecret, cfg.Cloudinary.Folder)
		if err != nil {
			zlog.Warn("cloudinary unavailable, photo uploads disabled", zap.Error(err))
		} else {
			uploader = cld
			zlog.Info("cloudinary service initialized")
		}
	} else {
		zlog.Info("cloudinary credentials not found, photo uploads disabled")
	}

	// API rate limiting: Redis fixed window when configured, otherwise per-IP token buckets.
	var apiMiddleware []func(http.Handler) http.Handler
	if cfg.Limiter.Enabled {
		limiter := middleware.RateLimit(cfg.Limiter.RPS, cfg.Limiter.Burst)
		if cfg.RedisURI != "" {
			client, err := database.ConnectRedis(ctx, cfg.RedisURI)
			if err != nil {
				zlog.Warn("redis unavailable, using in-memory rate limiter", zap.Error(err))
			} else {
				defer client.Close()
				limiter = middleware.RedisRateLimit(client, cfg.Limiter.Window, cfg.Limiter.MaxRequests, zlog)
				zlog.Info("redis rate limiter enabled")
			}
		}
		apiMiddleware = append(apiMiddleware, limiter)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(zlog))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost()) {
			r.Use(mw)
		}
		zlog.Info("production security enabled")
	}

	routes.SetupRoutes(r, routes.Handlers{
		Entries:       handlers.NewEntryHandler(repo.Entries, zlog),
		Uploads:       handlers.NewUploadHandler(uploader, zlog),
		Pages:         handlers.NewPageHandler(web.Templates(), web.Static()),
		Health:        handlers.Health(db),
		APIMiddleware: apiMiddleware,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
