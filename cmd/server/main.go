package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/adawatch/drep-radar/internal/cache"
	"github.com/adawatch/drep-radar/internal/config"
	"github.com/adawatch/drep-radar/internal/database"
	apperrors "github.com/adawatch/drep-radar/internal/errors"
	"github.com/adawatch/drep-radar/internal/ingest"
	"github.com/adawatch/drep-radar/internal/monitoring"
	"github.com/adawatch/drep-radar/internal/rankings"
	"github.com/adawatch/drep-radar/internal/ratelimit"
)

func main() {
	appLogger := monitoring.NewLogger()
	slog.SetDefault(appLogger.Logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.NewDB(cfg.DataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	appMetrics := monitoring.NewMetrics()

	responseCache := cache.NewCache(cfg.CacheTTL)
	defer responseCache.Close()
	rankingsService := rankings.NewService(repo, responseCache)

	// Redis is optional; the limiter degrades to in-memory buckets.
	redisClient, err := ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		slog.Warn("Redis unavailable", "error", err)
	}
	defer redisClient.Close()

	limiterConfig := ratelimit.DefaultConfig()
	limiterConfig.IPLimitPerMin = cfg.IPLimitPerMin
	limiter := ratelimit.NewRateLimiter(redisClient, limiterConfig, appMetrics)
	defer limiter.Close()

	server := NewServer(cfg, repo, rankingsService, responseCache, appLogger, appMetrics)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background sync against the chain indexer, then periodic scoring.
	if cfg.IndexerBaseURL != "" {
		syncer := ingest.NewSyncer(ingest.NewClient(cfg.IndexerBaseURL, cfg.IndexerAPIKey), repo, appLogger, appMetrics)
		go runLoop(rootCtx, "ingest sync", cfg.SyncInterval, func(ctx context.Context) error {
			return syncer.Sync(ctx)
		})
	} else {
		slog.Warn("INDEXER_BASE_URL not set, serving from existing data only")
	}
	go runLoop(rootCtx, "scoring pass", cfg.ScoringInterval, server.runScoringPass)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(apperrors.RecoveryHandler())
	r.Use(apperrors.ErrorHandler())
	r.Use(requestLogger(appLogger, appMetrics))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(ratelimit.Middleware(limiter, appMetrics))

	server.Routes(r)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

// runLoop runs the job immediately and then on every tick until the
// context ends.
func runLoop(ctx context.Context, name string, interval time.Duration, job func(context.Context) error) {
	run := func() {
		if err := job(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Background job failed", "job", name, "error", err)
		}
	}
	run()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			run()
		}
	}
}

// requestLogger records request metrics and access logs.
func requestLogger(logger *monitoring.Logger, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.IncrementHTTPRequests()
		logger.RequestLogger(c.Request.Method, c.Request.URL.Path, c.ClientIP(), c.Writer.Status(), time.Since(start))
	}
}
