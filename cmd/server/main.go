package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/photo-feed/internal/blobstore"
	"github.com/iliyamo/photo-feed/internal/cache"
	"github.com/iliyamo/photo-feed/internal/config"
	"github.com/iliyamo/photo-feed/internal/database"
	"github.com/iliyamo/photo-feed/internal/handler"
	"github.com/iliyamo/photo-feed/internal/logging"
	"github.com/iliyamo/photo-feed/internal/middleware"
	"github.com/iliyamo/photo-feed/internal/queue"
	"github.com/iliyamo/photo-feed/internal/repository"
	"github.com/iliyamo/photo-feed/internal/router"
	"github.com/iliyamo/photo-feed/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg := config.Load()
	log := logging.MustLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	// Redis backs both the feed cache and the rate limiter. Without it the
	// service keeps running with an always-miss cache and no rate limit.
	rdb := config.NewRedisClient(config.LoadRedisConfig(), cache.MetricsHook{})
	if rdb == nil {
		log.Warn("redis unavailable, feed cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	var feedCache cache.FeedCache = cache.Disabled{}
	if cc := config.LoadFeedCacheConfig(); cc.Enabled && rdb != nil {
		feedCache = cache.NewRedisFeedCache(rdb, log, cc.OpTimeout)
	}

	users := repository.NewUserRepo(db)
	posts := repository.NewPostRepo(db)
	comments := repository.NewCommentRepo(db)
	blobs := blobstore.NewFS(cfg.ImageDir)

	agg := service.NewAggregator(users, comments)
	images := service.NewImageResolver(posts, blobs, log)
	h := router.Handlers{
		Health:   &handler.HealthHandler{DB: db},
		Auth:     handler.NewAuthHandler(cfg, service.NewAuthService(users, cfg.BcryptCost, log)),
		Feed:     &handler.FeedHandler{Feed: service.NewFeedService(posts, users, agg, feedCache, log)},
		Posts:    &handler.PostHandler{Posts: service.NewPostService(posts, blobs, cfg.UploadLimitBytes, log), UploadLimit: cfg.UploadLimitBytes},
		Images:   &handler.ImageHandler{Images: images},
		Comments: &handler.CommentHandler{Comments: service.NewCommentService(comments, users, feedCache, log)},
		Admin:    &handler.AdminHandler{Admin: service.NewAdminService(users, repository.NewMaintenanceRepo(db), feedCache, log)},
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	router.RegisterRoutes(e, h)
	router.RegisterApp(e, h, router.Options{
		SessionSecret: cfg.SessionSecret,
		Users:         users,
		RateLimit:     config.LoadRateLimitConfig(),
		Redis:         rdb,
		Log:           log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if mc := config.LoadMigrationConfig(); mc.ConsumerEnabled {
		go func() {
			err := queue.StartMigrationConsumer(ctx, mc, func(ctx context.Context, postID uint64) error {
				_, err := images.MigratePost(ctx, postID, service.SourceQueue)
				if errors.Is(err, service.ErrNotFound) {
					return nil // post deleted since the job was queued
				}
				return err
			}, log)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("migration consumer stopped", zap.Error(err))
			}
		}()
	}

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}
