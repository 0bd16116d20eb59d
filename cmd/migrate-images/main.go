// Command migrate-images moves every image still stored inline in the
// posts table into the image directory. With -enqueue it publishes one
// job per post to RabbitMQ for the server's consumer instead.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/photo-feed/internal/blobstore"
	"github.com/iliyamo/photo-feed/internal/config"
	"github.com/iliyamo/photo-feed/internal/database"
	"github.com/iliyamo/photo-feed/internal/logging"
	"github.com/iliyamo/photo-feed/internal/queue"
	"github.com/iliyamo/photo-feed/internal/repository"
	"github.com/iliyamo/photo-feed/internal/service"
)

func main() {
	os.Exit(migrate())
}

// migrate runs the tool and returns the process exit code.
func migrate() int {
	_ = godotenv.Load()

	cfg := config.Load()
	mc := config.LoadMigrationConfig()

	enqueue := flag.Bool("enqueue", false, "publish migration jobs instead of migrating in-process")
	batch := flag.Int("batch", mc.BatchSize, "rows scanned per page")
	workers := flag.Int("workers", mc.Workers, "concurrent migrations")
	dir := flag.String("dir", cfg.ImageDir, "image directory")
	flag.Parse()

	log := logging.MustLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	posts := repository.NewPostRepo(db)
	resolver := service.NewImageResolver(posts, blobstore.NewFS(*dir), log)
	m := service.NewMigrator(posts, resolver, *batch, *workers, log)

	report, runErr := run(ctx, m, mc, *enqueue)
	if runErr != nil {
		log.Error("migration aborted", zap.Error(runErr))
	}
	log.Info("migration finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("migrated", report.Migrated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", report.Errors))
	_ = json.NewEncoder(os.Stdout).Encode(report)
	if runErr != nil || report.Errors > 0 {
		return 1
	}
	return 0
}

func run(ctx context.Context, m *service.Migrator, mc config.MigrationConfig, enqueue bool) (service.MigrationReport, error) {
	if !enqueue {
		return m.Run(ctx)
	}
	pub, err := queue.DialPublisher(mc.AMQPURL, mc.Queue)
	if err != nil {
		return service.MigrationReport{}, err
	}
	defer pub.Close()
	return m.Enqueue(ctx, pub.PublishImageMigration)
}
