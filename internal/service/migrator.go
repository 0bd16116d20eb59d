package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/photo-feed/internal/model"
)

type imageScanner interface {
	ScanImages(ctx context.Context, afterID uint64, limit int) ([]model.ImageEntry, error)
}

type postMigrator interface {
	MigratePost(ctx context.Context, postID uint64, src MigrationSource) (bool, error)
}

// MigrationReport summarizes a batch run.
type MigrationReport struct {
	Scanned  int `json:"scanned"`
	Migrated int `json:"migrated"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// Migrator walks every post in id order and migrates (or enqueues) the
// ones still holding inline image bytes. It can run while the server is
// serving images: both sides perform the same idempotent transition.
type Migrator struct {
	scanner   imageScanner
	migrator  postMigrator
	batchSize int
	workers   int
	log       *zap.Logger
}

func NewMigrator(scanner imageScanner, m postMigrator, batchSize, workers int, log *zap.Logger) *Migrator {
	if batchSize < 1 {
		batchSize = 100
	}
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Migrator{scanner: scanner, migrator: m, batchSize: batchSize, workers: workers, log: log}
}

// Run migrates every inline image in-process. Per-post failures are
// counted and logged; only a failing scan aborts the run.
func (m *Migrator) Run(ctx context.Context) (MigrationReport, error) {
	return m.walk(ctx, func(ctx context.Context, e model.ImageEntry) (bool, error) {
		return m.migrator.MigratePost(ctx, e.PostID, SourceBatch)
	})
}

// Enqueue hands every inline image to publish instead of migrating it.
func (m *Migrator) Enqueue(ctx context.Context, publish func(ctx context.Context, postID uint64) error) (MigrationReport, error) {
	return m.walk(ctx, func(ctx context.Context, e model.ImageEntry) (bool, error) {
		if err := publish(ctx, e.PostID); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (m *Migrator) walk(ctx context.Context, handle func(context.Context, model.ImageEntry) (bool, error)) (MigrationReport, error) {
	var (
		report            MigrationReport
		migrated, errs    atomic.Int64
		skippedInPipeline atomic.Int64
		after             uint64
	)
	finish := func() MigrationReport {
		report.Migrated = int(migrated.Load())
		report.Errors = int(errs.Load())
		report.Skipped += int(skippedInPipeline.Load())
		return report
	}

	for {
		if err := ctx.Err(); err != nil {
			return finish(), err
		}
		page, err := m.scanner.ScanImages(ctx, after, m.batchSize)
		if err != nil {
			return finish(), fmt.Errorf("scan images after %d: %w", after, err)
		}
		if len(page) == 0 {
			return finish(), nil
		}

		var g errgroup.Group
		g.SetLimit(m.workers)
		for _, e := range page {
			report.Scanned++
			if e.Kind == model.ImageReferenced {
				report.Skipped++
				continue
			}
			e := e
			g.Go(func() error {
				done, err := handle(ctx, e)
				switch {
				case err != nil:
					errs.Add(1)
					m.log.Warn("image migration failed", zap.Uint64("post_id", e.PostID), zap.Error(err))
				case done:
					migrated.Add(1)
				default:
					// migrated concurrently since the scan
					skippedInPipeline.Add(1)
				}
				return nil
			})
		}
		_ = g.Wait()

		after = page[len(page)-1].PostID
		m.log.Info("migration progress",
			zap.Uint64("last_id", after),
			zap.Int("scanned", report.Scanned),
			zap.Int64("migrated", migrated.Load()),
			zap.Int64("errors", errs.Load()))
		if len(page) < m.batchSize {
			return finish(), nil
		}
	}
}
