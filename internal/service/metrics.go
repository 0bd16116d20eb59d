package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MigrationSource labels what triggered an image migration.
type MigrationSource string

const (
	SourceLazy  MigrationSource = "lazy"
	SourceBatch MigrationSource = "batch"
	SourceQueue MigrationSource = "queue"
)

var imageMigrations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "photofeed_image_migrations_total",
	Help: "Inline image to file migrations by source and result.",
}, []string{"source", "result"})

func recordMigration(src MigrationSource, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	imageMigrations.WithLabelValues(string(src), result).Inc()
}
