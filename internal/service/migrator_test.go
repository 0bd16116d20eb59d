package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/photo-feed/internal/model"
)

type scannerStub struct {
	entries []model.ImageEntry
	err     error
	calls   int
}

func (s *scannerStub) ScanImages(_ context.Context, afterID uint64, limit int) ([]model.ImageEntry, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []model.ImageEntry
	for _, e := range s.entries {
		if e.PostID > afterID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

type migratorStub struct {
	mu   sync.Mutex
	seen []uint64
	fn   func(uint64) (bool, error)
}

func (m *migratorStub) MigratePost(_ context.Context, id uint64, src MigrationSource) (bool, error) {
	m.mu.Lock()
	m.seen = append(m.seen, id)
	m.mu.Unlock()
	return m.fn(id)
}

func entries(n int, referenced func(uint64) bool) []model.ImageEntry {
	out := make([]model.ImageEntry, 0, n)
	for i := 1; i <= n; i++ {
		id := uint64(i)
		kind := model.ImageInline
		if referenced(id) {
			kind = model.ImageReferenced
		}
		out = append(out, model.ImageEntry{PostID: id, Mime: model.MimeJPEG, Kind: kind})
	}
	return out
}

func TestMigrator_Run(t *testing.T) {
	t.Parallel()
	scanner := &scannerStub{entries: entries(25, func(id uint64) bool { return id%5 == 0 })}
	m := &migratorStub{fn: func(id uint64) (bool, error) {
		switch id {
		case 7:
			return false, errors.New("disk full")
		case 8:
			return false, nil
		}
		return true, nil
	}}

	report, err := NewMigrator(scanner, m, 10, 3, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MigrationReport{Scanned: 25, Migrated: 18, Skipped: 6, Errors: 1}, report)
	assert.Len(t, m.seen, 20)
	assert.Equal(t, 3, scanner.calls)
}

func TestMigrator_ScanError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	_, err := NewMigrator(&scannerStub{err: boom}, &migratorStub{}, 10, 1, nil).Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestMigrator_Enqueue(t *testing.T) {
	t.Parallel()
	scanner := &scannerStub{entries: entries(4, func(id uint64) bool { return id == 2 })}
	var (
		mu        sync.Mutex
		published []uint64
	)
	report, err := NewMigrator(scanner, &migratorStub{}, 100, 2, nil).Enqueue(context.Background(),
		func(_ context.Context, id uint64) error {
			mu.Lock()
			defer mu.Unlock()
			published = append(published, id)
			return nil
		})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{1, 3, 4}, published)
	assert.Equal(t, 3, report.Migrated)
	assert.Equal(t, 1, report.Skipped)
}

func TestMigrator_CancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMigrator(&scannerStub{}, &migratorStub{}, 10, 1, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
