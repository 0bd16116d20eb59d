package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/photo-feed/internal/blobstore"
	"github.com/iliyamo/photo-feed/internal/model"
	"github.com/iliyamo/photo-feed/internal/repository"
)

// imageStoreStub keeps raw imgdata values in memory and decodes them the
// way the repository does.
type imageStoreStub struct {
	mu        sync.Mutex
	mimes     map[uint64]string
	raw       map[uint64][]byte
	updateErr error
	updates   int
}

func newImageStore() *imageStoreStub {
	return &imageStoreStub{mimes: map[uint64]string{}, raw: map[uint64][]byte{}}
}

func (s *imageStoreStub) put(id uint64, mime string, raw []byte) {
	s.mimes[id] = mime
	s.raw[id] = raw
}

func (s *imageStoreStub) GetImage(_ context.Context, id uint64) (model.PostImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.raw[id]
	if !ok {
		return model.PostImage{}, repository.ErrNotFound
	}
	return model.PostImage{PostID: id, Mime: s.mimes[id], Data: model.DecodeImageData(raw)}, nil
}

func (s *imageStoreStub) UpdateImageRef(_ context.Context, id uint64, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates++
	s.raw[id] = []byte(filename)
	return nil
}

func readResolved(t *testing.T, img *ResolvedImage) []byte {
	t.Helper()
	defer img.Close()
	if img.File == nil {
		return img.Data
	}
	b, err := io.ReadAll(img.File)
	require.NoError(t, err)
	return b
}

func pngBytes() []byte {
	return append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 256)...)
}

func TestImageResolver_LazyMigration(t *testing.T) {
	t.Parallel()
	store := newImageStore()
	store.put(5, model.MimePNG, pngBytes())
	dir := t.TempDir()
	r := NewImageResolver(store, blobstore.NewFS(dir), nil)
	ctx := context.Background()

	img, err := r.Resolve(ctx, 5, "png")
	require.NoError(t, err)
	require.NotNil(t, img.File, "served from the blob after migration")
	assert.Equal(t, model.MimePNG, img.Mime)
	assert.Equal(t, pngBytes(), readResolved(t, img))

	assert.Equal(t, "5.png", string(store.raw[5]))
	onDisk, err := os.ReadFile(filepath.Join(dir, "5.png"))
	require.NoError(t, err)
	assert.Equal(t, pngBytes(), onDisk)

	img, err = r.Resolve(ctx, 5, "png")
	require.NoError(t, err)
	assert.Equal(t, pngBytes(), readResolved(t, img))
	assert.Equal(t, 1, store.updates, "second request takes the referenced branch")
}

func TestImageResolver_NotFound(t *testing.T) {
	t.Parallel()
	store := newImageStore()
	store.put(5, model.MimePNG, pngBytes())
	store.put(6, model.MimeJPEG, []byte("6.jpg"))
	store.put(7, "image/webp", pngBytes())
	r := NewImageResolver(store, blobstore.NewFS(t.TempDir()), nil)
	ctx := context.Background()

	cases := []struct {
		name string
		id   uint64
		ext  string
	}{
		{"missing post", 99, "png"},
		{"extension mismatch", 5, "jpg"},
		{"referenced file missing", 6, "jpg"},
		{"unsupported mime", 7, "png"},
	}
	for _, tc := range cases {
		_, err := r.Resolve(ctx, tc.id, tc.ext)
		assert.ErrorIs(t, err, ErrNotFound, tc.name)
	}
	assert.Zero(t, store.updates)
}

func TestImageResolver_FallbackWhenUpdateFails(t *testing.T) {
	t.Parallel()
	store := newImageStore()
	store.put(5, model.MimePNG, pngBytes())
	store.updateErr = errors.New("read-only")
	r := NewImageResolver(store, blobstore.NewFS(t.TempDir()), nil)

	img, err := r.Resolve(context.Background(), 5, "png")
	require.NoError(t, err)
	assert.Nil(t, img.File)
	assert.Equal(t, pngBytes(), img.Data)
	assert.Equal(t, model.ImageInline, model.DecodeImageData(store.raw[5]).Kind, "row untouched")
}

func TestImageResolver_FallbackWhenWriteFails(t *testing.T) {
	t.Parallel()
	store := newImageStore()
	store.put(5, model.MimePNG, pngBytes())
	// A regular file where the directory should be makes every write fail.
	blocker := filepath.Join(t.TempDir(), "images")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	r := NewImageResolver(store, blobstore.NewFS(blocker), nil)

	img, err := r.Resolve(context.Background(), 5, "png")
	require.NoError(t, err)
	assert.Equal(t, pngBytes(), readResolved(t, img))
	assert.Zero(t, store.updates)
}

func TestImageResolver_MigratePost(t *testing.T) {
	t.Parallel()
	store := newImageStore()
	store.put(1, model.MimeGIF, []byte("GIF89a-but-long-enough-to-not-look-like-a-name"))
	store.put(2, model.MimeGIF, []byte("2.gif"))
	r := NewImageResolver(store, blobstore.NewFS(t.TempDir()), nil)
	ctx := context.Background()

	done, err := r.MigratePost(ctx, 1, SourceQueue)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = r.MigratePost(ctx, 1, SourceQueue)
	require.NoError(t, err)
	assert.False(t, done)

	done, err = r.MigratePost(ctx, 2, SourceQueue)
	require.NoError(t, err)
	assert.False(t, done)

	_, err = r.MigratePost(ctx, 3, SourceQueue)
	assert.ErrorIs(t, err, ErrNotFound)
}
