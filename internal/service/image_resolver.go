package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/iliyamo/photo-feed/internal/blobstore"
	"github.com/iliyamo/photo-feed/internal/model"
	"github.com/iliyamo/photo-feed/internal/repository"
)

type imageStore interface {
	GetImage(ctx context.Context, id uint64) (model.PostImage, error)
	UpdateImageRef(ctx context.Context, id uint64, filename string) error
}

// ResolvedImage is an image ready to be served: either an open blob file
// or, when migration could not complete, the bytes from the store.
type ResolvedImage struct {
	Mime string
	File *os.File
	Data []byte
}

// Close releases the blob file, if any.
func (r *ResolvedImage) Close() error {
	if r.File == nil {
		return nil
	}
	return r.File.Close()
}

// ImageResolver serves post images and moves legacy inline images into the
// blob store the first time they are requested.
type ImageResolver struct {
	store imageStore
	blobs blobstore.Store
	log   *zap.Logger
}

func NewImageResolver(store imageStore, blobs blobstore.Store, log *zap.Logger) *ImageResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageResolver{store: store, blobs: blobs, log: log}
}

// Resolve returns the image of a post requested with extension ext, which
// must be the canonical extension of the post's mime type. Inline images
// are migrated on the way; if that fails the stored bytes are served and
// nothing is persisted.
func (r *ImageResolver) Resolve(ctx context.Context, postID uint64, ext string) (*ResolvedImage, error) {
	img, err := r.store.GetImage(ctx, postID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	if want, ok := model.ExtensionForMime(img.Mime); !ok || want != ext {
		return nil, ErrNotFound
	}

	if img.Data.Kind == model.ImageReferenced {
		f, err := r.blobs.Open(img.Data.Filename)
		if errors.Is(err, blobstore.ErrNotExist) || errors.Is(err, blobstore.ErrInvalidName) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("open blob: %w", err)
		}
		return &ResolvedImage{Mime: img.Mime, File: f}, nil
	}

	name, err := r.migrate(ctx, img, SourceLazy)
	if err != nil {
		r.log.Warn("lazy image migration failed, serving inline bytes",
			zap.Uint64("post_id", postID), zap.Error(err))
		return &ResolvedImage{Mime: img.Mime, Data: img.Data.Inline}, nil
	}
	f, err := r.blobs.Open(name)
	if err != nil {
		return &ResolvedImage{Mime: img.Mime, Data: img.Data.Inline}, nil
	}
	return &ResolvedImage{Mime: img.Mime, File: f}, nil
}

// MigratePost moves one post's inline image into the blob store. It
// reports false without error when the post already references a file.
func (r *ImageResolver) MigratePost(ctx context.Context, postID uint64, src MigrationSource) (bool, error) {
	img, err := r.store.GetImage(ctx, postID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("load image: %w", err)
	}
	if img.Data.Kind == model.ImageReferenced {
		return false, nil
	}
	if _, err := r.migrate(ctx, img, src); err != nil {
		return false, err
	}
	return true, nil
}

// migrate writes the blob and then points the row at it. Concurrent
// migrations of the same post write identical bytes under the same name,
// so the blob is left in place when the row update fails.
func (r *ImageResolver) migrate(ctx context.Context, img model.PostImage, src MigrationSource) (name string, err error) {
	defer func() { recordMigration(src, err) }()

	name, ok := model.ImageFilename(img.PostID, img.Mime)
	if !ok {
		return "", fmt.Errorf("%w: mime %q", ErrUnsupportedMedia, img.Mime)
	}
	if err := r.blobs.Write(name, img.Data.Inline); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := r.store.UpdateImageRef(ctx, img.PostID, name); err != nil {
		return "", fmt.Errorf("update image ref: %w", err)
	}
	return name, nil
}
