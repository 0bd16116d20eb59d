package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/photo-feed/internal/blobstore"
	"github.com/iliyamo/photo-feed/internal/model"
)

type postCreator interface {
	DB() *sql.DB
	InsertTx(ctx context.Context, tx *sql.Tx, userID uint64, mime, body string) (uint64, error)
	UpdateImageRefTx(ctx context.Context, tx *sql.Tx, id uint64, filename string) error
}

// CreatePostInput carries an upload.
type CreatePostInput struct {
	UserID uint64
	Mime   string
	Body   string
	Data   []byte
}

// PostService handles uploads. New posts are written in the referenced
// format directly; they reach the timelines when the cached pages expire.
type PostService struct {
	posts       postCreator
	blobs       blobstore.Store
	uploadLimit int64
	log         *zap.Logger
}

func NewPostService(posts postCreator, blobs blobstore.Store, uploadLimit int64, log *zap.Logger) *PostService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostService{posts: posts, blobs: blobs, uploadLimit: uploadLimit, log: log}
}

// CreatePost inserts the row, writes the blob under <id>.<ext> and stores
// the filename, all inside one transaction. Any failure rolls the row back
// and removes the blob.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (uint64, error) {
	if in.UserID == 0 || len(in.Data) == 0 {
		return 0, ErrInvalidInput
	}
	if _, ok := model.ExtensionForMime(in.Mime); !ok {
		return 0, ErrUnsupportedMedia
	}
	if s.uploadLimit > 0 && int64(len(in.Data)) > s.uploadLimit {
		return 0, ErrPayloadTooLarge
	}

	tx, err := s.posts.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	var filename string
	defer func() {
		if committed {
			return
		}
		_ = tx.Rollback()
		if filename != "" {
			if err := s.blobs.Remove(filename); err != nil {
				s.log.Warn("remove orphan blob failed", zap.String("file", filename), zap.Error(err))
			}
		}
	}()

	id, err := s.posts.InsertTx(ctx, tx, in.UserID, in.Mime, in.Body)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	name, _ := model.ImageFilename(id, in.Mime)
	if err := s.blobs.Write(name, in.Data); err != nil {
		return 0, fmt.Errorf("write image: %w", err)
	}
	filename = name
	if err := s.posts.UpdateImageRefTx(ctx, tx, id, name); err != nil {
		return 0, fmt.Errorf("store image ref: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	committed = true
	s.log.Info("post created", zap.Uint64("post_id", id), zap.String("file", name))
	return id, nil
}
