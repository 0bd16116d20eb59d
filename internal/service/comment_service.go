package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/photo-feed/internal/cache"
	"github.com/iliyamo/photo-feed/internal/repository"
)

type commentWriter interface {
	Create(ctx context.Context, postID, userID uint64, text string) (uint64, error)
}

type postOwnerLookup interface {
	OwnerAccountName(ctx context.Context, postID uint64) (string, error)
}

// CreateCommentInput carries a new comment.
type CreateCommentInput struct {
	PostID  uint64
	UserID  uint64
	Comment string
}

type CommentService struct {
	comments commentWriter
	owners   postOwnerLookup
	cache    cache.FeedCache
	log      *zap.Logger
}

func NewCommentService(comments commentWriter, owners postOwnerLookup, fc cache.FeedCache, log *zap.Logger) *CommentService {
	if fc == nil {
		fc = cache.Disabled{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CommentService{comments: comments, owners: owners, cache: fc, log: log}
}

// AddComment stores the comment and then drops the cache entries that
// render it: the top timeline, the post itself and the post owner's
// profile page. The invalidation is best-effort.
func (s *CommentService) AddComment(ctx context.Context, in CreateCommentInput) (uint64, error) {
	if in.PostID == 0 || in.UserID == 0 || strings.TrimSpace(in.Comment) == "" {
		return 0, ErrInvalidInput
	}
	owner, err := s.owners.OwnerAccountName(ctx, in.PostID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load post owner: %w", err)
	}
	id, err := s.comments.Create(ctx, in.PostID, in.UserID, in.Comment)
	if err != nil {
		return 0, fmt.Errorf("create comment: %w", err)
	}
	s.cache.Delete(ctx, cache.TimelineTopKey, cache.PostKey(in.PostID), cache.UserPageKey(owner))
	s.log.Debug("comment added", zap.Uint64("comment_id", id), zap.Uint64("post_id", in.PostID))
	return id, nil
}
