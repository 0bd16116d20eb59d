package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/photo-feed/internal/cache"
	"github.com/iliyamo/photo-feed/internal/repository"
)

func TestCommentService_AddCommentInvalidates(t *testing.T) {
	t.Parallel()
	users, comments, fc := noopUserRepo(), noopCommentRepo(), newMemCache()
	users.ownerFn = func(_ context.Context, postID uint64) (string, error) {
		assert.Equal(t, uint64(5), postID)
		return "carol", nil
	}
	comments.createFn = func(_ context.Context, postID, userID uint64, text string) (uint64, error) {
		assert.Equal(t, uint64(5), postID)
		assert.Equal(t, uint64(2), userID)
		assert.Equal(t, "nice", text)
		return 77, nil
	}
	ctx := context.Background()
	for _, k := range []string{cache.TimelineTopKey, cache.PostKey(5), cache.UserPageKey("carol"), cache.UserPageKey("dave")} {
		fc.Set(ctx, k, []byte("[]"), cache.FeedTTL)
	}

	svc := NewCommentService(comments, users, fc, nil)
	id, err := svc.AddComment(ctx, CreateCommentInput{PostID: 5, UserID: 2, Comment: "nice"})
	require.NoError(t, err)
	assert.Equal(t, uint64(77), id)

	assert.ElementsMatch(t, []string{"tl:top", "post:5", "user:carol:page0"}, fc.deleted)
	_, ok := fc.Get(ctx, cache.UserPageKey("dave"))
	assert.True(t, ok, "unrelated pages stay cached")
}

func TestCommentService_Validation(t *testing.T) {
	t.Parallel()
	svc := NewCommentService(noopCommentRepo(), noopUserRepo(), nil, nil)
	ctx := context.Background()

	t.Run("empty comment", func(t *testing.T) {
		t.Parallel()
		_, err := svc.AddComment(ctx, CreateCommentInput{PostID: 1, UserID: 1, Comment: "  "})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown post", func(t *testing.T) {
		t.Parallel()
		_, err := svc.AddComment(ctx, CreateCommentInput{PostID: 1, UserID: 1, Comment: "hi"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCommentService_StoreErrorSkipsInvalidation(t *testing.T) {
	t.Parallel()
	users, comments, fc := noopUserRepo(), noopCommentRepo(), newMemCache()
	users.ownerFn = func(context.Context, uint64) (string, error) { return "carol", nil }
	boom := errors.New("boom")
	comments.createFn = func(context.Context, uint64, uint64, string) (uint64, error) { return 0, boom }

	_, err := NewCommentService(comments, users, fc, nil).
		AddComment(context.Background(), CreateCommentInput{PostID: 1, UserID: 1, Comment: "hi"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, fc.deleted)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}
