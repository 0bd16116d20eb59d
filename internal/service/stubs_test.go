package service

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/photo-feed/internal/model"
	"github.com/iliyamo/photo-feed/internal/repository"
)

// userRepoStub is a stub for repository.UserRepo.
type userRepoStub struct {
	authorsFn    func(context.Context, []uint64) (map[uint64]model.User, error)
	byNameFn     func(context.Context, string) (model.User, error)
	statsFn      func(context.Context, uint64) (model.UserStats, error)
	createFn     func(context.Context, string, string) (uint64, error)
	updateHashFn func(context.Context, uint64, string) error
	ownerFn      func(context.Context, uint64) (string, error)
	listFn       func(context.Context) ([]model.User, error)
	banFn        func(context.Context, []uint64) (int64, error)

	mu    sync.Mutex
	calls int
}

func (s *userRepoStub) hit() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *userRepoStub) AuthorsOfPosts(ctx context.Context, ids []uint64) (map[uint64]model.User, error) {
	s.hit()
	return s.authorsFn(ctx, ids)
}
func (s *userRepoStub) GetActiveByAccountName(ctx context.Context, name string) (model.User, error) {
	s.hit()
	return s.byNameFn(ctx, name)
}
func (s *userRepoStub) Stats(ctx context.Context, id uint64) (model.UserStats, error) {
	s.hit()
	return s.statsFn(ctx, id)
}
func (s *userRepoStub) Create(ctx context.Context, name, hash string) (uint64, error) {
	return s.createFn(ctx, name, hash)
}
func (s *userRepoStub) UpdatePasshash(ctx context.Context, id uint64, hash string) error {
	return s.updateHashFn(ctx, id, hash)
}
func (s *userRepoStub) OwnerAccountName(ctx context.Context, postID uint64) (string, error) {
	return s.ownerFn(ctx, postID)
}
func (s *userRepoStub) ListActiveNormal(ctx context.Context) ([]model.User, error) {
	return s.listFn(ctx)
}
func (s *userRepoStub) Ban(ctx context.Context, ids []uint64) (int64, error) {
	return s.banFn(ctx, ids)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		authorsFn: func(context.Context, []uint64) (map[uint64]model.User, error) {
			return map[uint64]model.User{}, nil
		},
		byNameFn: func(context.Context, string) (model.User, error) { return model.User{}, repository.ErrNotFound },
		statsFn:  func(context.Context, uint64) (model.UserStats, error) { return model.UserStats{}, nil },
		createFn: func(context.Context, string, string) (uint64, error) { return 1, nil },
		updateHashFn: func(context.Context, uint64, string) error { return nil },
		ownerFn:      func(context.Context, uint64) (string, error) { return "", repository.ErrNotFound },
		listFn:       func(context.Context) ([]model.User, error) { return nil, nil },
		banFn:        func(_ context.Context, ids []uint64) (int64, error) { return int64(len(ids)), nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepo.
type commentRepoStub struct {
	countFn  func(context.Context, []uint64) (map[uint64]int, error)
	recentFn func(context.Context, []uint64, int) (map[uint64][]model.Comment, error)
	createFn func(context.Context, uint64, uint64, string) (uint64, error)

	mu    sync.Mutex
	calls int
}

func (s *commentRepoStub) hit() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *commentRepoStub) CountByPosts(ctx context.Context, ids []uint64) (map[uint64]int, error) {
	s.hit()
	return s.countFn(ctx, ids)
}
func (s *commentRepoStub) RecentByPosts(ctx context.Context, ids []uint64, perPost int) (map[uint64][]model.Comment, error) {
	s.hit()
	return s.recentFn(ctx, ids, perPost)
}
func (s *commentRepoStub) Create(ctx context.Context, postID, userID uint64, text string) (uint64, error) {
	return s.createFn(ctx, postID, userID, text)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		countFn: func(context.Context, []uint64) (map[uint64]int, error) { return map[uint64]int{}, nil },
		recentFn: func(context.Context, []uint64, int) (map[uint64][]model.Comment, error) {
			return map[uint64][]model.Comment{}, nil
		},
		createFn: func(context.Context, uint64, uint64, string) (uint64, error) { return 1, nil },
	}
}

// postRepoStub is a stub for the listing side of repository.PostRepo.
type postRepoStub struct {
	recentFn func(context.Context, int) ([]model.Post, error)
	beforeFn func(context.Context, time.Time, int) ([]model.Post, error)
	byUserFn func(context.Context, uint64, int) ([]model.Post, error)
	getFn    func(context.Context, uint64) (model.Post, error)

	mu    sync.Mutex
	calls int
}

func (s *postRepoStub) hit() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *postRepoStub) ListRecent(ctx context.Context, limit int) ([]model.Post, error) {
	s.hit()
	return s.recentFn(ctx, limit)
}
func (s *postRepoStub) ListBefore(ctx context.Context, before time.Time, limit int) ([]model.Post, error) {
	s.hit()
	return s.beforeFn(ctx, before, limit)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Post, error) {
	s.hit()
	return s.byUserFn(ctx, userID, limit)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint64) (model.Post, error) {
	s.hit()
	return s.getFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	none := func() ([]model.Post, error) { return nil, nil }
	return &postRepoStub{
		recentFn: func(context.Context, int) ([]model.Post, error) { return none() },
		beforeFn: func(context.Context, time.Time, int) ([]model.Post, error) { return none() },
		byUserFn: func(context.Context, uint64, int) ([]model.Post, error) { return none() },
		getFn:    func(context.Context, uint64) (model.Post, error) { return model.Post{}, repository.ErrNotFound },
	}
}

// memCache is an in-process FeedCache recording deletions.
type memCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	deleted  []string
	patterns []string
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	return b, ok
}
func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}
func (c *memCache) Delete(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
}
func (c *memCache) DeletePattern(_ context.Context, pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patterns = append(c.patterns, pattern)
	c.data = map[string][]byte{}
}

func post(id, userID uint64, at time.Time) model.Post {
	return model.Post{ID: id, UserID: userID, Mime: model.MimePNG, Body: "body", CreatedAt: at}
}

func user(id uint64, name string, deleted bool) model.User {
	return model.User{ID: id, AccountName: name, DelFlg: deleted}
}
