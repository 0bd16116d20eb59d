package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/iliyamo/photo-feed/internal/cache"
	"github.com/iliyamo/photo-feed/internal/model"
	"github.com/iliyamo/photo-feed/internal/repository"
)

// feedWindow is how many raw rows a page reads before aggregation drops
// posts of banned authors and truncates to PostsPerPage.
const feedWindow = 30

type postLister interface {
	ListRecent(ctx context.Context, limit int) ([]model.Post, error)
	ListBefore(ctx context.Context, before time.Time, limit int) ([]model.Post, error)
	ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Post, error)
	GetByID(ctx context.Context, id uint64) (model.Post, error)
}

type profileLoader interface {
	GetActiveByAccountName(ctx context.Context, accountName string) (model.User, error)
	Stats(ctx context.Context, userID uint64) (model.UserStats, error)
}

// FeedService serves the read side: timelines, profile pages and post
// detail. Listing pages go through the feed cache; concurrent misses on
// the same key share one load.
type FeedService struct {
	posts  postLister
	users  profileLoader
	agg    *Aggregator
	cache  cache.FeedCache
	log    *zap.Logger
	flight singleflight.Group
}

func NewFeedService(posts postLister, users profileLoader, agg *Aggregator, fc cache.FeedCache, log *zap.Logger) *FeedService {
	if fc == nil {
		fc = cache.Disabled{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FeedService{posts: posts, users: users, agg: agg, cache: fc, log: log}
}

// sharedLoadTimeout bounds a load shared by concurrent misses. The load
// runs detached from any single caller, so one client going away does not
// fail the others waiting on the same key.
const sharedLoadTimeout = 10 * time.Second

// cached returns the entry at key or computes, stores and returns it.
// Loader errors are never cached. A caller whose context ends stops
// waiting; the shared load keeps going for the rest.
func cached[T any](ctx context.Context, s *FeedService, key string, load func(context.Context) (T, error)) (T, error) {
	var v T
	if cache.GetJSON(ctx, s.cache, key, &v) {
		return v, nil
	}
	ch := s.flight.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		fresh, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		cache.SetJSON(loadCtx, s.cache, key, fresh, cache.FeedTTL)
		return fresh, nil
	})
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Timeline returns the newest page of the global feed. Unlike the older
// pages it is always full: when banned authors leave it short, the read
// window grows until PostsPerPage posts survive or the table runs out.
func (s *FeedService) Timeline(ctx context.Context) ([]model.PostView, error) {
	return cached(ctx, s, cache.TimelineTopKey, func(ctx context.Context) ([]model.PostView, error) {
		for limit := feedWindow; ; limit *= 2 {
			rows, err := s.posts.ListRecent(ctx, limit)
			if err != nil {
				return nil, fmt.Errorf("list recent posts: %w", err)
			}
			views, err := s.agg.Aggregate(ctx, rows, false)
			if err != nil || len(views) >= PostsPerPage || len(rows) < limit {
				return views, err
			}
		}
	})
}

// TimelineBefore returns the page of posts created strictly before cursor. An
// empty cursor is the top of the feed, cached under its own key.
func (s *FeedService) TimelineBefore(ctx context.Context, cursor string) ([]model.PostView, error) {
	var before time.Time
	if cursor != "" {
		t, err := ParseCursor(cursor)
		if err != nil {
			return nil, err
		}
		before = t
	}
	return cached(ctx, s, cache.TimelineBeforeKey(cursor), func(ctx context.Context) ([]model.PostView, error) {
		var (
			rows []model.Post
			err  error
		)
		if cursor == "" {
			rows, err = s.posts.ListRecent(ctx, feedWindow)
		} else {
			rows, err = s.posts.ListBefore(ctx, before, feedWindow)
		}
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		return s.agg.Aggregate(ctx, rows, false)
	})
}

// UserPage returns the profile bundle of an active account.
func (s *FeedService) UserPage(ctx context.Context, accountName string) (model.UserPage, error) {
	return cached(ctx, s, cache.UserPageKey(accountName), func(ctx context.Context) (model.UserPage, error) {
		u, err := s.users.GetActiveByAccountName(ctx, accountName)
		if errors.Is(err, repository.ErrNotFound) {
			return model.UserPage{}, ErrNotFound
		}
		if err != nil {
			return model.UserPage{}, fmt.Errorf("load user: %w", err)
		}
		rows, err := s.posts.ListByUser(ctx, u.ID, feedWindow)
		if err != nil {
			return model.UserPage{}, fmt.Errorf("list user posts: %w", err)
		}
		views, err := s.agg.Aggregate(ctx, rows, false)
		if err != nil {
			return model.UserPage{}, err
		}
		stats, err := s.users.Stats(ctx, u.ID)
		if err != nil {
			return model.UserPage{}, fmt.Errorf("load stats: %w", err)
		}
		return model.UserPage{User: u.Author(), Posts: views, UserStats: stats}, nil
	})
}

// PostDetail returns one post with all of its comments. It is read
// straight from the store.
func (s *FeedService) PostDetail(ctx context.Context, id uint64) (model.PostView, error) {
	p, err := s.posts.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.PostView{}, ErrNotFound
	}
	if err != nil {
		return model.PostView{}, fmt.Errorf("load post: %w", err)
	}
	views, err := s.agg.Aggregate(ctx, []model.Post{p}, true)
	if err != nil {
		return model.PostView{}, err
	}
	if len(views) == 0 {
		return model.PostView{}, ErrNotFound
	}
	return views[0], nil
}

var cursorPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[T ](\d{2}:\d{2}:\d{2})`)

// ParseCursor reads the date and time of an ISO 8601 timestamp and
// ignores fractional seconds and any zone designator.
func ParseCursor(s string) (time.Time, error) {
	m := cursorPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidCursor, s)
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", m[1]+" "+m[2], time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidCursor, s)
	}
	return t, nil
}
