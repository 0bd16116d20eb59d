package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/photo-feed/internal/cache"
	"github.com/iliyamo/photo-feed/internal/model"
)

type banStore interface {
	ListActiveNormal(ctx context.Context) ([]model.User, error)
	Ban(ctx context.Context, ids []uint64) (int64, error)
}

type datasetResetter interface {
	Reset(ctx context.Context) error
}

// AdminService bans accounts and resets the dataset. Both change which
// posts and comments are visible, so both purge every cached page.
type AdminService struct {
	users banStore
	reset datasetResetter
	cache cache.FeedCache
	log   *zap.Logger
}

func NewAdminService(users banStore, reset datasetResetter, fc cache.FeedCache, log *zap.Logger) *AdminService {
	if fc == nil {
		fc = cache.Disabled{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminService{users: users, reset: reset, cache: fc, log: log}
}

// BannableUsers lists active non-admin accounts.
func (s *AdminService) BannableUsers(ctx context.Context) ([]model.Author, error) {
	users, err := s.users.ListActiveNormal(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]model.Author, 0, len(users))
	for _, u := range users {
		out = append(out, u.Author())
	}
	return out, nil
}

// Ban soft-deletes the given accounts.
func (s *AdminService) Ban(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrInvalidInput
	}
	n, err := s.users.Ban(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("ban users: %w", err)
	}
	s.purge(ctx)
	s.log.Info("users banned", zap.Int64("count", n))
	return n, nil
}

// Initialize restores the fixture dataset.
func (s *AdminService) Initialize(ctx context.Context) error {
	if err := s.reset.Reset(ctx); err != nil {
		return err
	}
	s.purge(ctx)
	return nil
}

func (s *AdminService) purge(ctx context.Context) {
	for _, p := range []string{cache.TimelinePattern, cache.UserPagePattern, cache.PostPattern} {
		s.cache.DeletePattern(ctx, p)
	}
}
