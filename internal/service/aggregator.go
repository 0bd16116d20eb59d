package service

import (
	"context"
	"fmt"
	"math"

	"github.com/iliyamo/photo-feed/internal/model"
)

const (
	// PostsPerPage bounds every aggregated page.
	PostsPerPage = 20

	previewComments = 3
	// allComments is the per-post window used when every comment is wanted.
	allComments = math.MaxInt32
)

type authorLoader interface {
	AuthorsOfPosts(ctx context.Context, postIDs []uint64) (map[uint64]model.User, error)
}

type commentLoader interface {
	CountByPosts(ctx context.Context, postIDs []uint64) (map[uint64]int, error)
	RecentByPosts(ctx context.Context, postIDs []uint64, perPost int) (map[uint64][]model.Comment, error)
}

// Aggregator turns raw post rows into render-ready views with a fixed
// number of store round-trips, independent of how many posts it gets.
type Aggregator struct {
	users    authorLoader
	comments commentLoader
}

func NewAggregator(users authorLoader, comments commentLoader) *Aggregator {
	return &Aggregator{users: users, comments: comments}
}

// Aggregate enriches rows, kept in input order, with author, comment count
// and the latest comments (all of them when includeAll is set). Posts
// whose author is missing or banned are dropped and at most PostsPerPage
// views are returned.
func (a *Aggregator) Aggregate(ctx context.Context, rows []model.Post, includeAll bool) ([]model.PostView, error) {
	if len(rows) == 0 {
		return []model.PostView{}, nil
	}

	ids := distinctPostIDs(rows)

	authors, err := a.users.AuthorsOfPosts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}
	counts, err := a.comments.CountByPosts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	limit := previewComments
	if includeAll {
		limit = allComments
	}
	comments, err := a.comments.RecentByPosts(ctx, ids, limit)
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}

	out := make([]model.PostView, 0, min(len(rows), PostsPerPage))
	for _, p := range rows {
		author, ok := authors[p.UserID]
		if !ok || !author.Active() {
			continue
		}
		cs := comments[p.ID]
		if cs == nil {
			cs = []model.Comment{}
		}
		out = append(out, model.PostView{
			ID:           p.ID,
			UserID:       p.UserID,
			Body:         p.Body,
			Mime:         p.Mime,
			CreatedAt:    p.CreatedAt,
			ImageURL:     imageURL(p),
			CommentCount: counts[p.ID],
			Comments:     cs,
			User:         author.Author(),
		})
		if len(out) >= PostsPerPage {
			break
		}
	}
	return out, nil
}

func distinctPostIDs(rows []model.Post) []uint64 {
	seen := make(map[uint64]struct{}, len(rows))
	ids := make([]uint64, 0, len(rows))
	for _, p := range rows {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		ids = append(ids, p.ID)
	}
	return ids
}

func imageURL(p model.Post) string {
	name, ok := model.ImageFilename(p.ID, p.Mime)
	if !ok {
		return ""
	}
	return "/image/" + name
}
