package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/photo-feed/internal/model"
)

type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// Create inserts a comment and returns its ID.
func (r *CommentRepo) Create(ctx context.Context, postID, userID uint64, text string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (post_id, user_id, comment) VALUES (?, ?, ?)",
		postID, userID, text)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CountByPosts returns the number of comment rows per post. Posts without
// comments are absent from the map.
func (r *CommentRepo) CountByPosts(ctx context.Context, postIDs []uint64) (map[uint64]int, error) {
	out := make(map[uint64]int, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	in, args := inClause(postIDs)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT post_id, COUNT(*) FROM comments WHERE post_id IN ("+in+") GROUP BY post_id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			postID uint64
			n      int
		)
		if err := rows.Scan(&postID, &n); err != nil {
			return nil, err
		}
		out[postID] = n
	}
	return out, rows.Err()
}

// recentCommentsQuery ranks comments of active users per post, newest
// first with the id as tie-breaker, then returns the top rows of each post
// oldest first.
const recentCommentsQuery = `SELECT id, post_id, user_id, comment, created_at,
	account_name, authority, del_flg, user_created_at
FROM (
	SELECT c.id, c.post_id, c.user_id, c.comment, c.created_at,
		u.account_name, u.authority, u.del_flg, u.created_at AS user_created_at,
		ROW_NUMBER() OVER (PARTITION BY c.post_id ORDER BY c.created_at DESC, c.id DESC) AS rn
	FROM comments c
	JOIN users u ON u.id = c.user_id
	WHERE c.post_id IN (%s) AND u.del_flg = 0
) ranked
WHERE rn <= ?
ORDER BY post_id, created_at, id`

// RecentByPosts returns, per post, at most perPost of its most recent
// comments in chronological order, each with its author.
func (r *CommentRepo) RecentByPosts(ctx context.Context, postIDs []uint64, perPost int) (map[uint64][]model.Comment, error) {
	out := make(map[uint64][]model.Comment, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	in, args := inClause(postIDs)
	args = append(args, perPost)
	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf(recentCommentsQuery, in), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Comment, &c.CreatedAt,
			&c.User.AccountName, &c.User.Authority, &c.User.DelFlg, &c.User.CreatedAt); err != nil {
			return nil, err
		}
		c.User.ID = c.UserID
		out[c.PostID] = append(out[c.PostID], c)
	}
	return out, rows.Err()
}
