package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/photo-feed/internal/model"
)

const userColumns = "id, account_name, passhash, authority, del_flg, created_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

func scanUser(s rowScanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.AccountName, &u.Passhash, &u.Authority, &u.DelFlg, &u.CreatedAt)
	return u, err
}

// Create inserts a user with an already computed passhash and returns its ID.
func (r *UserRepo) Create(ctx context.Context, accountName, passhash string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (account_name, passhash) VALUES (?, ?)",
		accountName, passhash)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a user by id regardless of del_flg.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetActiveByAccountName fetches a user that has not been banned.
func (r *UserRepo) GetActiveByAccountName(ctx context.Context, accountName string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE account_name = ? AND del_flg = 0", accountName))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// UpdatePasshash replaces the stored password hash, used when a legacy
// digest is upgraded on login.
func (r *UserRepo) UpdatePasshash(ctx context.Context, id uint64, passhash string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET passhash = ? WHERE id = ?", passhash, id)
	return err
}

// AuthorsOfPosts loads, in one round-trip, every user who authored one of
// the given posts, keyed by user id. Deleted users are included; callers
// decide what to do with them.
func (r *UserRepo) AuthorsOfPosts(ctx context.Context, postIDs []uint64) (map[uint64]model.User, error) {
	out := make(map[uint64]model.User)
	if len(postIDs) == 0 {
		return out, nil
	}
	in, args := inClause(postIDs)
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id IN (SELECT DISTINCT user_id FROM posts WHERE id IN ("+in+"))",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out[u.ID] = u
	}
	return out, rows.Err()
}

// ListActiveNormal returns non-admin users that are not banned, newest first.
func (r *UserRepo) ListActiveNormal(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE authority = 0 AND del_flg = 0 ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Ban sets del_flg on every given user and returns the number of rows changed.
func (r *UserRepo) Ban(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in, args := inClause(ids)
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET del_flg = 1 WHERE id IN ("+in+")", args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// OwnerAccountName returns the account name of the author of a post.
func (r *UserRepo) OwnerAccountName(ctx context.Context, postID uint64) (string, error) {
	var name string
	err := r.DB.QueryRowContext(ctx,
		"SELECT u.account_name FROM posts p JOIN users u ON u.id = p.user_id WHERE p.id = ?",
		postID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return name, err
}

// Stats computes the profile counters of a user in a single round-trip.
func (r *UserRepo) Stats(ctx context.Context, userID uint64) (model.UserStats, error) {
	const q = `SELECT
		(SELECT COUNT(*) FROM posts WHERE user_id = ?),
		(SELECT COUNT(*) FROM comments WHERE user_id = ?),
		(SELECT COUNT(*) FROM comments c JOIN posts p ON p.id = c.post_id WHERE p.user_id = ?)`
	var s model.UserStats
	err := r.DB.QueryRowContext(ctx, q, userID, userID, userID).
		Scan(&s.PostCount, &s.CommentCount, &s.CommentedCount)
	return s, err
}
