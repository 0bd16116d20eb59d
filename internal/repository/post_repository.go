package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/photo-feed/internal/model"
)

const postColumns = "id, user_id, mime, body, created_at"

// PostRepo manages persistence for posts. Listing queries never select
// the imgdata column.
type PostRepo struct {
	db *sql.DB
}

func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{db: db} }

// DB exposes the underlying sql.DB so callers can run the upload
// transaction across InsertTx and UpdateImageRefTx.
func (r *PostRepo) DB() *sql.DB { return r.db }

func (r *PostRepo) list(ctx context.Context, q string, args ...any) ([]model.Post, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Mime, &p.Body, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListRecent returns the newest posts.
func (r *PostRepo) ListRecent(ctx context.Context, limit int) ([]model.Post, error) {
	return r.list(ctx, "SELECT "+postColumns+" FROM posts ORDER BY created_at DESC LIMIT ?", limit)
}

// ListBefore returns posts created before the cursor, newest first.
func (r *PostRepo) ListBefore(ctx context.Context, before time.Time, limit int) ([]model.Post, error) {
	return r.list(ctx,
		"SELECT "+postColumns+" FROM posts WHERE created_at < ? ORDER BY created_at DESC LIMIT ?",
		before, limit)
}

// ListByUser returns the newest posts of one user.
func (r *PostRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Post, error) {
	return r.list(ctx,
		"SELECT "+postColumns+" FROM posts WHERE user_id = ? ORDER BY created_at DESC LIMIT ?",
		userID, limit)
}

// GetByID loads one post.
func (r *PostRepo) GetByID(ctx context.Context, id uint64) (model.Post, error) {
	var p model.Post
	err := r.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = ?", id).
		Scan(&p.ID, &p.UserID, &p.Mime, &p.Body, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Post{}, ErrNotFound
	}
	return p, err
}

// GetImage loads the image column of a post and decodes it into its
// inline or referenced form.
func (r *PostRepo) GetImage(ctx context.Context, id uint64) (model.PostImage, error) {
	var (
		img model.PostImage
		raw []byte
	)
	err := r.db.QueryRowContext(ctx, "SELECT id, mime, imgdata FROM posts WHERE id = ?", id).
		Scan(&img.PostID, &img.Mime, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PostImage{}, ErrNotFound
	}
	if err != nil {
		return model.PostImage{}, err
	}
	img.Data = model.DecodeImageData(raw)
	return img, nil
}

// UpdateImageRef stores a blob filename in place of the image bytes.
func (r *PostRepo) UpdateImageRef(ctx context.Context, id uint64, filename string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE posts SET imgdata = ? WHERE id = ?", []byte(filename), id)
	return err
}

// InsertTx inserts a post with an empty image column inside tx. The
// caller fills the column with UpdateImageRefTx once the blob exists.
func (r *PostRepo) InsertTx(ctx context.Context, tx *sql.Tx, userID uint64, mime, body string) (uint64, error) {
	const q = `INSERT INTO posts (user_id, mime, imgdata, body) VALUES (?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, userID, mime, []byte{}, body)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpdateImageRefTx is UpdateImageRef inside tx.
func (r *PostRepo) UpdateImageRefTx(ctx context.Context, tx *sql.Tx, id uint64, filename string) error {
	_, err := tx.ExecContext(ctx, "UPDATE posts SET imgdata = ? WHERE id = ?", []byte(filename), id)
	return err
}

// ScanImages classifies the image column of up to limit posts with id
// greater than afterID, in id order. Only the first FilenameRefMaxLen
// bytes are transferred: that is enough to tell a reference from image
// bytes.
func (r *PostRepo) ScanImages(ctx context.Context, afterID uint64, limit int) ([]model.ImageEntry, error) {
	const q = `SELECT id, mime, LEFT(imgdata, ?) FROM posts WHERE id > ? ORDER BY id LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, model.FilenameRefMaxLen, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ImageEntry
	for rows.Next() {
		var (
			e    model.ImageEntry
			head []byte
		)
		if err := rows.Scan(&e.PostID, &e.Mime, &head); err != nil {
			return nil, err
		}
		e.Kind = model.DecodeImageData(head).Kind
		out = append(out, e)
	}
	return out, rows.Err()
}
