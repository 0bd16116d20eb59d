package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_CreateDuplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (account_name, passhash) VALUES (?, ?)")).
		WithArgs("alice", "hash").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := repo.Create(context.Background(), "alice", "hash")
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_GetActiveByAccountName(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)
	now := time.Now().UTC()

	q := regexp.QuoteMeta("SELECT " + userColumns + " FROM users WHERE account_name = ? AND del_flg = 0")
	mock.ExpectQuery(q).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(7, "alice", "h", 1, false, now))
	mock.ExpectQuery(q).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	u, err := repo.GetActiveByAccountName(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), u.ID)
	assert.True(t, u.IsAdmin())
	assert.False(t, u.DelFlg)

	_, err = repo.GetActiveByAccountName(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_AuthorsOfPosts(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT " + userColumns + " FROM users WHERE id IN (SELECT DISTINCT user_id FROM posts WHERE id IN (?, ?, ?))")).
		WithArgs(uint64(1), uint64(2), uint64(3)).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(10, "alice", "h", 0, false, now).
			AddRow(11, "bob", "h", 0, true, now))

	got, err := repo.AuthorsOfPosts(context.Background(), []uint64{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[10].AccountName)
	assert.True(t, got[11].DelFlg)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_AuthorsOfPostsEmpty(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)

	got, err := repo.AuthorsOfPosts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Ban(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET del_flg = 1 WHERE id IN (?, ?)")).
		WithArgs(uint64(4), uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.Ban(context.Background(), []uint64{4, 9})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_Stats(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(`SELECT\s+\(SELECT COUNT\(\*\) FROM posts WHERE user_id = \?\)`).
		WithArgs(uint64(3), uint64(3), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"p", "c", "cd"}).AddRow(5, 2, 9))

	s, err := repo.Stats(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 5, s.PostCount)
	assert.Equal(t, 2, s.CommentCount)
	assert.Equal(t, 9, s.CommentedCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_OwnerAccountName(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepo(db)

	q := regexp.QuoteMeta("SELECT u.account_name FROM posts p JOIN users u ON u.id = p.user_id WHERE p.id = ?")
	mock.ExpectQuery(q).WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"account_name"}).AddRow("carol"))
	mock.ExpectQuery(q).WithArgs(uint64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"account_name"}))

	name, err := repo.OwnerAccountName(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "carol", name)

	_, err = repo.OwnerAccountName(context.Background(), 6)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
