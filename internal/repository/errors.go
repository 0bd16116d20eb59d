// Package repository implements MySQL persistence for users, posts and
// comments. Repositories return the sentinel values below so that
// services can tell expected outcomes apart from store failures.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup by key matches no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique key, such
// as registering an account name that is already taken. Handlers
// translate it into an HTTP 409 response.
var ErrDuplicate = errors.New("duplicate")

const mysqlErrDupEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDupEntry
}
