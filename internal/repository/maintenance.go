package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// MaintenanceRepo resets the dataset to its initial fixture state.
type MaintenanceRepo struct{ DB *sql.DB }

func NewMaintenanceRepo(db *sql.DB) *MaintenanceRepo { return &MaintenanceRepo{DB: db} }

var resetStatements = []string{
	"DELETE FROM users WHERE id > 1000",
	"DELETE FROM posts WHERE id > 10000",
	"DELETE FROM comments WHERE id > 100000",
	"UPDATE users SET del_flg = 0",
	"UPDATE users SET del_flg = 1 WHERE id % 50 = 0",
}

// Reset removes rows created after the fixture load and restores the
// initial ban list (every 50th user).
func (r *MaintenanceRepo) Reset(ctx context.Context) error {
	for _, q := range resetStatements {
		if _, err := r.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("reset %q: %w", q, err)
		}
	}
	return nil
}
