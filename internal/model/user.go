package model

import "time"

// User represents a row of the `users` table.
//
// Fields:
//  ID          – primary key identifier of the user.
//  AccountName – unique login name.
//  Passhash    – stored password hash; either a bcrypt hash or the legacy
//                128 character SHA-512 hex digest.
//  Authority   – 0 for normal users, anything else for administrators.
//  DelFlg      – soft-delete flag; banned users have it set.
//  CreatedAt   – timestamp of creation.
type User struct {
	ID          uint64    // users.id
	AccountName string    // users.account_name
	Passhash    string    // users.passhash
	Authority   int       // users.authority
	DelFlg      bool      // users.del_flg
	CreatedAt   time.Time // users.created_at
}

// IsAdmin reports whether the user may use the admin endpoints.
func (u User) IsAdmin() bool { return u.Authority != 0 }

// Active reports whether the user has not been soft-deleted.
func (u User) Active() bool { return !u.DelFlg }

// Author returns the public projection of the user. Password hashes never
// leave the service through views.
func (u User) Author() Author {
	return Author{
		ID:          u.ID,
		AccountName: u.AccountName,
		Authority:   u.Authority,
		DelFlg:      u.DelFlg,
		CreatedAt:   u.CreatedAt,
	}
}

// Author is the user projection embedded in posts and comments.
type Author struct {
	ID          uint64    `json:"id"`
	AccountName string    `json:"account_name"`
	Authority   int       `json:"authority"`
	DelFlg      bool      `json:"del_flg"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserStats holds the counters shown on a profile page.
type UserStats struct {
	PostCount      int `json:"post_count"`
	CommentCount   int `json:"comment_count"`
	CommentedCount int `json:"commented_count"`
}
