package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/iliyamo/photo-feed/internal/model"
	"github.com/iliyamo/photo-feed/internal/repository"
	"github.com/iliyamo/photo-feed/internal/utils"
)

var (
	accountNamePattern = regexp.MustCompile(`^[0-9a-zA-Z]{3,}$`)
	passwordPattern    = regexp.MustCompile(`^[0-9a-zA-Z_]{6,}$`)
)

type accountStore interface {
	Create(ctx context.Context, accountName, passhash string) (uint64, error)
	GetActiveByAccountName(ctx context.Context, accountName string) (model.User, error)
	UpdatePasshash(ctx context.Context, id uint64, passhash string) error
}

type AuthService struct {
	users      accountStore
	bcryptCost int
	log        *zap.Logger
}

func NewAuthService(users accountStore, bcryptCost int, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, bcryptCost: bcryptCost, log: log}
}

// ValidateCredentials checks the account name and password formats.
func ValidateCredentials(accountName, password string) error {
	if !accountNamePattern.MatchString(accountName) || !passwordPattern.MatchString(password) {
		return ErrInvalidInput
	}
	return nil
}

// Register creates a normal account with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, accountName, password string) (model.User, error) {
	if err := ValidateCredentials(accountName, password); err != nil {
		return model.User{}, err
	}
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.users.Create(ctx, accountName, hash)
	if errors.Is(err, repository.ErrDuplicate) {
		return model.User{}, ErrAccountExists
	}
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return model.User{ID: id, AccountName: accountName, Passhash: hash}, nil
}

// Login authenticates an active account. A legacy digest is replaced by
// a bcrypt hash after a successful check; failing to store it does not
// fail the login.
func (s *AuthService) Login(ctx context.Context, accountName, password string) (model.User, error) {
	if accountName == "" || password == "" {
		return model.User{}, ErrInvalidCredentials
	}
	u, err := s.users.GetActiveByAccountName(ctx, accountName)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, fmt.Errorf("load user: %w", err)
	}
	ok, legacy := utils.CheckPasshash(u.Passhash, u.AccountName, password)
	if !ok {
		return model.User{}, ErrInvalidCredentials
	}
	if legacy {
		if hash, err := utils.HashPassword(password, s.bcryptCost); err == nil {
			if err := s.users.UpdatePasshash(ctx, u.ID, hash); err != nil {
				s.log.Warn("passhash upgrade failed", zap.Uint64("user_id", u.ID), zap.Error(err))
			} else {
				u.Passhash = hash
			}
		}
	}
	return u, nil
}
