package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// BcryptCost is the work factor used when hashing account passwords.
const BcryptCost = 12

// ErrUserNotFound is returned when no account matches a username.
var ErrUserNotFound = errors.New("user not found")

// UserStore reads dashboard accounts. Accounts are provisioned out of
// band (see the hashpw command); this service never updates them.
type UserStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewUserStore creates a UserStore.
func NewUserStore(db *gorm.DB, logger *slog.Logger) (*UserStore, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &UserStore{db: db, logger: logger}, nil
}

// FindByUsername returns the account with the given username, or
// ErrUserNotFound.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

// Create inserts a new account with a bcrypt-hashed password. Used by
// seeding tooling and tests.
func (s *UserStore) Create(ctx context.Context, username, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := User{
		Username: username,
		Password: string(hash),
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", "username", username, "user_id", user.ID)
	return &user, nil
}
