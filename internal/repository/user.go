package repository

import (
	"context"
	"errors"

	"contacts-api/internal/domain"
)

var (
	// ErrNotFound is returned when no user matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when creating a user whose email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines persistence operations for User entities.
//
// The Set/Consume methods are single-statement updates so that concurrent
// requests touching the same user cannot observe a partial write; session
// token overwrite is last-writer-wins.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*domain.User, error)

	// SetSessionToken overwrites the stored session token; an empty token
	// logs the user out.
	SetSessionToken(ctx context.Context, id, token string) error

	SetAvatarURL(ctx context.Context, id, url string) error

	// ConsumeVerificationToken atomically clears the token and marks the
	// matching user as verified. Returns ErrNotFound when no user holds the
	// token, which is also the case for tokens already consumed.
	ConsumeVerificationToken(ctx context.Context, token string) error
}
