package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"contacts-api/internal/auth"
	"contacts-api/internal/avatar"
	"contacts-api/internal/domain"
	"contacts-api/internal/repository"
	"contacts-api/internal/storage"
)

// UserService describes account lifecycle and session operations.
type UserService interface {
	Signup(ctx context.Context, email, password string) (*domain.User, error)
	// Login returns a fresh bearer token, overwriting any previous session.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Logout(ctx context.Context, userID string) error
	Current(ctx context.Context, userID string) (*domain.User, error)
	UpdateAvatar(ctx context.Context, userID string, upload io.Reader, originalName string) (string, error)

	// Authorize resolves a presented bearer token to a user. The token must
	// verify and must equal the user's currently stored session token.
	Authorize(ctx context.Context, token string) (*domain.User, error)
}

// UserConfig carries the collaborators of the user service.
type UserConfig struct {
	Users         repository.UserRepository
	Tokens        *auth.TokenIssuer
	Verification  VerificationService
	Avatars       *avatar.Pipeline
	Mirror        storage.Service // optional
	MirrorOptions storage.UploadOptions
	Logger        *logrus.Logger
}

type userService struct {
	users         repository.UserRepository
	tokens        *auth.TokenIssuer
	verification  VerificationService
	avatars       *avatar.Pipeline
	mirror        storage.Service
	mirrorOptions storage.UploadOptions
	logger        *logrus.Logger
}

func NewUserService(cfg UserConfig) UserService {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &userService{
		users:         cfg.Users,
		tokens:        cfg.Tokens,
		verification:  cfg.Verification,
		avatars:       cfg.Avatars,
		mirror:        cfg.Mirror,
		mirrorOptions: cfg.MirrorOptions,
		logger:        logger,
	}
}

func (s *userService) Signup(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:                uuid.NewString(),
		Email:             email,
		PasswordHash:      hash,
		Subscription:      domain.SubscriptionStarter,
		AvatarURL:         GravatarURL(email),
		Verified:          false,
		VerificationToken: uuid.NewString(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}

	// The account exists from here on; a failed dispatch is logged and the
	// user can request a resend.
	if err := s.verification.Send(ctx, user.Email, user.VerificationToken); err != nil {
		s.logger.Warnf("send verification email to %s: %v", user.Email, err)
	}

	return sanitizeUser(user), nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue session token: %w", err)
	}

	// Last login wins: the previous session token, if any, is overwritten
	// and stops authenticating.
	if err := s.users.SetSessionToken(ctx, user.ID, token); err != nil {
		return "", nil, err
	}

	return token, sanitizeUser(user), nil
}

func (s *userService) Logout(ctx context.Context, userID string) error {
	if err := s.users.SetSessionToken(ctx, userID, ""); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotAuthorized
		}
		return err
	}
	return nil
}

func (s *userService) Current(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID string, upload io.Reader, originalName string) (string, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotAuthorized
		}
		return "", err
	}

	result, err := s.avatars.Process(userID, upload, originalName)
	if err != nil {
		return "", err
	}

	if err := s.users.SetAvatarURL(ctx, userID, result.URL); err != nil {
		return "", err
	}

	if s.mirror != nil {
		if _, err := s.mirror.UploadFile(ctx, result.Path, result.FileName, s.mirrorOptions); err != nil {
			s.logger.Warnf("mirror avatar %s: %v", result.FileName, err)
		}
	}

	return result.URL, nil
}

func (s *userService) Authorize(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrNotAuthorized
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotAuthorized
		}
		return nil, err
	}

	// Single active session: the literal token must match the stored one,
	// so tokens superseded by a newer login or cleared by logout fail here
	// even while cryptographically valid.
	if user.SessionToken == "" || user.SessionToken != token {
		return nil, ErrNotAuthorized
	}

	return sanitizeUser(user), nil
}

// GravatarURL derives the default placeholder avatar for an email.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=200&r=pg&d=mm", hex.EncodeToString(sum[:]))
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:           user.ID,
		Email:        user.Email,
		Subscription: user.Subscription,
		AvatarURL:    user.AvatarURL,
		Verified:     user.Verified,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}
