package service

import (
	"context"
	"errors"
	"strings"

	"contacts-api/internal/mailer"
	"contacts-api/internal/repository"
)

// VerifyRoutePath is the route verification links point at; the token is
// appended as the final path segment.
const VerifyRoutePath = "/api/users/verify/"

// VerificationService drives the email verification workflow.
type VerificationService interface {
	// Send dispatches the verification link for token to email.
	Send(ctx context.Context, email, token string) error
	// Verify consumes token, marking the matching user as verified. A token
	// that was already consumed behaves exactly like an unknown one.
	Verify(ctx context.Context, token string) error
	// Resend re-dispatches the existing (not rotated) token for email.
	Resend(ctx context.Context, email string) error
}

type verificationService struct {
	users   repository.UserRepository
	mail    mailer.Mailer
	baseURL string
}

func NewVerificationService(users repository.UserRepository, mail mailer.Mailer, baseURL string) VerificationService {
	return &verificationService{
		users:   users,
		mail:    mail,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *verificationService) Send(ctx context.Context, email, token string) error {
	link := s.baseURL + VerifyRoutePath + token
	return s.mail.SendVerification(ctx, email, link)
}

func (s *verificationService) Verify(ctx context.Context, token string) error {
	if err := s.users.ConsumeVerificationToken(ctx, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *verificationService) Resend(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrMissingEmail
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Verified {
		return ErrAlreadyVerified
	}

	return s.Send(ctx, user.Email, user.VerificationToken)
}
