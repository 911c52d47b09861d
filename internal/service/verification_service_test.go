package service

import (
	"context"
	"errors"
	"testing"

	"contacts-api/internal/domain"
)

func seedUnverified(t *testing.T, repo *memoryUserRepo, email, token string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:                "id-" + email,
		Email:             email,
		PasswordHash:      "x",
		Subscription:      domain.SubscriptionStarter,
		VerificationToken: token,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestVerify_ConsumesTokenOnce(t *testing.T) {
	t.Parallel()

	repo := newMemoryUserRepo()
	mail := &fakeMailer{}
	svc := NewVerificationService(repo, mail, testBaseURL)
	ctx := context.Background()

	user := seedUnverified(t, repo, "a@x.com", "tok-1")

	if err := svc.Verify(ctx, "tok-1"); err != nil {
		t.Fatalf("Verify error: %v", err)
	}

	stored, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("stored user lookup: %v", err)
	}
	if !stored.Verified {
		t.Fatalf("user must be verified after token consumption")
	}
	if stored.VerificationToken != "" {
		t.Fatalf("token must be cleared together with verification")
	}

	// Consumed tokens are indistinguishable from unknown ones.
	if err := svc.Verify(ctx, "tok-1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("second Verify: expected ErrUserNotFound, got %v", err)
	}
}

func TestVerify_UnknownToken(t *testing.T) {
	t.Parallel()

	svc := NewVerificationService(newMemoryUserRepo(), &fakeMailer{}, testBaseURL)

	if err := svc.Verify(context.Background(), "never-issued"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := svc.Verify(context.Background(), ""); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("empty token: expected ErrUserNotFound, got %v", err)
	}
}

func TestResend_UsesExistingToken(t *testing.T) {
	t.Parallel()

	repo := newMemoryUserRepo()
	mail := &fakeMailer{}
	svc := NewVerificationService(repo, mail, testBaseURL+"/") // trailing slash must not double up
	ctx := context.Background()

	seedUnverified(t, repo, "a@x.com", "tok-orig")

	if err := svc.Resend(ctx, "a@x.com"); err != nil {
		t.Fatalf("Resend error: %v", err)
	}

	sent := mail.sentMails()
	if len(sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(sent))
	}
	want := testBaseURL + VerifyRoutePath + "tok-orig"
	if sent[0].link != want {
		t.Fatalf("resend link: got %q want %q (token must not rotate)", sent[0].link, want)
	}
}

func TestResend_MissingEmail(t *testing.T) {
	t.Parallel()

	svc := NewVerificationService(newMemoryUserRepo(), &fakeMailer{}, testBaseURL)

	if err := svc.Resend(context.Background(), ""); !errors.Is(err, ErrMissingEmail) {
		t.Fatalf("expected ErrMissingEmail, got %v", err)
	}
	if err := svc.Resend(context.Background(), "   "); !errors.Is(err, ErrMissingEmail) {
		t.Fatalf("blank email: expected ErrMissingEmail, got %v", err)
	}
}

func TestResend_UnknownEmail(t *testing.T) {
	t.Parallel()

	svc := NewVerificationService(newMemoryUserRepo(), &fakeMailer{}, testBaseURL)

	if err := svc.Resend(context.Background(), "ghost@x.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestResend_AlreadyVerified(t *testing.T) {
	t.Parallel()

	repo := newMemoryUserRepo()
	mail := &fakeMailer{}
	svc := NewVerificationService(repo, mail, testBaseURL)
	ctx := context.Background()

	seedUnverified(t, repo, "a@x.com", "tok-1")
	if err := svc.Verify(ctx, "tok-1"); err != nil {
		t.Fatalf("Verify error: %v", err)
	}

	if err := svc.Resend(ctx, "a@x.com"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
	if len(mail.sentMails()) != 0 {
		t.Fatalf("no mail must be sent to a verified account")
	}
}

func TestResend_DispatchFailureSurfaces(t *testing.T) {
	t.Parallel()

	repo := newMemoryUserRepo()
	mail := &fakeMailer{err: errors.New("provider down")}
	svc := NewVerificationService(repo, mail, testBaseURL)

	seedUnverified(t, repo, "a@x.com", "tok-1")

	if err := svc.Resend(context.Background(), "a@x.com"); err == nil {
		t.Fatalf("dispatch failure must be reported to the caller")
	}
}
