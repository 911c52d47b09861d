package mailer

import "context"

// Mailer delivers account lifecycle emails through a transactional provider.
type Mailer interface {
	// SendVerification emails the verification link to the given address.
	// A non-nil error means the provider did not accept the message; the
	// caller decides whether that fails the surrounding operation.
	SendVerification(ctx context.Context, email, link string) error
}
