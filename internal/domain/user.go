package domain

import "time"

// SubscriptionStarter is the tier every new account starts on.
const SubscriptionStarter = "starter"

// User represents a registered account.
//
// VerificationToken is present iff the account has not been verified yet; it
// is cleared in the same write that sets Verified. SessionToken holds the
// single currently valid bearer token, empty when logged out.
type User struct {
	ID                string
	Email             string
	PasswordHash      string
	Subscription      string
	AvatarURL         string
	Verified          bool
	VerificationToken string
	SessionToken      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
