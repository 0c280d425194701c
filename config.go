package identity

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Config carries the process-wide settings the core needs. It is built once
// at startup, validated, and passed to constructors; nothing in the package
// mutates it afterwards.
type Config struct {
	// SigningKey is the shared HMAC secret used for both token kinds.
	SigningKey string
	// SigningMethod names the JWT algorithm, e.g. "HS256".
	SigningMethod string
	// Issuer is stamped into every credential.
	Issuer string

	// AccessTokenTTL bounds access tokens (minutes-scale in practice).
	AccessTokenTTL time.Duration
	// RefreshTokenTTL bounds refresh tokens (hours-scale in practice).
	RefreshTokenTTL time.Duration
	// VerificationTTL bounds email verification tokens (days-scale).
	VerificationTTL time.Duration

	// DefaultRole is granted to every new signup.
	DefaultRole string

	// SweepSchedule is a cron spec for the expiry reconciliation task,
	// e.g. "@every 12h".
	SweepSchedule string
	// SweepGrace extends a verification token's life for sweep selection
	// only; a token is a deletion candidate once expires_at+grace < now.
	SweepGrace time.Duration

	// VerificationBaseURL prefixes verification links handed to the
	// notifier, e.g. "https://example.com/verify".
	VerificationBaseURL string
}

// Validate checks that the configuration is complete enough to construct
// the package's components.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SigningKey, validation.Required),
		validation.Field(&c.AccessTokenTTL, validation.Required),
		validation.Field(&c.RefreshTokenTTL, validation.Required),
		validation.Field(&c.VerificationTTL, validation.Required),
		validation.Field(&c.DefaultRole, validation.Required),
	)
}

func (c Config) signingMethod() string {
	if c.SigningMethod == "" {
		return "HS256"
	}
	return c.SigningMethod
}

func (c Config) sweepSchedule() string {
	if c.SweepSchedule == "" {
		return "@every 12h"
	}
	return c.SweepSchedule
}
