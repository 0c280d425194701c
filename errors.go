package identity

import (
	stderrors "errors"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials  = "identity_invalid_credentials"
	TextCodeCredentialExpired   = "identity_credential_expired"
	TextCodeCredentialMalformed = "identity_credential_malformed"
	TextCodeUnauthorized        = "identity_unauthorized"
	TextCodeEmailExists         = "identity_email_exists"
	TextCodeAlreadyVerified     = "identity_already_verified"
	TextCodeVerificationPending = "identity_verification_pending"
	TextCodeNotFound            = "identity_not_found"
)

// ErrInvalidCredentials is returned for any login failure. It deliberately
// does not reveal whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrCredentialExpired is returned when a token's expiry has passed. It is
// surfaced to callers only on the refresh path so clients can distinguish
// "log in again" from "retry".
var ErrCredentialExpired = errors.New("credential expired", errors.CategoryAuth).
	WithTextCode(TextCodeCredentialExpired).
	WithCode(errors.CodeUnauthorized)

// ErrCredentialMalformed covers every other decode failure: bad signature,
// wrong algorithm, missing claims, garbage input.
var ErrCredentialMalformed = errors.New("credential malformed", errors.CategoryAuth).
	WithTextCode(TextCodeCredentialMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthorized is the single external shape of every Authorize failure.
var ErrUnauthorized = errors.New("unauthorized", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrEmailAlreadyExists is returned when a signup email is already taken.
var ErrEmailAlreadyExists = errors.New("email already exists", errors.CategoryConflict).
	WithTextCode(TextCodeEmailExists).
	WithCode(errors.CodeConflict)

// ErrAlreadyVerified is returned when a verification token is redeemed after
// the subject has already been verified.
var ErrAlreadyVerified = errors.New("subject already verified", errors.CategoryConflict).
	WithTextCode(TextCodeAlreadyVerified).
	WithCode(errors.CodeConflict)

// ErrVerificationPending is returned when a live verification token already
// exists for the subject. Callers should treat it as already-pending, not as
// a hard failure.
var ErrVerificationPending = errors.New("verification already pending", errors.CategoryConflict).
	WithTextCode(TextCodeVerificationPending).
	WithCode(errors.CodeConflict)

// ErrNotFound is returned for unknown verification tokens and unknown
// subjects.
var ErrNotFound = errors.New("record not found", errors.CategoryNotFound).
	WithTextCode(TextCodeNotFound).
	WithCode(errors.CodeNotFound)

// ErrPasswordMismatch is the internal mismatch signal from the password
// verifier. The flow controller collapses it into ErrInvalidCredentials
// before it reaches a caller.
var ErrPasswordMismatch = errors.New("password does not match", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrEmptyPassword rejects empty plaintext before hashing.
var ErrEmptyPassword = errors.New("password must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// IsCredentialExpired reports whether err carries the expired text code
// anywhere in its chain.
func IsCredentialExpired(err error) bool {
	return errors.Is(err, ErrCredentialExpired) || hasTextCode(err, TextCodeCredentialExpired)
}

// IsCredentialMalformed reports whether err carries the malformed text code
// anywhere in its chain.
func IsCredentialMalformed(err error) bool {
	return errors.Is(err, ErrCredentialMalformed) || hasTextCode(err, TextCodeCredentialMalformed)
}

// IsVerificationPending reports whether err carries the pending text code
// anywhere in its chain.
func IsVerificationPending(err error) bool {
	return errors.Is(err, ErrVerificationPending) || hasTextCode(err, TextCodeVerificationPending)
}

func hasTextCode(err error, code string) bool {
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if richErr, ok := e.(*errors.Error); ok && richErr.TextCode == code {
			return true
		}
	}

	return false
}
