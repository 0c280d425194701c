package identity

import (
	"context"
	"fmt"
	"time"
)

// Logger is the minimal logging surface the package needs. Callers can plug
// in their own implementation through the WithLogger builders.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// CredentialCodec issues and verifies signed, expiring credentials.
type CredentialCodec interface {
	IssueAccess(subjectID int64, roles []string) (string, error)
	IssueRefresh(subjectID int64, roles []string) (string, error)
	Decode(raw string) (*TokenClaims, error)
}

// Notifier delivers a verification link to a subject through a side channel
// (email, queue, log). Failures are logged by callers, never propagated.
type Notifier interface {
	SendVerificationLink(ctx context.Context, subjectID int64, link string) error
}

// TokenPair is the artifact returned by Login. Refresh responses reuse the
// same shape with an empty refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// AccessGrant is the outcome of a successful Authorize call.
type AccessGrant struct {
	SubjectID int64    `json:"subject_id"`
	Roles     []string `json:"roles"`
}

// SweepReport summarizes a single reconciliation run.
type SweepReport struct {
	Candidates int       `json:"candidates"`
	Deleted    []int64   `json:"deleted"`
	RanAt      time.Time `json:"ran_at"`
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] IDENTITY "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] IDENTITY "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] IDENTITY "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] IDENTITY "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
