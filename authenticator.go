package identity

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// Authenticator orchestrates login, refresh, per-request authorization, and
// the signup side-effect chain. It holds no mutable state of its own; every
// call stands alone apart from store reads and writes, so concurrent calls
// for the same subject simply produce independent artifacts.
type Authenticator struct {
	repo         RepositoryManager
	codec        CredentialCodec
	resolver     *RoleResolver
	verification *VerificationManager
	notifier     Notifier
	defaultRole  string
	linkBaseURL  string
	logger       Logger
}

// NewAuthenticator wires the flow controller from the repository manager and
// shared configuration.
func NewAuthenticator(repo RepositoryManager, cfg Config) *Authenticator {
	logger := defLogger{}

	return &Authenticator{
		repo:         repo,
		codec:        NewTokenCodec(cfg),
		resolver:     NewRoleResolver(repo.Roles()),
		verification: NewVerificationManager(repo, cfg),
		notifier:     NewLogNotifier(logger),
		defaultRole:  cfg.DefaultRole,
		linkBaseURL:  cfg.VerificationBaseURL,
		logger:       logger,
	}
}

func (a *Authenticator) WithLogger(logger Logger) *Authenticator {
	if logger != nil {
		a.logger = logger
		a.resolver.WithLogger(logger)
		a.verification.WithLogger(logger)
	}
	return a
}

// WithCodec swaps the credential codec, e.g. for externally issued keys.
func (a *Authenticator) WithCodec(codec CredentialCodec) *Authenticator {
	if codec != nil {
		a.codec = codec
	}
	return a
}

// WithNotifier sets the side channel that delivers verification links.
func (a *Authenticator) WithNotifier(notifier Notifier) *Authenticator {
	if notifier != nil {
		a.notifier = notifier
	}
	return a
}

// Verification exposes the verification manager for callers that drive the
// redeem and sweep paths directly.
func (a *Authenticator) Verification() *VerificationManager {
	return a.verification
}

// Login checks the subject's credentials and mints an access/refresh pair.
// A missing subject and a wrong password are indistinguishable: both
// collapse into ErrInvalidCredentials.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := a.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			a.logger.Debug("login rejected: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up subject during login")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			a.logger.Debug("login rejected: password mismatch for user %d", user.ID)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	roles, err := a.resolver.RolesOf(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve roles during login")
	}

	access, err := a.codec.IssueAccess(user.ID, roles)
	if err != nil {
		return nil, err
	}

	refresh, err := a.codec.IssueRefresh(user.ID, roles)
	if err != nil {
		return nil, err
	}

	a.logger.Info("login succeeded for user %d", user.ID)

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

// Refresh exchanges a valid refresh credential for a new access token. The
// roles embedded in the refresh token are reused as-is; they are not
// re-queried. An expired refresh token surfaces ErrCredentialExpired so the
// client knows to log in again; every other failure, including presenting a
// non-refresh token, collapses into ErrInvalidCredentials.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := a.codec.Decode(refreshToken)
	if err != nil {
		if IsCredentialExpired(err) {
			return nil, ErrCredentialExpired
		}
		a.logger.Debug("refresh rejected: malformed credential")
		return nil, ErrInvalidCredentials
	}

	if !claims.IsRefresh {
		a.logger.Debug("refresh rejected: credential for user %d is not a refresh credential", claims.UserID)
		return nil, ErrInvalidCredentials
	}

	access, err := a.codec.IssueAccess(claims.UserID, claims.RoleList())
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken: access,
		TokenType:   "bearer",
	}, nil
}

// Authorize gates a request: it decodes the access credential and checks
// the required scopes against the roles it carries. Every failure surfaces
// as ErrUnauthorized; the internal reason (expired, malformed, insufficient
// scope) is only logged.
func (a *Authenticator) Authorize(ctx context.Context, accessToken string, requiredScopes []string) (*AccessGrant, error) {
	claims, err := a.codec.Decode(accessToken)
	if err != nil {
		reason := "malformed credential"
		if IsCredentialExpired(err) {
			reason = "expired credential"
		}
		a.logger.Debug("authorize rejected: %s", reason)
		return nil, ErrUnauthorized
	}

	roles := claims.RoleList()

	if !a.resolver.Authorize(roles, requiredScopes) {
		a.logger.Debug("authorize rejected: user %d missing required scopes %v", claims.UserID, requiredScopes)
		return nil, ErrUnauthorized
	}

	return &AccessGrant{
		SubjectID: claims.UserID,
		Roles:     roles,
	}, nil
}

// Signup creates the subject and then runs the follow-up chain: issue a
// verification token, hand the link to the notifier, grant the default
// role. Subject creation alone decides success; follow-up failures are
// logged and never undo the created record.
func (a *Authenticator) Signup(ctx context.Context, email, password string) (*User, error) {
	if err := validateSignup(email, password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := a.repo.Users().Create(ctx, &User{
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	a.signupFollowups(ctx, user)

	return user, nil
}

func (a *Authenticator) signupFollowups(ctx context.Context, user *User) {
	record, err := a.verification.Issue(ctx, user.ID)
	switch {
	case err == nil:
		link := a.verificationLink(record.Token)
		if err := a.notifier.SendVerificationLink(ctx, user.ID, link); err != nil {
			a.logger.Warn("failed to deliver verification link for user %d: %v", user.ID, err)
		}
	case IsVerificationPending(err):
		a.logger.Debug("verification already pending for user %d", user.ID)
	default:
		a.logger.Error("failed to issue verification for user %d: %v", user.ID, err)
	}

	if err := a.grantDefaultRole(ctx, user.ID); err != nil {
		a.logger.Error("failed to grant default role to user %d: %v", user.ID, err)
	}
}

func (a *Authenticator) grantDefaultRole(ctx context.Context, userID int64) error {
	role, err := a.repo.Roles().GetByName(ctx, a.defaultRole)
	if err != nil {
		return err
	}

	if err := a.repo.Roles().Grant(ctx, userID, role.ID); err != nil {
		if errors.Is(err, ErrRoleAlreadyGranted) {
			return nil
		}
		return err
	}

	return nil
}

// VerifyAccount redeems a verification token on behalf of the excluded HTTP
// layer and returns the confirmed subject id.
func (a *Authenticator) VerifyAccount(ctx context.Context, token string) (int64, error) {
	return a.verification.Redeem(ctx, token)
}

// SeedAdmin bootstraps a verified administrator account with the admin
// role. Intended for first-run seeding. An empty password stores an
// unguessable filler digest; the account cannot be logged into until a real
// password replaces it.
func (a *Authenticator) SeedAdmin(ctx context.Context, email, password string) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	hash := RandomPasswordHash()
	if password != "" {
		var err error
		if hash, err = HashPassword(password); err != nil {
			return nil, err
		}
	}

	user, err := a.repo.Users().Create(ctx, &User{
		Email:        email,
		PasswordHash: hash,
		IsVerified:   true,
	})
	if err != nil {
		return nil, err
	}

	role, err := a.repo.Roles().GetByName(ctx, RoleAdmin)
	if err != nil {
		return nil, err
	}

	if err := a.repo.Roles().Grant(ctx, user.ID, role.ID); err != nil && !errors.Is(err, ErrRoleAlreadyGranted) {
		return nil, err
	}

	return user, nil
}

func (a *Authenticator) verificationLink(token string) string {
	if a.linkBaseURL == "" {
		return token
	}
	return fmt.Sprintf("%s?token=%s", a.linkBaseURL, token)
}

func validateSignup(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}

	if err := validation.Validate(password, validation.Required); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid password").
			WithCode(errors.CodeBadRequest)
	}

	return nil
}

func validateEmail(email string) error {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid email").
			WithCode(errors.CodeBadRequest)
	}

	return nil
}
