package identity

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenClaims is the payload carried by both access and refresh credentials.
// Roles travel as a single space-joined claim so an empty role set
// serializes to an empty string rather than an absent claim.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"user_id"`
	Roles     string `json:"roles"`
	IsRefresh bool   `json:"is_refresh,omitempty"`
}

// RoleList splits the space-joined roles claim back into a list. An empty
// claim yields an empty list.
func (c *TokenClaims) RoleList() []string {
	return strings.Fields(c.Roles)
}

// JoinRoles flattens a role list into the wire form used by the roles claim.
func JoinRoles(roles []string) string {
	return strings.Join(roles, " ")
}

// TokenCodec encodes and decodes signed, expiring credentials. There is no
// revocation list; expiry is the only termination channel.
type TokenCodec struct {
	signingKey []byte
	method     jwt.SigningMethod
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     Logger
}

var _ CredentialCodec = (*TokenCodec)(nil)

// NewTokenCodec builds a codec from the shared configuration.
func NewTokenCodec(cfg Config) *TokenCodec {
	method := jwt.GetSigningMethod(cfg.signingMethod())
	if method == nil {
		method = jwt.SigningMethodHS256
	}

	return &TokenCodec{
		signingKey: []byte(cfg.SigningKey),
		method:     method,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		logger:     defLogger{},
	}
}

func (tc *TokenCodec) WithLogger(logger Logger) *TokenCodec {
	if logger != nil {
		tc.logger = logger
	}
	return tc
}

// IssueAccess mints an access credential carrying the subject's roles.
func (tc *TokenCodec) IssueAccess(subjectID int64, roles []string) (string, error) {
	return tc.issue(subjectID, roles, tc.accessTTL, false)
}

// IssueRefresh mints a refresh credential. It carries the same claims as an
// access token plus the is_refresh marker.
func (tc *TokenCodec) IssueRefresh(subjectID int64, roles []string) (string, error) {
	return tc.issue(subjectID, roles, tc.refreshTTL, true)
}

func (tc *TokenCodec) issue(subjectID int64, roles []string, ttl time.Duration, isRefresh bool) (string, error) {
	now := time.Now()

	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tc.issuer,
			Subject:   strconv.FormatInt(subjectID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    subjectID,
		Roles:     JoinRoles(roles),
		IsRefresh: isRefresh,
	}

	token := jwt.NewWithClaims(tc.method, claims)

	signed, err := token.SignedString(tc.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign credential")
	}

	return signed, nil
}

// Decode verifies the signature and expiry of a credential. An expired
// token fails with ErrCredentialExpired; every other failure, including an
// unexpected signing method, collapses into ErrCredentialMalformed.
func (tc *TokenCodec) Decode(raw string) (*TokenClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if tc.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(tc.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			tc.logger.Error("TokenCodec decode encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tc.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrCredentialExpired
		}
		return nil, errors.Wrap(err, ErrCredentialMalformed.Category, ErrCredentialMalformed.Message).
			WithTextCode(TextCodeCredentialMalformed)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		tc.logger.Error("TokenCodec decode could not map claims")
		return nil, ErrCredentialMalformed
	}

	return claims, nil
}
