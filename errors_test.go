package identity_test

import (
	"testing"

	"github.com/ashkov/go-identity"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorHelpers(t *testing.T) {
	assert.True(t, identity.IsCredentialExpired(identity.ErrCredentialExpired))
	assert.False(t, identity.IsCredentialExpired(identity.ErrCredentialMalformed))
	assert.False(t, identity.IsCredentialExpired(nil))

	assert.True(t, identity.IsCredentialMalformed(identity.ErrCredentialMalformed))
	assert.False(t, identity.IsCredentialMalformed(identity.ErrCredentialExpired))

	assert.True(t, identity.IsVerificationPending(identity.ErrVerificationPending))
	assert.False(t, identity.IsVerificationPending(identity.ErrNotFound))
}

func TestErrorHelpersSeeThroughWrapping(t *testing.T) {
	wrapped := goerrors.Wrap(identity.ErrCredentialExpired, goerrors.CategoryAuth, "while refreshing")
	assert.True(t, identity.IsCredentialExpired(wrapped))
}

func TestErrorTextCodes(t *testing.T) {
	assert.Equal(t, identity.TextCodeInvalidCredentials, identity.ErrInvalidCredentials.TextCode)
	assert.Equal(t, identity.TextCodeCredentialExpired, identity.ErrCredentialExpired.TextCode)
	assert.Equal(t, identity.TextCodeUnauthorized, identity.ErrUnauthorized.TextCode)
	assert.Equal(t, identity.TextCodeEmailExists, identity.ErrEmailAlreadyExists.TextCode)
}
