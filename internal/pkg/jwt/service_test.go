package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACService_RoundTrip(t *testing.T) {
	svc := NewHMACService("secret", time.Hour, "jobmatch")
	id := uuid.New()

	tok, err := svc.GenerateAccessToken(id, "candidate")
	require.NoError(t, err)

	c, err := svc.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, id, c.PrincipalID)
	assert.Equal(t, "candidate", c.Role)
	assert.Equal(t, TokenTypeAccess, c.TokenType)
}

func TestHMACService_Expired(t *testing.T) {
	svc := NewHMACService("secret", time.Minute, "jobmatch")
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }

	tok, err := svc.GenerateAccessToken(uuid.New(), "recruiter")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestHMACService_WrongSecret(t *testing.T) {
	a := NewHMACService("secret-a", time.Hour, "jobmatch")
	b := NewHMACService("secret-b", time.Hour, "jobmatch")

	tok, err := a.GenerateAccessToken(uuid.New(), "candidate")
	require.NoError(t, err)

	_, err = b.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = b.ValidateToken("")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = b.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHMACService_RequiresSecret(t *testing.T) {
	_, err := NewHMACService("", time.Hour, "jobmatch").GenerateAccessToken(uuid.New(), "candidate")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
