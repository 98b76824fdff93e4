package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueVerify(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	sessionID := NewSessionID()

	signed, expiresAt, err := svc.Issue(sessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, signed)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	got, err := svc.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, sessionID, got)
}

func TestTokenService_Verify_WrongSecret(t *testing.T) {
	signed, _, err := NewTokenService("secret-a", time.Hour).Issue(NewSessionID())
	require.NoError(t, err)

	_, err = NewTokenService("secret-b", time.Hour).Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Verify_Garbage(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	_, err := svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Verify("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Verify_Expired(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute)

	signed, _, err := svc.Issue(NewSessionID())
	require.NoError(t, err)

	_, err = svc.Verify(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestNewSessionID_Unique(t *testing.T) {
	assert.NotEqual(t, NewSessionID(), NewSessionID())
}
