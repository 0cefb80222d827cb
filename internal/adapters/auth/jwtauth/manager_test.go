package jwtauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coffee-with-me/internal/ports/auth"
)

func TestManager_IssueAndVerify(t *testing.T) {
	m, err := NewManager("s3cret", "coffee-with-me", time.Hour)
	require.NoError(t, err)

	token, expiresIn, err := m.Issue(auth.Claims{UserID: 42, Username: "ana", Email: "ana@ntnu.no"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(3600), expiresIn)

	claims, err := m.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{UserID: 42, Username: "ana", Email: "ana@ntnu.no"}, claims)
}

func TestManager_RejectsForeignSecret(t *testing.T) {
	issuer, _ := NewManager("one", "", time.Hour)
	verifier, _ := NewManager("two", "", time.Hour)

	token, _, err := issuer.Issue(auth.Claims{UserID: 1})
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestManager_RejectsExpired(t *testing.T) {
	m, _ := NewManager("s3cret", "", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := m.Issue(auth.Claims{UserID: 1})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(context.Background(), token)
	assert.Error(t, err)
}

func TestManager_Validation(t *testing.T) {
	_, err := NewManager(" ", "", 0)
	assert.ErrorIs(t, err, ErrSecretRequired)

	m, _ := NewManager("s3cret", "", 0)
	_, _, err = m.Issue(auth.Claims{})
	assert.ErrorIs(t, err, ErrInvalidSubject)

	_, err = m.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrTokenEmpty)
}
