package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/herald/pkg/types"
)

const testSecret = "test-secret"

// TestTokenRoundTrip tests minting and validating a recipient token
func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-42", "manager", time.Hour)
	require.NoError(t, err)

	recipient, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, types.Recipient{ID: "user-42", Role: "manager"}, recipient)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-42", "manager", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-42", "manager", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken(testSecret, "not.a.token")
	assert.Error(t, err)
}

func TestParseTokenDefaultsRole(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-42", "", time.Hour)
	require.NoError(t, err)

	recipient, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultRole, recipient.Role)
}

// TestSessionEnd tests the explicit end-of-session trigger
func TestSessionEnd(t *testing.T) {
	session := NewSession(types.Recipient{ID: "user-1"})
	assert.Equal(t, types.DefaultRole, session.Recipient().Role)

	select {
	case <-session.Done():
		t.Fatal("session ended prematurely")
	default:
	}

	session.End()
	session.End()

	select {
	case <-session.Done():
	case <-time.After(time.Second):
		t.Fatal("session did not end")
	}
}

// TestSessionFromToken tests that a token-backed session ends itself at
// token expiry
func TestSessionFromToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-42", "manager", 50*time.Millisecond)
	require.NoError(t, err)

	session, err := SessionFromToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", session.Recipient().ID)
	assert.Equal(t, "manager", session.Recipient().Role)

	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end at token expiry")
	}
}

func TestSessionFromTokenRejectsInvalid(t *testing.T) {
	_, err := SessionFromToken(testSecret, "garbage")
	assert.Error(t, err)
}
