package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParseHS256(t *testing.T) {
	secret := []byte("0123456789abcdef0123456789abcdef")

	tok, err := SignHS256(secret, "a@x.com", "Alex", "Manager", time.Hour)
	require.NoError(t, err)

	cl, err := ParseHS256(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", cl.Email)
	assert.Equal(t, "Alex", cl.Name)
	assert.Equal(t, "Manager", cl.Role)
	assert.Equal(t, DefaultIssuer, cl.Issuer)
}

func TestParseHS256RejectsWrongSecret(t *testing.T) {
	tok, err := SignHS256([]byte("0123456789abcdef"), "a@x.com", "Alex", "Manager", time.Hour)
	require.NoError(t, err)

	_, err = ParseHS256([]byte("fedcba9876543210"), tok)
	assert.Error(t, err)
}

func TestParseHS256RejectsExpired(t *testing.T) {
	secret := []byte("0123456789abcdef")
	tok, err := SignHS256(secret, "a@x.com", "Alex", "Manager", -2*time.Minute)
	require.NoError(t, err)

	_, err = ParseHS256(secret, tok)
	assert.Error(t, err)
}

func TestParseHS256RejectsGarbage(t *testing.T) {
	_, err := ParseHS256([]byte("0123456789abcdef"), "not-a-token")
	assert.Error(t, err)
}

func TestNewRandomSecretB64(t *testing.T) {
	a, err := NewRandomSecretB64(32)
	require.NoError(t, err)
	b, err := NewRandomSecretB64(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}
