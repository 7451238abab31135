package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestVerifyPasswordBcrypt(t *testing.T) {
	digest, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, VerifyPassword("hunter2", string(digest)))
	assert.ErrorIs(t, VerifyPassword("wrong", string(digest)), ErrInvalidCredentials)
}

func TestVerifyPasswordHashRoundTrip(t *testing.T) {
	digest, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", digest)

	assert.NoError(t, VerifyPassword("correct horse", digest))
	assert.ErrorIs(t, VerifyPassword("battery staple", digest), ErrInvalidCredentials)
}

func TestVerifyPasswordSHA512Crypt(t *testing.T) {
	// "password" hashed with sha512-crypt (mkpasswd -m sha-512 -S saltsalt).
	const digest = "$6$saltsalt$qFmFH.bQmmtXzyBY0s9v7Oicd2z4XSIecDzlB5KiA2/jctKu9YterLp8wwnSq.qc.eoxqOmSuNp2xS0ktL3nh/"

	assert.NoError(t, VerifyPassword("password", digest))
	assert.ErrorIs(t, VerifyPassword("nope", digest), ErrInvalidCredentials)
}

func TestVerifyPasswordFailureModesLookAlike(t *testing.T) {
	digest, err := HashPassword("secret")
	require.NoError(t, err)

	wrongPassword := VerifyPassword("other", digest)
	emptyDigest := VerifyPassword("secret", "")
	unknownFormat := VerifyPassword("secret", "$y$j9T$unsupported")

	assert.Equal(t, wrongPassword, emptyDigest)
	assert.Equal(t, wrongPassword, unknownFormat)
}

func TestVerifyPasswordEmptyPassword(t *testing.T) {
	digest, err := HashPassword("secret")
	require.NoError(t, err)
	assert.ErrorIs(t, VerifyPassword("", digest), ErrInvalidCredentials)
}
