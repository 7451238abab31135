// Package auth verifies stored credentials and issues session tokens.
// Password hashing is delegated to external primitives; this package never
// stores or logs plaintext.
package auth

import (
	"errors"
	"strings"

	"github.com/GehirnInc/crypt"
	"github.com/GehirnInc/crypt/md5_crypt"
	"github.com/GehirnInc/crypt/sha256_crypt"
	"github.com/GehirnInc/crypt/sha512_crypt"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for every verification failure: unknown
// user, wrong password, and unsupported digest all look the same to callers,
// so the login page cannot be used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// VerifyPassword checks a plaintext password against a stored digest.
// Bcrypt is the primary format; $1$/$5$/$6$ crypt digests are accepted for
// rows imported from older systems.
func VerifyPassword(password, digest string) error {
	if password == "" || digest == "" {
		return ErrInvalidCredentials
	}
	if strings.HasPrefix(digest, "$2") {
		if bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) != nil {
			return ErrInvalidCredentials
		}
		return nil
	}
	for _, c := range []crypt.Crypter{sha512_crypt.New(), sha256_crypt.New(), md5_crypt.New()} {
		if err := c.Verify(digest, []byte(password)); err == nil {
			return nil
		}
	}
	return ErrInvalidCredentials
}

// HashPassword produces a bcrypt digest for new or updated users.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
