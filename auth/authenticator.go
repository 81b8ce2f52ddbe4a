// Package auth verifies admin credentials and issues the capability that
// protected booking operations require.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"github.com/ariebrainware/hospital-booking/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed verification. It never
// says which half of the credential pair was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identity is who a successful verification authenticated.
type Identity struct {
	Email string `json:"email"`
}

// Authenticator verifies credentials. Implementations must be safe for concurrent use.
type Authenticator interface {
	Verify(ctx context.Context, creds Credentials) (Identity, error)
}

// StaticAdmin accepts a single configured email and plaintext password. Both
// are compared byte for byte.
type StaticAdmin struct {
	Email    string
	Password string
}

func (a StaticAdmin) Verify(_ context.Context, creds Credentials) (Identity, error) {
	if a.Email == "" || a.Password == "" || creds.Email == "" || creds.Password == "" {
		return Identity{}, ErrInvalidCredentials
	}
	emailOK := subtle.ConstantTimeCompare([]byte(creds.Email), []byte(a.Email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(creds.Password), []byte(a.Password)) == 1
	if !emailOK || !passOK {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{Email: a.Email}, nil
}

// BcryptAdmin accepts a single configured email whose password is stored as a bcrypt hash.
type BcryptAdmin struct {
	Email        string
	PasswordHash string
}

func (a BcryptAdmin) Verify(_ context.Context, creds Credentials) (Identity, error) {
	if a.Email == "" || a.PasswordHash == "" || creds.Password == "" {
		return Identity{}, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(creds.Email), []byte(a.Email)) != 1 {
		return Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(creds.Password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{Email: a.Email}, nil
}

// NewAuthenticator picks BcryptAdmin when ADMIN_PASSWORD_HASH is set and
// StaticAdmin otherwise.
func NewAuthenticator(cfg *config.Config) Authenticator {
	if cfg.AdminPasswordHash != "" {
		return BcryptAdmin{Email: cfg.AdminEmail, PasswordHash: cfg.AdminPasswordHash}
	}
	return StaticAdmin{Email: cfg.AdminEmail, Password: cfg.AdminPassword}
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}
