package auth

import (
	"time"

	"github.com/ariebrainware/hospital-booking/util"
)

const msgUnauthorized = "Unauthorized access"

// Principal is the capability a caller presents to protected operations.
// The zero value is anonymous.
type Principal struct {
	Identity  Identity
	TokenID   string
	ExpiresAt time.Time
}

// Anonymous returns the unauthenticated principal.
func Anonymous() Principal {
	return Principal{}
}

// Authenticated reports whether p came from a successful login.
func (p Principal) Authenticated() bool {
	return p.Identity.Email != ""
}

// Require returns an Unauthorized AppError unless p is authenticated.
func (p Principal) Require() error {
	if !p.Authenticated() {
		return util.NewUnauthorizedError(msgUnauthorized)
	}
	return nil
}
