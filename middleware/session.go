package middleware

import (
	"strings"
	"time"

	"github.com/ariebrainware/hospital-booking/auth"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	SessionName = "hospital_session"

	principalKey      = "principal"
	sessionLoggedIn   = "logged_in"
	sessionEmail      = "email"
	sessionTokenID    = "jti"
	sessionExpiresAt  = "exp"
	bearerTokenPrefix = "Bearer "
)

// Sessions installs the signed cookie session store.
func Sessions(secret string, maxAge time.Duration, secure bool) gin.HandlerFunc {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
	})
	return sessions.Sessions(SessionName, store)
}

// SessionGuard resolves the caller's principal from the cookie session or an
// Authorization bearer token and stores it on the context. It never aborts;
// protected operations decide what an anonymous principal may do.
func SessionGuard(tokens *auth.TokenIssuer, revoker *auth.Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := principalFromSession(c)
		if !p.Authenticated() {
			p = principalFromBearer(c, tokens)
		}

		if p.Authenticated() && p.TokenID != "" {
			revoked, err := revoker.IsRevoked(c.Request.Context(), p.TokenID)
			if err != nil {
				log.Warn().Err(err).Msg("token revocation check failed")
			}
			if err != nil || revoked {
				p = auth.Anonymous()
			}
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

func principalFromSession(c *gin.Context) auth.Principal {
	session := sessions.Default(c)
	if loggedIn, _ := session.Get(sessionLoggedIn).(bool); !loggedIn {
		return auth.Anonymous()
	}
	email, _ := session.Get(sessionEmail).(string)
	jti, _ := session.Get(sessionTokenID).(string)
	exp, _ := session.Get(sessionExpiresAt).(int64)

	p := auth.Principal{Identity: auth.Identity{Email: email}, TokenID: jti}
	if exp > 0 {
		p.ExpiresAt = time.Unix(exp, 0)
		if time.Now().After(p.ExpiresAt) {
			return auth.Anonymous()
		}
	}
	return p
}

func principalFromBearer(c *gin.Context, tokens *auth.TokenIssuer) auth.Principal {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerTokenPrefix) {
		return auth.Anonymous()
	}
	p, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(header, bearerTokenPrefix)))
	if err != nil {
		return auth.Anonymous()
	}
	return p
}

// GetPrincipal returns the principal SessionGuard stored, or Anonymous.
func GetPrincipal(c *gin.Context) auth.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(auth.Principal); ok {
			return p
		}
	}
	return auth.Anonymous()
}

// StartSession marks the cookie session authenticated for p.
func StartSession(c *gin.Context, p auth.Principal) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionLoggedIn, true)
	session.Set(sessionEmail, p.Identity.Email)
	session.Set(sessionTokenID, p.TokenID)
	session.Set(sessionExpiresAt, p.ExpiresAt.Unix())
	return session.Save()
}

// EndSession clears the cookie session.
func EndSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}
