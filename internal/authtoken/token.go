// Package authtoken inspects access tokens handed over by the authenticator.
// The subsystem trusts those tokens as-is; the only thing read out of them
// is the expiry window used to time-box cached credentials.
package authtoken

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expiry returns the expiry carried in a JWT access token. The token is
// parsed without signature verification: the authenticator already vouched
// for it, and only the time window matters here. For opaque tokens or
// tokens without an exp claim it returns (zero, false).
func Expiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
