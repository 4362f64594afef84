package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiredLocally reports whether raw is a parseable JWT whose exp claim has
// already passed. Opaque or malformed tokens report false: their expiry is
// the gateway's call, made during validation. The signature is deliberately
// not checked here; this is an optimization that skips a validate round trip
// the gateway would reject anyway.
func expiredLocally(raw string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
