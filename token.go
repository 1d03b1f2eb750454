package portalauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired inspects a persisted access token for a past exp claim without
// verifying the signature; the token is otherwise opaque to this client. A
// token that does not parse as a JWT, or carries no exp claim, yields no local
// staleness signal and is left for the backend to judge.
func tokenExpired(raw string, now time.Time) bool {
	if raw == "" {
		return true
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return exp.Time.Before(now)
}
