package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPair is what a successful login or refresh hands back: a short-lived
// signed access token and the raw value of the freshly minted refresh session.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Claims is the access token payload. Subject carries the username; Role is
// trusted as issued, so a role change takes effect once the token expires.
type Claims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}
