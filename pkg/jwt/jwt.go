package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/42piotrnycz/new-web-app/internal/domain"
)

// The two failure kinds are deliberately distinct: a malformed token means
// tampering or a bug, an expired one is a normal lifecycle event the client
// recovers from by refreshing.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

// TokenService signs and verifies access tokens with a process-wide HS256
// key. The key is immutable after construction; rotating it is a redeploy,
// which invalidates all outstanding access tokens.
type TokenService struct {
	secret    []byte
	accessTTL time.Duration
	issuer    string
}

func NewTokenService(secret []byte, accessTTL time.Duration, issuer string) *TokenService {
	return &TokenService{
		secret:    secret,
		accessTTL: accessTTL,
		issuer:    issuer,
	}
}

// AccessTTL returns the configured access token lifetime.
func (s *TokenService) AccessTTL() time.Duration {
	return s.accessTTL
}

// Issue mints a signed access token for the subject with its role claim.
func (s *TokenService) Issue(username string, role domain.Role) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.accessTTL)

	claims := domain.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify checks signature and structure. Expiry is reported as ErrTokenExpired
// and never collapses into ErrTokenMalformed.
func (s *TokenService) Verify(tokenString string) (*domain.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &domain.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*domain.Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
