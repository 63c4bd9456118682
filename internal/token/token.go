package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, malformed input, or past expiry.
var ErrInvalidToken = errors.New("invalid token")

// Service issues and verifies signed bearer tokens. Tokens are stateless:
// nothing is persisted and each request is verified by signature and expiry.
type Service struct {
	secret []byte
	ttl    time.Duration
}

// New creates a token service signing with the given secret.
// ttl is the lifetime applied to every issued token.
func New(secret string, ttl time.Duration) *Service {
	return &Service{secret: []byte(secret), ttl: ttl}
}

// Claims is the payload carried by issued tokens.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Issue signs a token carrying the user id with HS256.
func (s *Service) Issue(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the embedded user id.
func (s *Service) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
