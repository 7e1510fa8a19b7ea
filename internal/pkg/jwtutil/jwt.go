// Package jwtutil issues and verifies the HS256 session tokens carried in
// `Authorization: Bearer <token>` headers.
package jwtutil

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("authentication required")
	ErrTokenExpired = errors.New("session expired, please login again")
	ErrTokenInvalid = errors.New("invalid token")
)

const bearerPrefix = "Bearer "

type Claims struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the caller derived from a verified token.
type Identity struct {
	UserID    uint
	Username  string
	ExpiresAt time.Time
}

func GenerateToken(secret string, ttl time.Duration, userID uint, username string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token failed: %w", err)
	}
	return signed, expiresAt, nil
}

// ParseToken verifies signature and expiry. Failures are reported as
// ErrTokenExpired or ErrTokenInvalid.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Verifier holds the process-wide signing secret. It is read-only after
// construction and safe for concurrent use.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Verify accepts the raw Authorization header value.
func (v *Verifier) Verify(authHeader string) (*Identity, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" || !strings.HasPrefix(authHeader, bearerPrefix) {
		return nil, ErrMissingToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if token == "" {
		return nil, ErrMissingToken
	}
	return v.VerifyToken(token)
}

func (v *Verifier) VerifyToken(token string) (*Identity, error) {
	claims, err := ParseToken(v.secret, token)
	if err != nil {
		return nil, err
	}
	identity := &Identity{UserID: claims.UserID, Username: claims.Username}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}
