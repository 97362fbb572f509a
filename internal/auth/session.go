package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"resumai/internal/common"
)

// Session errors. Expired and otherwise-invalid tokens are distinguished so
// clients can tell "sign in again" apart from "malformed credential".
var (
	ErrSessionExpired = fmt.Errorf("session expired: %w", common.ErrUnauthorized)
	ErrSessionInvalid = fmt.Errorf("session invalid: %w", common.ErrUnauthorized)
)

type sessionClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Sessions{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed session token for the user.
func (s *Sessions) Issue(userID, email string) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", common.NewAppError("SESSION_SIGN", "sign session token", err)
	}
	return signed, nil
}

// Verify parses a session token and returns the user it belongs to.
func (s *Sessions) Verify(rawToken string) (userID, email string, err error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", ErrSessionExpired
		}
		return "", "", ErrSessionInvalid
	}
	if !token.Valid || claims.UserID == "" {
		return "", "", ErrSessionInvalid
	}
	return claims.UserID, claims.Email, nil
}
