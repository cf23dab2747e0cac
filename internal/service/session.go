package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/msomdec/movie-library/internal/domain"
)

// SessionCodec signs session state into a token for the session cookie and
// verifies it on the way back in.
type SessionCodec struct {
	secret []byte
	maxAge time.Duration
}

type sessionClaims struct {
	UserID  string         `json:"user_id,omitempty"`
	Email   string         `json:"email,omitempty"`
	Theme   string         `json:"theme,omitempty"`
	CSRF    string         `json:"csrf,omitempty"`
	Flashes []domain.Flash `json:"flashes,omitempty"`
	jwt.RegisteredClaims
}

// NewSessionCodec creates a codec signing with HMAC-SHA256.
func NewSessionCodec(secret string, maxAge time.Duration) *SessionCodec {
	return &SessionCodec{secret: []byte(secret), maxAge: maxAge}
}

// MaxAge is how long an encoded session stays valid.
func (c *SessionCodec) MaxAge() time.Duration {
	return c.maxAge
}

// Encode returns the signed token for s.
func (c *SessionCodec) Encode(s *domain.Session) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UserID:  s.UserID,
		Email:   s.Email,
		Theme:   s.Theme,
		CSRF:    s.CSRFToken,
		Flashes: s.Flashes,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

// Decode verifies the token and returns the session it carries.
// Any malformed, tampered or expired token yields domain.ErrUnauthorized.
func (c *SessionCodec) Decode(tokenString string) (*domain.Session, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	return &domain.Session{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Theme:     claims.Theme,
		CSRFToken: claims.CSRF,
		Flashes:   claims.Flashes,
	}, nil
}
