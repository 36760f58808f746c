// Package auth issues and verifies the signed tokens that bind a request to
// a user.
package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jobboard/apiserver/internal/apperr"
	"github.com/jobboard/apiserver/types"
)

const DefaultTokenTTL = 24 * time.Hour

// Claims are the JWT claims the API issues. Subject holds the internal user id.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// TokenProvider signs and verifies HS256 tokens.
type TokenProvider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenProvider(secret string, ttl time.Duration) (*TokenProvider, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenProvider{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue returns a signed token for user.
func (p *TokenProvider) Issue(user types.User) (string, error) {
	if user.ID < 1 {
		return "", errors.New("cannot issue token for unsaved user")
	}
	now := p.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
		Name: user.Name,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// Verify parses tokenString and returns its principal. Every failure is an
// apperr.ErrUnauthorized.
func (p *TokenProvider) Verify(tokenString string) (Principal, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Principal{}, apperr.Unauthorized("missing token")
	}

	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Principal{}, apperr.Unauthorized("invalid token")
	}

	id, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || id < 1 {
		return Principal{}, apperr.Unauthorized("invalid token subject")
	}
	return Principal{ID: id, Name: claims.Name}, nil
}
