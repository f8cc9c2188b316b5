package auth

import (
	"context"
	"errors"
	"time"

	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

type sessionClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// JWTStore keeps the whole session in an HS256-signed token. It is stateless:
// Delete cannot revoke a token, logout relies on the cookie being cleared.
type JWTStore struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTStore(secret string, ttl time.Duration) *JWTStore {
	return &JWTStore{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *JWTStore) TTL() time.Duration { return s.ttl }

func (s *JWTStore) Save(_ context.Context, p models.Principal) (string, error) {
	now := s.now()
	claims := sessionClaims{
		Email:   p.Email,
		Name:    p.Name,
		Picture: p.Picture,
		Role:    p.EffectiveRole(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperr.Internal("sign session", err)
	}
	return signed, nil
}

func (s *JWTStore) Load(_ context.Context, token string) (models.Principal, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return models.Principal{}, apperr.Unauthorized("invalid session", err)
	}
	if claims.Email == "" {
		return models.Principal{}, apperr.Unauthorized("invalid session", errors.New("missing email claim"))
	}
	return models.Principal{Email: claims.Email, Name: claims.Name, Picture: claims.Picture, Role: claims.Role}, nil
}

func (s *JWTStore) Delete(context.Context, string) error { return nil }
