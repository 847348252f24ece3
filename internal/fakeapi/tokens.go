package fakeapi

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Wjwesley1/queen-store-frontend/pkg/middleware"
)

// tokenClaims mirrors what the store backend signs: a numeric clienteId and
// the account email.
type tokenClaims struct {
	CustomerID int    `json:"clienteId"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

// TokenSigner issues and validates customer tokens.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenSigner creates a signer using HS256 with secret.
func NewTokenSigner(secret string, ttl time.Duration) *TokenSigner {
	return &TokenSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign issues a token for acc.
func (s *TokenSigner) Sign(acc *Account) (string, error) {
	now := s.now().UTC()
	claims := &tokenClaims{
		CustomerID: acc.ID,
		Email:      acc.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(acc.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    "queen-store",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign customer token: %w", err)
	}
	return signed, nil
}

// Validate is a middleware.TokenValidator.
func (s *TokenSigner) Validate(token string) (*middleware.Claims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parse customer token: %w", err)
	}
	if claims.CustomerID <= 0 {
		return nil, fmt.Errorf("customer token has no clienteId")
	}
	return &middleware.Claims{
		CustomerID: strconv.Itoa(claims.CustomerID),
		Email:      claims.Email,
	}, nil
}
