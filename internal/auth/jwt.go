// Package auth issues and validates the session identity for the API.
//
// FLOW:
//  1. The user authenticates with an external provider (GitHub OAuth)
//     or a local email/password account.
//  2. The server issues a JWT carrying the identity subject and email,
//     stored in an HttpOnly cookie.
//  3. Middleware validates the cookie on every protected request and
//     puts the Identity in the request context.
//
// The token deliberately carries the email claim as well as the
// subject: a freshly authenticated identity may not have a profile row
// yet (profile creation is an explicit POST /api/users, not an upsert
// on login), and the profile create needs the provider-supplied email.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "portofolio-api"

// tokenTTL is the session lifetime. There are no refresh tokens; an
// expired session means logging in again.
const tokenTTL = 24 * time.Hour

// Identity is who the request is acting as, resolved from the session
// token. Subject is the external provider's stable identifier
// ("github:1234567", "local:<id>") — not an internal user id.
type Identity struct {
	Subject string
	Email   string
}

// TokenService signs and verifies session JWTs with an HMAC secret.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService. The secret should be at
// least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims embeds the registered JWT fields and adds the provider email.
// "sub" holds the identity subject.
type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Generate creates a signed session token for the given identity.
func (s *TokenService) Generate(id Identity) (string, error) {
	return s.GenerateWithDuration(id, tokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry. Used by
// tests to mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(id Identity, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string, returning the Identity
// it carries.
//
// WithValidMethods pins HS256 so a crafted "alg: none" token can't
// slip through (algorithm confusion). Issuer and expiry are checked by
// the library.
func (s *TokenService) Validate(tokenStr string) (Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, fmt.Errorf("auth: token expired")
		}
		return Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return Identity{}, fmt.Errorf("auth: token has no subject")
	}

	return Identity{Subject: c.Subject, Email: c.Email}, nil
}
