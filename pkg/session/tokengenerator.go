package session

import (
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenGenerator interface defines methods for session token operations
type TokenGenerator interface {
	// GenerateToken generates a signed token for the given subject
	GenerateToken(subject string, expiry time.Duration) (string, time.Time, error)
}

// JwtTokenGenerator implements the TokenGenerator interface using HS256.
// The session token carries only the user ID as its subject; tokens and
// profile data stay server-side in the user store.
type JwtTokenGenerator struct {
	Secret   string
	Issuer   string
	Audience string
}

// NewJwtTokenGenerator creates a new JwtTokenGenerator
func NewJwtTokenGenerator(secret, issuer, audience string) *JwtTokenGenerator {
	return &JwtTokenGenerator{
		Secret:   secret,
		Issuer:   issuer,
		Audience: audience,
	}
}

// GenerateToken creates a new signed token with the given subject and expiry
func (g *JwtTokenGenerator) GenerateToken(subject string, expiry time.Duration) (string, time.Time, error) {
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
		NotBefore: jwt.NewNumericDate(time.Now().UTC().Add(-5 * time.Minute)),
		Issuer:    g.Issuer,
		Subject:   subject,
		ID:        uuid.New().String(),
		Audience:  jwt.ClaimStrings{g.Audience},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(g.Secret))
	if err != nil {
		slog.Error("Failed to sign session token", "err", err)
		return "", time.Time{}, err
	}
	return ss, claims.ExpiresAt.Time, nil
}
