// Package auth supplies the "get a valid bearer token or fail"
// capability the chat service consumes, plus identity extraction from
// JWT claims for the auth substate.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/calder-dev/tidechat/internal/models"
)

var (
	// ErrNoToken means no access token is configured for the profile.
	ErrNoToken = errors.New("no access token available")

	// ErrTokenExpired means the configured token is past its exp claim.
	ErrTokenExpired = errors.New("access token expired")
)

// TokenSource yields a bearer token for one request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticSource serves a fixed token, revalidating its expiry on every
// call so a long-lived session notices expiration between turns.
type StaticSource struct {
	token string
}

// NewStaticSource wraps a configured token string.
func NewStaticSource(token string) *StaticSource {
	return &StaticSource{token: token}
}

func (s *StaticSource) Token(_ context.Context) (string, error) {
	if s.token == "" {
		return "", ErrNoToken
	}
	if Expired(s.token) {
		return "", ErrTokenExpired
	}
	return s.token, nil
}

// expiryLeeway avoids handing out a token that dies mid-request.
const expiryLeeway = 30 * time.Second

// Expired reports whether token is a JWT whose exp claim has passed.
// Opaque (non-JWT) tokens are never considered expired; the gateway is
// the authority for those.
func Expired(token string) bool {
	claims := parseClaims(token)
	if claims == nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Now().Add(expiryLeeway).After(exp.Time)
}

// Identity extracts the signed-in user from the token's claims. Returns
// nil for opaque tokens or tokens without a subject.
func Identity(token string) *models.User {
	claims := parseClaims(token)
	if claims == nil {
		return nil
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil
	}

	user := &models.User{ID: sub}
	if name, ok := claims["name"].(string); ok {
		user.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	return user
}

// parseClaims decodes claims without verifying the signature. The token
// is only inspected locally for expiry and display identity; the gateway
// performs the real verification.
func parseClaims(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}
