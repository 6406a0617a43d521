package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestStaticSource_EmptyToken(t *testing.T) {
	_, err := NewStaticSource("").Token(context.Background())

	require.ErrorIs(t, err, ErrNoToken)
}

func TestStaticSource_OpaqueToken(t *testing.T) {
	got, err := NewStaticSource("some-opaque-api-key").Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "some-opaque-api-key", got)
}

func TestStaticSource_ValidJWT(t *testing.T) {
	token := sign(t, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(time.Hour).Unix()})

	got, err := NewStaticSource(token).Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, token, got)
}

func TestStaticSource_ExpiredJWT(t *testing.T) {
	token := sign(t, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(-time.Hour).Unix()})

	_, err := NewStaticSource(token).Token(context.Background())

	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestExpired(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"opaque token never expires", "not-a-jwt", false},
		{"empty string", "", false},
		{"no exp claim", sign(t, jwt.MapClaims{"sub": "u-1"}), false},
		{"future exp", sign(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}), false},
		{"past exp", sign(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()}), true},
		{"within leeway", sign(t, jwt.MapClaims{"exp": time.Now().Add(10 * time.Second).Unix()}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expired(tt.token))
		})
	}
}

func TestIdentity(t *testing.T) {
	token := sign(t, jwt.MapClaims{
		"sub":   "u-1",
		"name":  "Ada Lovelace",
		"email": "ada@example.com",
	})

	user := Identity(token)

	require.NotNil(t, user)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
}

func TestIdentity_SubjectOnly(t *testing.T) {
	user := Identity(sign(t, jwt.MapClaims{"sub": "u-2"}))

	require.NotNil(t, user)
	assert.Equal(t, "u-2", user.ID)
	assert.Empty(t, user.Name)
	assert.Empty(t, user.Email)
}

func TestIdentity_OpaqueOrAnonymous(t *testing.T) {
	assert.Nil(t, Identity("not-a-jwt"))
	assert.Nil(t, Identity(sign(t, jwt.MapClaims{"name": "no subject"})))
}
