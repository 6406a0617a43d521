package chat

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder-dev/tidechat/internal/auth"
	"github.com/calder-dev/tidechat/internal/models"
	"github.com/calder-dev/tidechat/internal/sse"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestNewStatusError_ParsesGatewayBody(t *testing.T) {
	se := newStatusError(response(429, `{"error":{"code":"RATE_LIMITED","message":"slow down"}}`))

	assert.Equal(t, 429, se.Status)
	assert.Equal(t, "RATE_LIMITED", se.Code)
	assert.Equal(t, "slow down", se.Message)
	assert.Contains(t, se.Error(), "RATE_LIMITED")
}

func TestNewStatusError_FallsBackToStatusText(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"non-json body", "<html>bad gateway</html>"},
		{"json without error", `{"detail":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := newStatusError(response(http.StatusBadGateway, tt.body))

			assert.Equal(t, http.StatusBadGateway, se.Status)
			assert.Empty(t, se.Code)
			assert.Equal(t, http.StatusText(http.StatusBadGateway), se.Message)
		})
	}
}

func TestAuthExpired(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"token expired sentinel", auth.ErrTokenExpired, true},
		{"wrapped sentinel", fmt.Errorf("turn: %w", auth.ErrTokenExpired), true},
		{"401 response", &statusError{Status: 401}, true},
		{"403 response", &statusError{Status: 403}, true},
		{"404 response", &statusError{Status: 404}, false},
		{"no token", auth.ErrNoToken, false},
		{"other error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, authExpired(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	retry := func() {}

	tests := []struct {
		name            string
		err             error
		wantKind        models.ErrorKind
		wantRecoverable bool
		wantRetry       bool
	}{
		{
			name:            "missing token is terminal",
			err:             auth.ErrNoToken,
			wantKind:        models.ErrKindAuth,
			wantRecoverable: false,
			wantRetry:       false,
		},
		{
			name:            "expired token invites a retry",
			err:             auth.ErrTokenExpired,
			wantKind:        models.ErrKindAuth,
			wantRecoverable: true,
			wantRetry:       true,
		},
		{
			name:            "stream protocol fault",
			err:             &sse.ProtocolError{Message: "model overloaded"},
			wantKind:        models.ErrKindStream,
			wantRecoverable: true,
			wantRetry:       true,
		},
		{
			name:            "gateway rejection",
			err:             &statusError{Status: 400, Message: "too long"},
			wantKind:        models.ErrKindRequest,
			wantRecoverable: true,
			wantRetry:       true,
		},
		{
			name:            "transport failure",
			err:             errors.New("connection reset"),
			wantKind:        models.ErrKindStream,
			wantRecoverable: true,
			wantRetry:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := classify(tt.err, retry)

			require.NotNil(t, ce)
			assert.Equal(t, tt.wantKind, ce.Kind)
			assert.Equal(t, tt.wantRecoverable, ce.Recoverable)
			assert.NotEmpty(t, ce.Message)
			if tt.wantRetry {
				assert.NotNil(t, ce.Retry)
			} else {
				assert.Nil(t, ce.Retry)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	ce := validationError(errors.New("file too large"))

	assert.Equal(t, models.ErrKindValidation, ce.Kind)
	assert.Equal(t, "file too large", ce.Message)
	assert.True(t, ce.Recoverable)
}
