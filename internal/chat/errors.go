package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/calder-dev/tidechat/internal/auth"
	"github.com/calder-dev/tidechat/internal/models"
	"github.com/calder-dev/tidechat/internal/sse"
)

// statusError is a non-2xx initiating response, converted to a typed
// error before any retry decision. Code and Message come from the
// gateway's error body when it has one.
type statusError struct {
	Status  int
	Code    string
	Message string
}

func (e *statusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("gateway %d: %s", e.Status, e.Message)
}

// newStatusError drains and closes the response body.
func newStatusError(resp *http.Response) *statusError {
	defer func() { _ = resp.Body.Close() }()

	se := &statusError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8192))
	if err != nil || len(raw) == 0 {
		return se
	}

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		se.Code = body.Error.Code
		se.Message = body.Error.Message
	}
	return se
}

// authExpired reports whether err means the bearer token stopped being
// accepted, which also flips the global auth status.
func authExpired(err error) bool {
	if errors.Is(err, auth.ErrTokenExpired) {
		return true
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.Status == http.StatusUnauthorized || se.Status == http.StatusForbidden
	}
	return false
}

// classify maps a turn failure onto the chat error taxonomy. retry,
// when non-nil, becomes the error's recovery action.
func classify(err error, retry func()) *models.ChatError {
	switch {
	case errors.Is(err, auth.ErrNoToken):
		return &models.ChatError{
			Kind:        models.ErrKindAuth,
			Message:     "no access token configured; sign in and try again",
			Recoverable: false,
		}

	case authExpired(err):
		return &models.ChatError{
			Kind:        models.ErrKindAuth,
			Message:     "your session expired; sign in again to continue",
			Recoverable: true,
			Retry:       retry,
		}
	}

	var pe *sse.ProtocolError
	if errors.As(err, &pe) {
		return &models.ChatError{
			Kind:        models.ErrKindStream,
			Message:     pe.Message,
			Recoverable: true,
			Retry:       retry,
		}
	}

	var se *statusError
	if errors.As(err, &se) {
		return &models.ChatError{
			Kind:        models.ErrKindRequest,
			Message:     se.Message,
			Recoverable: true,
			Retry:       retry,
		}
	}

	return &models.ChatError{
		Kind:        models.ErrKindStream,
		Message:     err.Error(),
		Recoverable: true,
		Retry:       retry,
	}
}

// validationError wraps an attachment rejection.
func validationError(err error) *models.ChatError {
	return &models.ChatError{
		Kind:        models.ErrKindValidation,
		Message:     err.Error(),
		Recoverable: true,
	}
}
