package models

// ErrorKind classifies chat failures for recovery decisions.
type ErrorKind string

const (
	// ErrKindAuth covers missing or expired access tokens.
	ErrKindAuth ErrorKind = "AUTH"
	// ErrKindStream covers transport or parse failures while consuming a
	// response body.
	ErrKindStream ErrorKind = "STREAM"
	// ErrKindRequest covers failures of the initiating HTTP request,
	// including non-2xx responses.
	ErrKindRequest ErrorKind = "REQUEST"
	// ErrKindValidation covers rejected input, e.g. an attachment that
	// could not be converted.
	ErrKindValidation ErrorKind = "VALIDATION"
)

// ChatError is the structured error surfaced to the chat state. Retry,
// when non-nil, re-runs the operation that failed with its original
// arguments.
type ChatError struct {
	Kind        ErrorKind
	Message     string
	Recoverable bool
	Retry       func()
}

func (e *ChatError) Error() string {
	return string(e.Kind) + ": " + e.Message
}
