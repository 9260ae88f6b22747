package directline

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error variables
var (
	// ErrNoConversation indicates an operation that needs an
	// established conversation was called without one.
	ErrNoConversation = errors.New("no conversation established")

	// ErrMissingConversationID indicates the service accepted the
	// conversation request but returned no identifier.
	ErrMissingConversationID = errors.New("no conversation id returned")

	// ErrRetriesExhausted indicates the poll budget ran out with no
	// bot response observed.
	ErrRetriesExhausted = errors.New("bot response retries exhausted")
)

// Stage names the lifecycle step an API error occurred in.
type Stage string

const (
	StageToken        Stage = "token generation"
	StageConversation Stage = "conversation start"
	StageSend         Stage = "message send"
	StagePoll         Stage = "activity fetch"
)

// APIError represents a non-2xx response or a transport failure at a
// Direct Line endpoint. StatusCode is zero for transport failures.
type APIError struct {
	Stage      Stage
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed: %d - %s", e.Stage, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Stage, e.Message)
}

// Unwrap returns the underlying transport error, if any.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsAuthError returns true if the service rejected the credential.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// ExhaustedError reports a message that was delivered but drew no bot
// response within the retry budget. It carries the send result so
// callers can tell delivery succeeded.
type ExhaustedError struct {
	MessageSent string
	Attempts    int
	Send        *SendResult
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no bot response after %d attempts", e.Attempts)
}

// Is matches ErrRetriesExhausted.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrRetriesExhausted
}
