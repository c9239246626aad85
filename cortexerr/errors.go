// Package cortexerr defines the error taxonomy surfaced by every layer of
// the Cortex client: connection failures, RPC timeouts, server-signaled
// API errors, authentication failures, malformed-frame errors, and
// configuration errors.
package cortexerr

import (
	"fmt"
	"time"

	"github.com/sourcegraph/jsonrpc2"
)

// ConnectionKind classifies a ConnectionError.
type ConnectionKind string

const (
	KindHandshake ConnectionKind = "handshake"
	KindClosed    ConnectionKind = "closed"
	KindIO        ConnectionKind = "io"
	KindTimeout   ConnectionKind = "timeout"
)

// ConnectionError reports a transport or handshake failure. The resilient
// wrapper treats every ConnectionError as a trigger for reconnection.
type ConnectionError struct {
	Kind   ConnectionKind
	Reason string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cortex: connection error (%s): %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("cortex: connection error (%s): %s", e.Kind, e.Reason)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func NewConnectionError(kind ConnectionKind, reason string, err error) *ConnectionError {
	return &ConnectionError{Kind: kind, Reason: reason, Err: err}
}

// TimeoutError reports that an RPC did not complete before its deadline.
// It is NOT classified as a connection error and never triggers reconnect.
type TimeoutError struct {
	Method   string
	Deadline time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("cortex: rpc %q timed out after %s", e.Method, e.Deadline)
}

// ApiError wraps a server-signaled JSON-RPC error object. Code carries the
// Cortex-defined numeric error code; well-known codes are exposed as
// sentinels below so callers can match with errors.Is.
type ApiError struct {
	jsonrpc2.Error
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("cortex: api error %d: %s", e.Code, e.Message)
}

func NewApiError(code int64, message string) *ApiError {
	return &ApiError{Error: jsonrpc2.Error{Code: jsonrpc2.ErrorCode(code), Message: message}}
}

// Is reports whether target is an *ApiError with the same code, so
// well-known codes (see codes.go) can be matched with errors.Is.
func (e *ApiError) Is(target error) bool {
	other, ok := target.(*ApiError)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// AuthError reports a failure in the getCortexInfo -> requestAccess ->
// authorize handshake: access denied, not authorized, or a malformed
// token in the authorize response. The resilient wrapper surfaces it
// directly; it does not retry on AuthError.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("cortex: auth error: %s", e.Reason)
}

func NewAuthError(reason string) *AuthError {
	return &AuthError{Reason: reason}
}

// ProtocolError reports a malformed frame, a missing required field in a
// decoded stream sample, or an unexpected response shape.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("cortex: protocol error: %s", e.Reason)
}

func NewProtocolError(reason string) *ProtocolError {
	return &ProtocolError{Reason: reason}
}

// ConfigError reports malformed or missing configuration.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cortex: config error: %s", e.Reason)
}

func NewConfigError(reason string) *ConfigError {
	return &ConfigError{Reason: reason}
}
