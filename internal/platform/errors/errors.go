// Package errors provides the error taxonomy shared by the pipeline, the stages
// and the probes, together with thin wrappers over the standard errors package.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
)

// Sentinel errors, one per failure class. Wrap them with Wrap/Wrapf so the
// class survives added context.
var (
	// ErrConfiguration: settings file missing or unparseable. Never fatal.
	ErrConfiguration = errors.New("configuration error")

	// ErrStageExecution: a stage's Run returned an error or panicked.
	ErrStageExecution = errors.New("stage execution failed")

	// ErrExternalTool: an external process exited non-zero, was missing, or left no output.
	ErrExternalTool = errors.New("external tool failed")

	// ErrNetwork: connection refused, reset, or handshake failure.
	ErrNetwork = errors.New("network error")

	// ErrTimeout indicates an operation exceeded its time limit
	ErrTimeout = errors.New("operation timed out")

	// ErrParse: a single malformed record in tool output.
	ErrParse = errors.New("parse error")

	// ErrInvalidInput indicates invalid input was provided
	ErrInvalidInput = errors.New("invalid input")
)

// Kind is the coarse failure class of an error.
type Kind string

const (
	KindNone           Kind = ""
	KindConfiguration  Kind = "configuration"
	KindStageExecution Kind = "stage_execution"
	KindExternalTool   Kind = "external_tool"
	KindNetwork        Kind = "network"
	KindTimeout        Kind = "timeout"
	KindParse          Kind = "parse"
	KindInvalidInput   Kind = "invalid_input"
	KindUnknown        Kind = "unknown"
)

// wrappedError wraps an error with additional context
type wrappedError struct {
	msg   string
	cause error
}

// Error implements the error interface
func (e *wrappedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Unwrap returns the underlying error
func (e *wrappedError) Unwrap() error {
	return e.cause
}

// Wrap wraps an error with additional context message.
// If err is nil, Wrap returns nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: msg, cause: err}
}

// Wrapf wraps an error with a formatted context message.
// If err is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &wrappedError{msg: fmt.Sprintf(format, args...), cause: err}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling Unwrap on err.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// New creates a new error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf is fmt.Errorf.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Join returns an error that wraps the given errors.
// Any nil error values are discarded.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// KindOf classifies err. Sentinels win; otherwise the standard library error
// types produced by net, os/exec and context are mapped onto the taxonomy.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	switch {
	case Is(err, ErrConfiguration):
		return KindConfiguration
	case Is(err, ErrStageExecution):
		return KindStageExecution
	case Is(err, ErrExternalTool):
		return KindExternalTool
	case Is(err, ErrTimeout), Is(err, context.DeadlineExceeded), Is(err, os.ErrDeadlineExceeded):
		return KindTimeout
	case Is(err, ErrParse):
		return KindParse
	case Is(err, ErrInvalidInput):
		return KindInvalidInput
	case Is(err, ErrNetwork):
		return KindNetwork
	}

	var exitErr *exec.ExitError
	if As(err, &exitErr) || Is(err, exec.ErrNotFound) {
		return KindExternalTool
	}

	var netErr net.Error
	if As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	var opErr *net.OpError
	if As(err, &opErr) {
		return KindNetwork
	}

	return KindUnknown
}

// IsTimeout reports whether the error is a timeout of any origin.
func IsTimeout(err error) bool {
	return KindOf(err) == KindTimeout
}

// IsNoData reports whether err only means "this probe produced nothing":
// network failures and timeouts are swallowed at the probe level.
func IsNoData(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindTimeout:
		return true
	default:
		return false
	}
}
