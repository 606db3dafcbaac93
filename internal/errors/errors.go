// Package errors provides the structured error type shared across the
// exchange core. Every component wraps failures in an ExchangeError tagged
// with one of the four kinds from the system's error taxonomy rather than
// returning bare errors, so callers can branch on Code without string
// matching.
package errors

import (
	"fmt"
	"runtime"
	"time"
)

// ErrorCode classifies an ExchangeError by the boundary it crossed.
type ErrorCode string

const (
	// Transport covers broker I/O: the order topic consumer and the price
	// topic producer.
	Transport ErrorCode = "TRANSPORT"
	// Storage covers KV store I/O: price/sector/order-book reads and writes.
	Storage ErrorCode = "STORAGE"
	// Decode covers malformed payloads off the wire or out of the KV store.
	Decode ErrorCode = "DECODE"
	// Invariant covers a persisted order book that fails its sort-order
	// invariants once deserialized.
	Invariant ErrorCode = "INVARIANT"
)

// ExchangeError is the structured error type returned by every component in
// the pipeline. It is never surfaced to an external caller; the system's
// observable contract is best-effort, so ExchangeError exists to let the
// owning component log with context and decide whether to retry, skip, or
// drop.
type ExchangeError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	File      string                 `json:"file,omitempty"`
	Line      int                    `json:"line,omitempty"`
	Cause     error                  `json:"-"`
}

func (e *ExchangeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ExchangeError) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a structured detail and returns the same error for
// chaining at the call site.
func (e *ExchangeError) WithDetail(key string, value interface{}) *ExchangeError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates an ExchangeError of the given kind.
func New(code ErrorCode, message string) *ExchangeError {
	_, file, line, _ := runtime.Caller(1)
	return &ExchangeError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		File:      file,
		Line:      line,
	}
}

// Newf creates an ExchangeError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *ExchangeError {
	_, file, line, _ := runtime.Caller(1)
	return &ExchangeError{
		Code:      code,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
		File:      file,
		Line:      line,
	}
}

// Wrap attaches a kind and message to an existing error. Returns nil if err
// is nil, so it is safe to use as `return errors.Wrap(err, ...)`.
func Wrap(err error, code ErrorCode, message string) *ExchangeError {
	if err == nil {
		return nil
	}
	_, file, line, _ := runtime.Caller(1)
	return &ExchangeError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		File:      file,
		Line:      line,
		Cause:     err,
	}
}

// Wrapf wraps err with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ExchangeError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// As walks err's Unwrap chain looking for an *ExchangeError.
func As(err error) (*ExchangeError, bool) {
	for err != nil {
		if ee, ok := err.(*ExchangeError); ok {
			return ee, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}

// CodeOf extracts the ErrorCode from err, or "" if err is not (or does not
// wrap) an ExchangeError.
func CodeOf(err error) ErrorCode {
	if ee, ok := As(err); ok {
		return ee.Code
	}
	return ""
}
