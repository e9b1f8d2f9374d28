package warn

import (
	"errors"
	"fmt"
	"time"
)

// Application error codes.
const (
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
	ETIMEOUT  = "timeout"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("warn error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error"
}

// TransientError is a fetch failure that may succeed on retry: connection
// errors, 5xx responses and statuses a source marks as retryable.
type TransientError struct {
	URL        string
	StatusCode int // zero for connection errors
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transient error fetching %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("transient error fetching %s: %v", e.URL, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError is a fetch failure that retrying cannot fix, such as a 404
// or a malformed response.
type PermanentError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *PermanentError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("permanent error fetching %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("permanent error fetching %s: %v", e.URL, e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

// FetchExhaustedError is returned when every allowed attempt at a URL failed
// with a transient error.
type FetchExhaustedError struct {
	URL      string
	Attempts int
	Elapsed  time.Duration
	Err      error // last transient error
}

func (e *FetchExhaustedError) Error() string {
	return fmt.Sprintf("fetching %s: gave up after %d attempts in %s: %v", e.URL, e.Attempts, e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *FetchExhaustedError) Unwrap() error { return e.Err }

// PaginationOverflowError is returned when a page chain still advertises a
// next page after the hop limit was reached. It usually means the site
// changed its pagination markup.
type PaginationOverflowError struct {
	Seed    string
	MaxHops int
	NextURL string
}

func (e *PaginationOverflowError) Error() string {
	return fmt.Sprintf("pagination from %s exceeded %d hops (next: %s)", e.Seed, e.MaxHops, e.NextURL)
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsPermanent reports whether err is a non-retryable fetch failure.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
