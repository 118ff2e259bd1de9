package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Generic codes, one per status class.
const (
	CodeValidation = "validation_error"
	CodeAuth       = "unauthorized"
	CodeForbidden  = "forbidden"
	CodeNotFound   = "not_found"
	CodeConflict   = "conflict"
	CodeInternal   = "internal_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || t == nil || e == nil {
		return false
	}
	return t.Code == e.Code && t.Status == e.Status
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func newf(status int, code, format string, args ...any) *Error {
	return New(status, code, fmt.Errorf(format, args...))
}

func Validation(code, format string, args ...any) *Error {
	if code == "" {
		code = CodeValidation
	}
	return newf(http.StatusBadRequest, code, format, args...)
}

func Auth(code, format string, args ...any) *Error {
	if code == "" {
		code = CodeAuth
	}
	return newf(http.StatusUnauthorized, code, format, args...)
}

func Forbidden(code, format string, args ...any) *Error {
	if code == "" {
		code = CodeForbidden
	}
	return newf(http.StatusForbidden, code, format, args...)
}

func NotFound(code, format string, args ...any) *Error {
	if code == "" {
		code = CodeNotFound
	}
	return newf(http.StatusNotFound, code, format, args...)
}

func Conflict(code, format string, args ...any) *Error {
	if code == "" {
		code = CodeConflict
	}
	return newf(http.StatusConflict, code, format, args...)
}

// Internal wraps an unexpected failure; the wrapped error is only shown
// to clients outside production.
func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, err)
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

// CodeOf returns the domain code carried by err, or "" when err is not an *Error.
func CodeOf(err error) string {
	if e, ok := As(err); ok {
		return e.Code
	}
	return ""
}
