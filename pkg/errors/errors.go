// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

// Package errors provides typed error handling for the preference engine.
package errors

import "fmt"

// ErrorCode classifies engine errors for monitoring and caller recovery.
type ErrorCode string

const (
	// CodeInvalidFeature indicates a feature name outside the fixed
	// dimension set was supplied on the sentiment path.
	CodeInvalidFeature ErrorCode = "INVALID_FEATURE"

	// CodeStoreUnavailable indicates the backing vector store could not
	// be reached, read, or written.
	CodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// CodeNotFound indicates a requested record does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInternal indicates an internal engine error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error is a typed engine error. It implements the error interface and
// can be unwrapped with errors.As / errors.Is.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *Error {
	return &Error{Code: code, Message: msg, Err: cause}
}

// Newf creates a new Error with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of err if it is (or wraps) an *Error, or
// CodeInternal otherwise. A nil err returns the empty code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	for e := err; e != nil; e = unwrap(e) {
		if te, ok := e.(*Error); ok {
			return te.Code
		}
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// StatusCode maps an engine error to an HTTP status code for callers
// that surface engine errors over HTTP.
func StatusCode(err error) int {
	switch CodeOf(err) {
	case "":
		return 200
	case CodeInvalidFeature, CodeInvalidInput:
		return 400
	case CodeNotFound:
		return 404
	case CodeStoreUnavailable:
		return 503
	default:
		return 500
	}
}

func unwrap(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}
