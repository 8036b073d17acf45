package errors

import (
	"errors"
	"net/http"
)

// Exception is a caller-visible business failure. Code is stable across
// releases so API clients can switch on it; StatusCode is the HTTP mapping.
type Exception struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *Exception) Error() string {
	return e.Message
}

// Error kind codes. Every failure the core returns maps to one of these.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeInvalidState = "INVALID_STATE"
	CodeConflict     = "CONFLICT"
	CodeValidation   = "VALIDATION_ERROR"
)

func NotFound(message string) *Exception {
	return &Exception{Code: CodeNotFound, Message: message, StatusCode: http.StatusNotFound}
}

func Forbidden(message string) *Exception {
	return &Exception{Code: CodeForbidden, Message: message, StatusCode: http.StatusForbidden}
}

func InvalidState(message string) *Exception {
	return &Exception{Code: CodeInvalidState, Message: message, StatusCode: http.StatusConflict}
}

func Conflict(message string) *Exception {
	return &Exception{Code: CodeConflict, Message: message, StatusCode: http.StatusConflict}
}

func Validation(message string) *Exception {
	return &Exception{Code: CodeValidation, Message: message, StatusCode: http.StatusBadRequest}
}

// StatusCode extracts the HTTP status for err, defaulting to 500 for
// anything that is not an Exception.
func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// Code extracts the stable error code for err, or empty for infra errors.
func Code(err error) string {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsKind reports whether err is an Exception with the given code.
func IsKind(err error, code string) bool {
	var appErr *Exception
	return errors.As(err, &appErr) && appErr.Code == code
}
