package api

import (
	"fmt"
	"net/http"
)

// StatusError is an error with an HTTP status code
type StatusError struct {
	StatusCode int    `json:"-"`
	Detail     string `json:"detail"`
}

func (e *StatusError) Error() string { return e.Detail }

// ErrBadRequest creates a 400 Bad Request error
func ErrBadRequest(msg string) *StatusError {
	return &StatusError{
		StatusCode: http.StatusBadRequest,
		Detail:     msg,
	}
}

// ErrInternalServer creates a 500 Internal Server Error
func ErrInternalServer(msg string) *StatusError {
	return &StatusError{
		StatusCode: http.StatusInternalServerError,
		Detail:     msg,
	}
}

// WrapError wraps an existing error into a StatusError
func WrapError(err error, code int, msg string) *StatusError {
	fullMsg := msg
	if err != nil {
		fullMsg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &StatusError{
		StatusCode: code,
		Detail:     fullMsg,
	}
}
