package attendance

import (
	"errors"
	"fmt"
	"net/http"
)

// ===== Error model (events/auth と同型。コードはそのままレスポンスに出す) =====

type Code string

const (
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
	CodeInvalidArgument    Code = "INVALID_ARGUMENT"
	CodeNotFound           Code = "NOT_FOUND"
	CodeAlreadyExists      Code = "ALREADY_EXISTS"
	CodeFailedPrecondition Code = "FAILED_PRECONDITION"
	CodeDeadlineExceeded   Code = "DEADLINE_EXCEEDED"
	CodeInternal           Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ErrUnauthenticated(msg string) *APIError {
	return &APIError{Code: CodeUnauthenticated, Message: msg}
}
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrAlreadyExists(msg string) *APIError {
	return &APIError{Code: CodeAlreadyExists, Message: msg}
}
func ErrFailedPrecondition(msg string) *APIError {
	return &APIError{Code: CodeFailedPrecondition, Message: msg}
}
func ErrDeadlineExceeded(msg string) *APIError {
	return &APIError{Code: CodeDeadlineExceeded, Message: msg}
}
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeUnauthenticated:
			return http.StatusUnauthorized
		case CodeInvalidArgument:
			return http.StatusBadRequest
		case CodeNotFound:
			return http.StatusNotFound
		case CodeAlreadyExists:
			return http.StatusConflict
		case CodeFailedPrecondition:
			return http.StatusPreconditionFailed
		case CodeDeadlineExceeded:
			return http.StatusGone
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
