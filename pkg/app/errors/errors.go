// Package errors contains the categorised service error used by every
// service and translated into HTTP responses by pkg/app/http.
package errors

import (
	"errors"
	"net/http"
)

// Category defines error category
type Category int

const (
	// CategoryNoError marks a successful call.
	CategoryNoError Category = iota
	// CategoryDataError covers malformed or invalid request data.
	CategoryDataError
	// CategoryUnauthorized means the caller did not identify itself.
	CategoryUnauthorized
	// CategoryForbidden means the caller may not perform the action.
	CategoryForbidden
	// CategoryResourceNotFound means the addressed entity does not exist.
	CategoryResourceNotFound
	// CategoryDataConflict means the write clashes with existing data.
	CategoryDataConflict
	// CategoryTooManyRequests means the caller hit a rate limit.
	CategoryTooManyRequests
	// CategoryDependencyFailure means an external collaborator (Solana RPC, AI API) failed.
	CategoryDependencyFailure
	// CategoryGeneralError The service failed in an unexpected way
	CategoryGeneralError
)

func (c Category) String() string {
	switch c {
	case CategoryNoError:
		return "CategoryNoError"
	case CategoryDataError:
		return "CategoryDataError"
	case CategoryUnauthorized:
		return "CategoryUnauthorized"
	case CategoryForbidden:
		return "CategoryForbidden"
	case CategoryResourceNotFound:
		return "CategoryResourceNotFound"
	case CategoryDataConflict:
		return "CategoryDataConflict"
	case CategoryTooManyRequests:
		return "CategoryTooManyRequests"
	case CategoryDependencyFailure:
		return "CategoryDependencyFailure"
	default:
		return "CategoryGeneralError"
	}
}

// ServiceError carries a user-facing message alongside the underlying error.
// Message is returned to the client; Err is only logged.
type ServiceError struct {
	Category Category
	Message  string
	Err      error
}

// Error method to comply with error interface
func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

// Unwrap returns the underlying error
func (err ServiceError) Unwrap() error {
	return err.Err
}

// Is checks that provided error is a ServiceError with desired Category
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Category == cat {
		return true
	}
	return false
}

// IsInternalError reports whether err should be treated as a server-side failure.
func IsInternalError(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Category < CategoryDependencyFailure {
		return false
	}
	return true
}

func newError(cat Category, err error, message, fallback string) error {
	if err == nil {
		err = errors.New(fallback + message)
	}
	return &ServiceError{
		Category: cat,
		Message:  message,
		Err:      err,
	}
}

// GeneralError returns a general service error.
// The client sees "Internal Server Error"; err is logged.
func GeneralError(err error) error {
	if err == nil {
		err = errors.New("internal server error")
	}
	return &ServiceError{
		Category: CategoryGeneralError,
		Message:  "Internal Server Error",
		Err:      err,
	}
}

// ResourceNotFoundError returns an error with category ResourceNotFound
func ResourceNotFoundError(err error, message string) error {
	return newError(CategoryResourceNotFound, err, message, "resource not found: ")
}

// BadRequestError returns an error with category DataError
func BadRequestError(err error, message string) error {
	return newError(CategoryDataError, err, message, "bad request: ")
}

// ForbiddenError returns an error with category Forbidden
func ForbiddenError(err error, message string) error {
	return newError(CategoryForbidden, err, message, "forbidden: ")
}

// UnAuthorizedError returns an error with category Unauthorized
func UnAuthorizedError(err error, message string) error {
	return newError(CategoryUnauthorized, err, message, "unauthorized: ")
}

// ConflictError returns an error with category DataConflict
func ConflictError(err error, message string) error {
	return newError(CategoryDataConflict, err, message, "conflict: ")
}

// TooManyRequestsError returns an error with category TooManyRequests
func TooManyRequestsError(err error, message string) error {
	return newError(CategoryTooManyRequests, err, message, "rate limited: ")
}

// DependencyError returns an error with category DependencyFailure.
// Used when Solana RPC or the chat completion API fails.
func DependencyError(err error, message string) error {
	return newError(CategoryDependencyFailure, err, message, "dependency failure: ")
}

// StatusCode returns the HTTP status code for the error category
func (err ServiceError) StatusCode() int {
	switch err.Category {
	case CategoryDataError:
		return http.StatusBadRequest
	case CategoryUnauthorized:
		return http.StatusUnauthorized
	case CategoryForbidden:
		return http.StatusForbidden
	case CategoryResourceNotFound:
		return http.StatusNotFound
	case CategoryDataConflict:
		return http.StatusConflict
	case CategoryTooManyRequests:
		return http.StatusTooManyRequests
	case CategoryDependencyFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
