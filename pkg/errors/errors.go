package messagely_errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDuplicateUser = errors.New("username already taken")
	ErrRateLimited   = errors.New("rate limited")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so the two are indistinguishable to the client.
	ErrInvalidCredentials = fmt.Errorf("invalid username/password: %w", ErrInvalidInput)
)

// HTTPStatus maps an error chain onto the status code the API reports for it.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrDuplicateUser):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
