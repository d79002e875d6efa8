package xerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common reusable application errors
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInvalidContact      = errors.New("contact has no non-empty field")
	ErrNoSuchProfile       = errors.New("no such profile")
	ErrNoSuchSource        = errors.New("no such source")
	ErrNoSuchContact       = errors.New("no such contact")
	ErrNoSuchFavorite      = errors.New("no such favorite")
	ErrNoSuchTenant        = errors.New("no such tenant")
	ErrNoSuchUser          = errors.New("no such user")
	ErrNoSuchDisplay       = errors.New("no such display")
	ErrUnauthorized        = errors.New("unauthorized access")
	ErrForbidden           = errors.New("forbidden")
	ErrDuplicatedContact   = errors.New("duplicated contact")
	ErrDuplicatedFavorite  = errors.New("duplicated favorite")
	ErrDuplicatedSource    = errors.New("duplicated source")
	ErrDatabaseUnavailable = errors.New("database unavailable")
	ErrNoSuchExternalToken = errors.New("no such external token")
)

// StatusCode maps an application error to its HTTP status.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrInvalidContact):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNoSuchProfile),
		errors.Is(err, ErrNoSuchSource),
		errors.Is(err, ErrNoSuchContact),
		errors.Is(err, ErrNoSuchFavorite),
		errors.Is(err, ErrNoSuchTenant),
		errors.Is(err, ErrNoSuchUser),
		errors.Is(err, ErrNoSuchDisplay):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicatedContact),
		errors.Is(err, ErrDuplicatedFavorite),
		errors.Is(err, ErrDuplicatedSource):
		return http.StatusConflict
	case errors.Is(err, ErrDatabaseUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
