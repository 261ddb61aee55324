package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict")
	ErrInternalServer     = errors.New("internal server error")
	ErrValidation         = errors.New("validation failed")
	ErrServiceUnavailable = errors.New("service unavailable") // e.g. upstream 5xx
	ErrUpstreamTimeout    = errors.New("upstream request timed out")
	ErrRateLimited        = errors.New("upstream rate limit exceeded")
	ErrDataLoading        = errors.New("required problem data is still loading, please wait a moment and try again")
	ErrStaleSet           = errors.New("stored practice set was generated by an older algorithm, regenerate it")
	// ErrConstraintMismatch means the daily_records unique index does not match
	// (user_id, date). Run the dppindex migration.
	ErrConstraintMismatch = errors.New("database conflict, the daily record index needs migration")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrConstraintMismatch) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrStaleSet) {
		return http.StatusPreconditionFailed
	}
	if errors.Is(err, ErrRateLimited) {
		return http.StatusTooManyRequests
	}
	if errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrDataLoading) {
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, ErrUpstreamTimeout) {
		return http.StatusGatewayTimeout
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" { // Unique violation
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// ErrorCode returns a stable machine-readable code for the error body.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConstraintMismatch):
		return "constraint_mismatch"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBadRequest):
		return "invalid_request"
	case errors.Is(err, ErrStaleSet):
		return "stale_set"
	case errors.Is(err, ErrDataLoading):
		return "data_loading"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrUpstreamTimeout):
		return "upstream_timeout"
	case errors.Is(err, ErrServiceUnavailable):
		return "service_unavailable"
	}
	return "internal"
}

// IsRetryable reports whether the same request may succeed if repeated later.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUpstreamTimeout) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrDataLoading)
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
