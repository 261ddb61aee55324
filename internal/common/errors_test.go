package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusFromError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("repo: %w", ErrNotFound), http.StatusNotFound},
		{ErrValidation, http.StatusBadRequest},
		{fmt.Errorf("upsert: %w", ErrConstraintMismatch), http.StatusConflict},
		{ErrStaleSet, http.StatusPreconditionFailed},
		{ErrRateLimited, http.StatusTooManyRequests},
		{ErrDataLoading, http.StatusServiceUnavailable},
		{fmt.Errorf("cf: %w", ErrUpstreamTimeout), http.StatusGatewayTimeout},
		{&pgconn.PgError{Code: "23505"}, http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HTTPStatusFromError(c.err), "%v", c.err)
	}
}

func TestConstraintMismatchIsDistinctFromConflict(t *testing.T) {
	assert.Equal(t, "constraint_mismatch", ErrorCode(ErrConstraintMismatch))
	assert.Equal(t, "conflict", ErrorCode(ErrConflict))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("x: %w", ErrUpstreamTimeout)))
	assert.True(t, IsRetryable(ErrRateLimited))
	assert.False(t, IsRetryable(ErrNotFound))
	assert.False(t, IsRetryable(ErrValidation))
}

func TestRespondWithErr(t *testing.T) {
	w := httptest.NewRecorder()
	RespondWithErr(w, fmt.Errorf("upsert daily record: %w", ErrConstraintMismatch))

	assert.Equal(t, http.StatusConflict, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "constraint_mismatch", body.Code)
	assert.Contains(t, body.Error, "migration")
	assert.False(t, body.Retryable)
}
