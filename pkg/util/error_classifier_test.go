package util

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryableError(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		retryable, kind := IsRetryableError(nil)
		assert.False(t, retryable)
		assert.Empty(t, kind)
	})

	t.Run("malformed json never retries", func(t *testing.T) {
		var target struct{ N int }
		err := json.Unmarshal([]byte("{bad"), &target)
		retryable, kind := IsRetryableError(err)
		assert.False(t, retryable)
		assert.Equal(t, "json_decode_error", kind)
	})

	t.Run("missing row never retries", func(t *testing.T) {
		retryable, kind := IsRetryableError(pgx.ErrNoRows)
		assert.False(t, retryable)
		assert.Equal(t, "not_found", kind)
	})

	t.Run("duplicate key never retries", func(t *testing.T) {
		retryable, kind := IsRetryableError(errors.New(`duplicate key value violates unique constraint "notifications_pkey"`))
		assert.False(t, retryable)
		assert.Equal(t, "duplicate_key", kind)
	})

	t.Run("connection failures retry", func(t *testing.T) {
		retryable, kind := IsRetryableError(errors.New("dial tcp: connection refused"))
		assert.True(t, retryable)
		assert.Equal(t, "db_connection_error", kind)
	})

	t.Run("unknown errors do not retry", func(t *testing.T) {
		retryable, kind := IsRetryableError(errors.New("something odd"))
		assert.False(t, retryable)
		assert.Equal(t, "unknown_error", kind)
	})
}

func TestShouldRetry(t *testing.T) {
	assert.True(t, ShouldRetry(1, 5, true))
	assert.True(t, ShouldRetry(5, 5, true))
	assert.False(t, ShouldRetry(6, 5, true))
	assert.False(t, ShouldRetry(1, 5, false))
}
