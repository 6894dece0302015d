package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRetryWithBackoff_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, nil, 5, time.Millisecond, zap.NewNop(), "dial")

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_GivesUp(t *testing.T) {
	attempts := 0
	err := retryWithBackoff(func() error {
		attempts++
		return errors.New("connection refused")
	}, nil, 3, time.Millisecond, zap.NewNop(), "dial")

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "dial failed after 3 attempts")
}

func TestRetryWithBackoff_StopsOnPermanentError(t *testing.T) {
	attempts := 0
	permanent := errors.New("invalid gateway address")
	err := retryWithBackoff(func() error {
		attempts++
		return permanent
	}, func(error) bool { return false }, 5, time.Millisecond, zap.NewNop(), "dial")

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}
