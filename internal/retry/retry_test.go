// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunStopsOnFirstSuccess(t *testing.T) {
	calls := 0
	err := Run(func() error {
		calls++
		return nil
	}, 3, time.Nanosecond)

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRunExhaustsAttempts(t *testing.T) {
	expectedErr := errors.New("always fails")

	calls := 0
	err := Run(func() error {
		calls++
		return expectedErr
	}, 3, time.Nanosecond)

	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 3, calls)
}

func TestRunRecoversAfterFailures(t *testing.T) {
	calls := 0
	err := Run(func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, 5, time.Nanosecond)

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRunWithExpBackoffSucceeds(t *testing.T) {
	cancelled, err := RunWithExpBackoff(func() error {
		return nil
	}, 3, time.Nanosecond, 2.0, nil)

	assert.NoError(t, err)
	assert.False(t, cancelled)
}

func TestRunWithExpBackoffCancel(t *testing.T) {
	cancel := make(chan struct{})
	close(cancel)

	calls := 0
	cancelled, err := RunWithExpBackoff(func() error {
		calls++
		return errors.New("always fails")
	}, 10, time.Hour, 2.0, cancel)

	assert.Error(t, err)
	assert.True(t, cancelled)
	assert.Equal(t, 1, calls)
}
