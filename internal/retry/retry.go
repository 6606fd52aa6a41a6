// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

// Package retry provides helpers for re-running flaky operations.
package retry

import (
	"math"
	"time"
)

// Run invokes function up to attempts times, sleeping for the given duration
// between failed attempts. It returns the error from the last attempt.
func Run(function func() error, attempts int, sleep time.Duration) (err error) {
	for i := 0; i < attempts; i++ {
		err = function()
		if err == nil {
			break
		}

		if i < attempts-1 {
			time.Sleep(sleep)
		}
	}

	return
}

// RunWithExpBackoff invokes function up to attempts times, multiplying the
// sleep between attempts by backoffBase after each failure. A receive on
// cancel aborts the wait early; cancel may be nil. Returns whether the run
// was cancelled, along with the error from the last attempt.
func RunWithExpBackoff(function func() error, attempts int, sleep time.Duration, backoffBase float64, cancel <-chan struct{}) (cancelled bool, err error) {
	for i := 0; i < attempts; i++ {
		err = function()
		if err == nil {
			break
		}

		if i == attempts-1 {
			break
		}

		backoff := time.Duration(float64(sleep) * math.Pow(backoffBase, float64(i)))

		select {
		case <-cancel:
			cancelled = true
			return
		case <-time.After(backoff):
		}
	}

	return
}
