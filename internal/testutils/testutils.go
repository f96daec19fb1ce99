package testutils

import (
	"testing"
	"time"
)

// WaitClosed fails the test if ch is not closed within timeout
func WaitClosed(t *testing.T, ch <-chan struct{}, timeout time.Duration, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		t.Fatal(msg)
	}
}

// AssertStillOpen fails the test if ch closes within the window. Used to
// assert something did NOT happen yet, e.g. the pool did not shut down while
// a producer was still in flight.
func AssertStillOpen(t *testing.T, ch <-chan struct{}, window time.Duration, msg string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatal(msg)
	case <-time.After(window):
	}
}
