package rotator

import (
	"errors"
	"fmt"
)

// ErrAttemptTimeout is reported for an attempt that did not get a response
// within the configured timeout.
var ErrAttemptTimeout = errors.New("attempt timed out")

// ConfigError is returned when the fixed proxy index does not exist or no
// proxies are configured.
type ConfigError struct {
	Index int
	Size  int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("proxy index %d does not exist (%d proxies configured)", e.Index, e.Size)
}

// StatusError is one attempt answered with a status outside 200-299. Fetch
// never returns it directly; it is reachable through ExhaustedError.
type StatusError struct {
	StatusCode int
	Proxy      string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP status %d from %s", e.StatusCode, e.Proxy)
}

// ExhaustedError is returned when every permitted attempt failed.
type ExhaustedError struct {
	Attempts int
	// Last is the error of the final attempt.
	Last error
}

func (e *ExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("all attempts failed (%d)", e.Attempts)
	}
	return fmt.Sprintf("all attempts failed (%d): %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}
