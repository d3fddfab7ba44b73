// Package domain defines provider-level errors for the quotes feature.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited is returned when the provider's limiter denied the call.
	// Callers treat it like an empty response.
	ErrRateLimited = errors.New("provider rate limit reached")

	// ErrMissingCredential is returned by Ready when no API key is configured.
	ErrMissingCredential = errors.New("provider credential not configured")
)

// ProviderUnavailableError reports a failed provider call: transport error,
// timeout, non-2xx status, or a payload that could not be decoded.
type ProviderUnavailableError struct {
	Provider   string
	Op         string // "quote", "search", ...
	StatusCode int    // 0 when no response was received
	Err        error
}

func (e *ProviderUnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s unavailable (http %d): %v", e.Provider, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s unavailable: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderUnavailableError) Unwrap() error { return e.Err }

// IsProviderUnavailable reports whether err wraps a ProviderUnavailableError.
func IsProviderUnavailable(err error) bool {
	var pe *ProviderUnavailableError
	return errors.As(err, &pe)
}
