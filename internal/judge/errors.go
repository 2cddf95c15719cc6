package judge

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies provider failures. AuthMissing means the provider has
// no credential configured and is treated as absent rather than failed; the
// other kinds remove the provider's contribution from consensus without
// failing the detection call.
type ErrorKind string

const (
	KindAuthMissing        ErrorKind = "auth_missing"
	KindTimeout            ErrorKind = "timeout"
	KindMalformedResponse  ErrorKind = "malformed_response"
	KindAllModelsExhausted ErrorKind = "all_models_exhausted"
)

// ProviderError is the only error type the provider clients return.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from err, or "" when err carries no
// ProviderError.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func authMissing(provider string) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindAuthMissing}
}

// classify wraps a single-call failure in the matching typed error: timeouts
// keep their own kind, everything else counts as an unusable response.
func classify(provider string, err error) *ProviderError {
	kind := KindMalformedResponse
	if isTimeout(err) {
		kind = KindTimeout
	}
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
