// Package providers contains clients for third-party text-generation
// services and the fallback dispatcher that tries them in priority order.
package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrAllProvidersUnavailable is returned when every configured provider
// failed, or no provider is configured at all.
var ErrAllProvidersUnavailable = errors.New("no text-generation provider available")

// Provider is a single text-generation backend. Configured reports whether
// the provider has credentials; unconfigured providers are skipped by the
// dispatcher rather than treated as errors.
type Provider interface {
	Name() string
	Configured() bool
	Generate(ctx context.Context, prompt string) (string, error)
}

// readBody drains a response body, capping it to keep error paths bounded.
func readBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
