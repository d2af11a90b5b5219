// Package providers implements the upstream registry transports and the
// rotation, rate limiting and fallback policy across them.
package providers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/commjoen/whoisintel/pkg/models"
)

// ErrTimeout is surfaced when a registry query exceeds its deadline.
var ErrTimeout = errors.New("registry query timeout")

// Provider is one upstream registry transport. Implementations never panic
// or return errors past this boundary; every failure becomes a
// ProviderResponse with Success=false and a populated Error.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// Lookup queries the provider for registration data.
	Lookup(ctx context.Context, query string) *models.ProviderResponse

	// IsAvailable returns true if the provider is configured and can
	// serve the given query.
	IsAvailable(query string) bool
}

// newResponse starts a response for one provider attempt.
func newResponse(provider string) *models.ProviderResponse {
	return &models.ProviderResponse{
		Provider:    provider,
		RetrievedAt: time.Now().UTC(),
	}
}

// finish stamps the elapsed time on a response and returns it.
func finish(resp *models.ProviderResponse, start time.Time) *models.ProviderResponse {
	resp.ElapsedMs = time.Since(start).Milliseconds()
	return resp
}

// fail marks a response as failed with a categorized error message.
func fail(resp *models.ProviderResponse, start time.Time, err error) *models.ProviderResponse {
	resp.Success = false
	resp.Error = categorizeError(err)
	return finish(resp, start)
}

// notFound marks a response as an authoritative negative result.
func notFound(resp *models.ProviderResponse, start time.Time) *models.ProviderResponse {
	resp.Success = false
	resp.NotFound = true
	resp.Error = "no match for query"
	return finish(resp, start)
}

// categorizeError converts transport errors to user-facing messages.
func categorizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded):
		return "registry query timeout"
	case strings.Contains(msg, "connection refused"):
		return "registry connection refused"
	case strings.Contains(msg, "no such host"):
		return "registry host not resolvable"
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "429"):
		return "rate limited by registry"
	default:
		return msg
	}
}

// isTransient reports whether an error message describes a condition worth
// retrying on the same provider.
func isTransient(msg string) bool {
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "rate limited") ||
		strings.Contains(msg, "connection reset")
}

// isConfiguration reports a terminal configuration failure: the provider is
// skipped for the remainder of the call and never retried.
func isConfiguration(msg string) bool {
	return strings.Contains(msg, "not configured") || strings.Contains(msg, "API key")
}
