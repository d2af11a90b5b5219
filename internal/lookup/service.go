// Package lookup is the engine's public entry point: it normalizes the
// query, consults the cache, dispatches providers, merges their responses
// and applies the caching policy to the outcome.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/commjoen/whoisintel/internal/cache"
	"github.com/commjoen/whoisintel/internal/dnscheck"
	"github.com/commjoen/whoisintel/internal/domainutil"
	"github.com/commjoen/whoisintel/internal/metrics"
	"github.com/commjoen/whoisintel/internal/providers"
	"github.com/commjoen/whoisintel/pkg/models"
)

const (
	// Registration data moves slowly; a full day for confirmed answers.
	defaultSuccessTTL = 24 * time.Hour
	// A miss can turn into a registration any time, so it expires fast.
	defaultNotFoundTTL = time.Hour
)

// Options modify a single lookup.
type Options struct {
	// Force bypasses the cache read; the fresh result is still written back.
	Force bool
	// DNSCheck cross-references registry nameservers against live DNS.
	DNSCheck bool
}

// Service orchestrates the full resolution pipeline. Construct one per
// process and share it; all state behind it is concurrency safe.
type Service struct {
	manager *providers.Manager
	store   cache.Store
	checker *dnscheck.Checker
	metrics *metrics.Metrics
	logger  *slog.Logger

	successTTL  time.Duration
	notFoundTTL time.Duration

	group singleflight.Group
}

// Config wires the orchestrator's collaborators. Manager and Store are
// required; the rest defaults sensibly.
type Config struct {
	Manager     *providers.Manager
	Store       cache.Store
	Checker     *dnscheck.Checker
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
	SuccessTTL  time.Duration
	NotFoundTTL time.Duration
}

// New creates a lookup service.
func New(cfg Config) (*Service, error) {
	if cfg.Manager == nil {
		return nil, fmt.Errorf("provider manager is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SuccessTTL == 0 {
		cfg.SuccessTTL = defaultSuccessTTL
	}
	if cfg.NotFoundTTL == 0 {
		cfg.NotFoundTTL = defaultNotFoundTTL
	}
	return &Service{
		manager:     cfg.Manager,
		store:       cfg.Store,
		checker:     cfg.Checker,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		successTTL:  cfg.SuccessTTL,
		notFoundTTL: cfg.NotFoundTTL,
	}, nil
}

// Lookup resolves registration data for a domain name or IP literal.
// Invalid input returns immediately with an error and an empty provider
// list; no network calls are made.
func (s *Service) Lookup(ctx context.Context, query string, opts Options) *models.LookupResult {
	start := time.Now()

	normalized, err := normalizeQuery(query)
	if err != nil {
		s.observe("invalid")
		return &models.LookupResult{
			Query:     strings.TrimSpace(query),
			Timestamp: time.Now().UTC(),
			Providers: []models.ProviderResponse{},
			Errors:    []string{err.Error()},
		}
	}

	if !opts.Force {
		if cached, err := s.store.Get(ctx, normalized); err != nil {
			s.logger.Warn("cache read failed", "query", normalized, "error", err)
		} else if cached != nil {
			hit := *cached
			hit.Cached = true
			hit.Timestamp = time.Now().UTC()
			hit.ElapsedMs = 0
			s.observe("cache_hit")
			if s.metrics != nil {
				s.metrics.ObserveCacheHit()
			}
			return &hit
		}
	}

	// Concurrent identical queries collapse into one upstream resolution.
	value, _, _ := s.group.Do(normalized, func() (interface{}, error) {
		return s.resolve(ctx, normalized, opts), nil
	})
	// Shallow copy: the resolved value is shared across collapsed callers.
	result := *value.(*models.LookupResult)
	result.ElapsedMs = time.Since(start).Milliseconds()
	return &result
}

// resolve runs the provider pipeline for a normalized query and applies
// the cache write-back policy.
func (s *Service) resolve(ctx context.Context, normalized string, opts Options) *models.LookupResult {
	result := &models.LookupResult{
		Query:     normalized,
		Timestamp: time.Now().UTC(),
	}

	responses, err := s.manager.Do(ctx, normalized)
	result.Providers = responses
	if errors.Is(err, providers.ErrAllRateLimited) {
		result.Errors = append(result.Errors, err.Error())
	}

	for _, resp := range responses {
		if resp.Success {
			continue
		}
		if s.metrics != nil && !resp.NotFound {
			s.metrics.ObserveProviderError(resp.Provider)
		}
		if resp.Error != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", resp.Provider, resp.Error))
		}
	}

	result.Record = mergeRecords(responses)
	result.Success = result.Record != nil
	result.NotFound = !result.Success && anyNotFound(responses)

	if result.Success && opts.DNSCheck && s.checker != nil && !domainutil.IsIP(normalized) {
		result.DNSCheck = s.checker.Check(ctx, normalized, result.Record.NameServers)
	}

	s.writeBack(ctx, normalized, result)
	return result
}

// writeBack caches the outcome: full TTL for success, a short TTL for an
// authoritative miss, nothing for transient failure so outages are not
// amplified.
func (s *Service) writeBack(ctx context.Context, key string, result *models.LookupResult) {
	var ttl time.Duration
	switch {
	case result.Success:
		ttl = s.successTTL
		s.observe("success")
	case result.NotFound:
		ttl = s.notFoundTTL
		s.observe("not_found")
	default:
		s.observe("error")
		return
	}
	if err := s.store.Set(ctx, key, result, ttl); err != nil {
		s.logger.Warn("cache write failed", "query", key, "error", err)
	}
}

func (s *Service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveLookup(outcome)
	}
}

// anyNotFound reports whether any provider returned an authoritative
// not-found answer.
func anyNotFound(responses []models.ProviderResponse) bool {
	for _, resp := range responses {
		if resp.NotFound {
			return true
		}
	}
	return false
}

// normalizeQuery derives the immutable normalized query: a validated IP
// literal passes through as-is, anything else is normalized and validated
// as a domain name.
func normalizeQuery(query string) (string, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", fmt.Errorf("empty query")
	}
	if domainutil.IsIP(trimmed) {
		return strings.ToLower(trimmed), nil
	}
	normalized := domainutil.Normalize(trimmed)
	if domainutil.IsIP(normalized) {
		return normalized, nil
	}
	if !domainutil.IsValidDomain(normalized) {
		return "", fmt.Errorf("invalid domain or IP: %q", trimmed)
	}
	return normalized, nil
}
