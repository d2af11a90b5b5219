package providers

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/commjoen/whoisintel/pkg/models"
)

// ErrAllRateLimited is returned when every eligible provider is blocked by
// its rate limiter before a single attempt could be made.
var ErrAllRateLimited = errors.New("no providers available (rate limited)")

const (
	defaultQuota       = 30
	defaultWindow      = time.Minute
	defaultMaxAttempts = 3
	defaultBackoffBase = 500 * time.Millisecond
)

// ManagerConfig tunes rotation, retry and rate limiting behavior.
type ManagerConfig struct {
	// Quota is the per-provider request budget per Window.
	Quota  int
	Window time.Duration
	// Quotas overrides the budget for individual providers.
	Quotas map[string]int

	// MaxAttempts bounds retries within a single provider.
	MaxAttempts int
	BackoffBase time.Duration

	// Rotate starts selection at a shared round-robin pointer instead of
	// always walking the set in priority order.
	Rotate bool
	// Random selects providers randomly instead of round-robin; implies
	// Rotate.
	Random bool

	Logger *slog.Logger
}

// Manager holds the ordered provider set and services a query by rotating
// through eligible providers until one succeeds or all are exhausted.
type Manager struct {
	providers []Provider
	limiter   *RateLimiter

	maxAttempts int
	backoffBase time.Duration
	rotate      bool
	random      bool

	mu   sync.Mutex
	next int

	logger *slog.Logger

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewManager creates a manager over the given providers. Order encodes
// priority for round-robin starts and for result merging downstream.
func NewManager(providerSet []Provider, cfg ManagerConfig) *Manager {
	if cfg.Quota == 0 {
		cfg.Quota = defaultQuota
	}
	if cfg.Window == 0 {
		cfg.Window = defaultWindow
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{
		providers:   providerSet,
		limiter:     NewRateLimiter(cfg.Quota, cfg.Window, cfg.Quotas),
		maxAttempts: cfg.MaxAttempts,
		backoffBase: cfg.BackoffBase,
		rotate:      cfg.Rotate || cfg.Random,
		random:      cfg.Random,
		logger:      cfg.Logger,
		sleep:       time.Sleep,
	}
}

// Providers returns the configured provider set in priority order.
func (m *Manager) Providers() []Provider {
	return m.providers
}

// Do services one query: select the next eligible provider, invoke it with
// bounded retries, and fall over to the next on failure. The returned slice
// holds one response per attempted (or rate-blocked) provider. The error is
// non-nil only when every provider was rate limited before any attempt.
func (m *Manager) Do(ctx context.Context, query string) ([]models.ProviderResponse, error) {
	tried := make(map[string]struct{})
	responses := make([]models.ProviderResponse, 0, len(m.providers))
	attempted := false

	for {
		provider, blocked := m.selectNext(query, tried)
		if provider == nil {
			break
		}
		tried[provider.Name()] = struct{}{}

		if blocked {
			responses = append(responses, models.ProviderResponse{
				Provider:    provider.Name(),
				Error:       "rate limit exceeded",
				RetrievedAt: time.Now().UTC(),
			})
			continue
		}
		attempted = true

		resp := m.invoke(ctx, provider, query)
		responses = append(responses, *resp)
		if resp.Success || resp.NotFound {
			return responses, nil
		}
		m.logger.Debug("provider failed, falling over",
			"provider", provider.Name(), "query", query, "error", resp.Error)
	}

	if !attempted && len(responses) > 0 {
		return responses, ErrAllRateLimited
	}
	return responses, nil
}

// invoke runs one provider with exponential backoff between attempts.
// Configuration errors short-circuit retry; authoritative negatives and
// non-transient failures are not retried either.
func (m *Manager) invoke(ctx context.Context, provider Provider, query string) *models.ProviderResponse {
	var resp *models.ProviderResponse
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		m.limiter.Record(provider.Name())
		resp = provider.Lookup(ctx, query)
		if resp.Success || resp.NotFound {
			return resp
		}
		if isConfiguration(resp.Error) || !isTransient(resp.Error) {
			return resp
		}
		if attempt < m.maxAttempts {
			select {
			case <-ctx.Done():
				return resp
			default:
			}
			m.sleep(m.backoffBase * time.Duration(attempt))
		}
	}
	return resp
}

// selectNext picks the next provider that can serve the query and has not
// been tried for it. The second return value reports that the provider was
// eligible but rate-blocked. Selection is a shared round-robin pointer (or
// a random index) plus the per-query exclusion set.
func (m *Manager) selectNext(query string, tried map[string]struct{}) (Provider, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.providers)
	if n == 0 {
		return nil, false
	}

	start := 0
	switch {
	case m.random:
		start = rand.Intn(n)
	case m.rotate:
		start = m.next
	}
	for i := 0; i < n; i++ {
		candidate := m.providers[(start+i)%n]
		if _, done := tried[candidate.Name()]; done {
			continue
		}
		if !candidate.IsAvailable(query) {
			continue
		}
		if m.rotate && !m.random {
			m.next = (start + i + 1) % n
		}
		return candidate, !m.limiter.Allow(candidate.Name())
	}
	return nil, false
}

// RateLimiter enforces a fixed request quota per rolling window for each
// provider. Counters reset when the window elapses.
type RateLimiter struct {
	mu      sync.Mutex
	states  map[string]*providerWindow
	quota   int
	quotas  map[string]int
	window  time.Duration
	nowFunc func() time.Time
}

type providerWindow struct {
	windowStart time.Time
	count       int
}

// NewRateLimiter creates a limiter with the given default quota per window
// and optional per-provider overrides.
func NewRateLimiter(quota int, window time.Duration, quotas map[string]int) *RateLimiter {
	return &RateLimiter{
		states:  make(map[string]*providerWindow),
		quota:   quota,
		quotas:  quotas,
		window:  window,
		nowFunc: time.Now,
	}
}

// Allow reports whether the provider has remaining budget in the current
// window. It does not consume budget; Record does.
func (r *RateLimiter) Allow(provider string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := r.state(provider)
	return state.count < r.quotaFor(provider)
}

// Record consumes one unit of the provider's budget.
func (r *RateLimiter) Record(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state(provider).count++
}

func (r *RateLimiter) state(provider string) *providerWindow {
	now := r.nowFunc()
	state, ok := r.states[provider]
	if !ok {
		state = &providerWindow{windowStart: now}
		r.states[provider] = state
	}
	if now.Sub(state.windowStart) >= r.window {
		state.windowStart = now
		state.count = 0
	}
	return state
}

func (r *RateLimiter) quotaFor(provider string) int {
	if q, ok := r.quotas[provider]; ok && q > 0 {
		return q
	}
	return r.quota
}
