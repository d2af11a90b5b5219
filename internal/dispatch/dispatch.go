// Package dispatch forwards lookups from a coordinating instance to sibling
// workers over HTTP, falling back to local resolution whenever the forward
// fails. It is a deployment-topology convenience around the orchestrator.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/commjoen/whoisintel/internal/lookup"
	"github.com/commjoen/whoisintel/pkg/models"
)

const (
	defaultForwardTimeout = 20 * time.Second
	maxForwardBody        = 1 << 20
)

// Forwarder routes queries to worker instances round-robin. Local
// resolution on forward failure is a required behavior, not best effort: a
// worker outage must never surface to the caller as a lookup failure.
type Forwarder struct {
	workers []string
	local   *lookup.Service
	client  *http.Client
	logger  *slog.Logger
	next    atomic.Uint64
}

// New creates a forwarder over the given worker base URLs. With no workers
// every lookup resolves locally.
func New(workers []string, local *lookup.Service, timeout time.Duration, logger *slog.Logger) *Forwarder {
	if timeout == 0 {
		timeout = defaultForwardTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{
		workers: workers,
		local:   local,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Lookup forwards the query to the next worker; any failure of the outer
// call (timeout, non-2xx, network or decode error) falls back to local
// resolution.
func (f *Forwarder) Lookup(ctx context.Context, query string, opts lookup.Options) *models.LookupResult {
	if len(f.workers) == 0 {
		return f.local.Lookup(ctx, query, opts)
	}

	worker := f.workers[f.next.Add(1)%uint64(len(f.workers))]
	result, err := f.forward(ctx, worker, query, opts)
	if err != nil {
		f.logger.Warn("forward failed, resolving locally",
			"worker", worker, "query", query, "error", err)
		return f.local.Lookup(ctx, query, opts)
	}
	return result
}

func (f *Forwarder) forward(ctx context.Context, worker, query string, opts lookup.Options) (*models.LookupResult, error) {
	reqURL := fmt.Sprintf("%s/api/v1/lookup?q=%s&force=%s",
		worker, url.QueryEscape(query), strconv.FormatBool(opts.Force))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build forward request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forward to %s: %w", worker, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("worker %s returned %s", worker, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxForwardBody))
	if err != nil {
		return nil, fmt.Errorf("read worker response: %w", err)
	}
	var result models.LookupResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode worker response: %w", err)
	}
	return &result, nil
}

// Healthy reports which workers answer their health endpoint right now.
func (f *Forwarder) Healthy(ctx context.Context) map[string]bool {
	status := make(map[string]bool, len(f.workers))
	for _, worker := range f.workers {
		status[worker] = f.ping(ctx, worker)
	}
	return status
}

func (f *Forwarder) ping(ctx context.Context, worker string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, worker+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}
