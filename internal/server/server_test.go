package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/commjoen/whoisintel/internal/cache"
	"github.com/commjoen/whoisintel/internal/lookup"
	"github.com/commjoen/whoisintel/internal/metrics"
	"github.com/commjoen/whoisintel/pkg/models"
)

// fakeResolver scripts the result per query and records received options.
type fakeResolver struct {
	results  map[string]*models.LookupResult
	lastOpts lookup.Options
}

func (f *fakeResolver) Lookup(ctx context.Context, query string, opts lookup.Options) *models.LookupResult {
	f.lastOpts = opts
	if result, ok := f.results[query]; ok {
		return result
	}
	return &models.LookupResult{
		Query:     query,
		Timestamp: time.Now().UTC(),
		Providers: []models.ProviderResponse{},
		Errors:    []string{"invalid domain or IP: " + query},
	}
}

func newTestServer(t *testing.T, resolver Resolver) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(resolver, cache.NewMemory(), nil, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeResolver{})

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestLookupEndpoint(t *testing.T) {
	resolver := &fakeResolver{results: map[string]*models.LookupResult{
		"example.com": {
			Query:   "example.com",
			Success: true,
			Record:  &models.WhoisRecord{DomainName: "example.com", Registrar: "Example Registrar"},
			Providers: []models.ProviderResponse{
				{Provider: "whois", Success: true},
			},
		},
	}}
	srv := newTestServer(t, resolver)

	resp, err := http.Get(srv.URL + "/api/v1/lookup?q=example.com&force=true&dnscheck=true")
	if err != nil {
		t.Fatalf("GET lookup: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var result models.LookupResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Success || result.Record.Registrar != "Example Registrar" {
		t.Errorf("result = %+v", result)
	}
	if !resolver.lastOpts.Force || !resolver.lastOpts.DNSCheck {
		t.Errorf("opts = %+v, want both flags set", resolver.lastOpts)
	}
}

func TestLookupEndpointRejectsBadInput(t *testing.T) {
	srv := newTestServer(t, &fakeResolver{})

	tests := []struct {
		name string
		url  string
	}{
		{"missing q", "/api/v1/lookup"},
		{"invalid domain", "/api/v1/lookup?q=..bad.."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.url)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestCacheEndpoints(t *testing.T) {
	store := cache.NewMemory()
	store.Set(context.Background(), "example.com", &models.LookupResult{Query: "example.com"}, time.Minute)
	srv := httptest.NewServer(New(&fakeResolver{}, store, nil, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/cache/stats")
	if err != nil {
		t.Fatalf("GET stats: %v", err)
	}
	var stats models.CacheStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if stats.Keys != 1 {
		t.Errorf("Keys = %d, want 1", stats.Keys)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/cache", nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE cache: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", delResp.StatusCode)
	}

	if got, _ := store.Get(context.Background(), "example.com"); got != nil {
		t.Error("cache entry survived DELETE")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	m.ObserveLookup("success")

	srv := httptest.NewServer(New(&fakeResolver{}, cache.NewMemory(), registry, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	// Without a registry the endpoint is absent entirely.
	bare := newTestServer(t, &fakeResolver{})
	noMetrics, err := http.Get(bare.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics (bare): %v", err)
	}
	noMetrics.Body.Close()
	if noMetrics.StatusCode != http.StatusNotFound {
		t.Errorf("bare status = %d, want 404", noMetrics.StatusCode)
	}
}
