package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/commjoen/whoisintel/internal/domainutil"
	"github.com/commjoen/whoisintel/internal/rdap"
	"github.com/commjoen/whoisintel/pkg/models"
)

const (
	// rdap.org redirects to the authoritative RIR for the address.
	rdapDefaultBaseURL = "https://rdap.org/ip"
	rdapDefaultTimeout = 15 * time.Second
	rdapMaxRedirects   = 5
)

// RDAPProvider resolves IP registration data over RDAP HTTPS.
type RDAPProvider struct {
	baseURL string
	client  *http.Client
}

// NewRDAPProvider creates an RDAP provider. An empty baseURL selects the
// rdap.org redirector.
func NewRDAPProvider(baseURL string, timeout time.Duration) *RDAPProvider {
	if baseURL == "" {
		baseURL = rdapDefaultBaseURL
	}
	if timeout == 0 {
		timeout = rdapDefaultTimeout
	}
	return &RDAPProvider{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= rdapMaxRedirects {
					return fmt.Errorf("stopped after %d redirects", rdapMaxRedirects)
				}
				return nil
			},
		},
	}
}

// Name returns the provider identifier.
func (p *RDAPProvider) Name() string {
	return "rdap"
}

// IsAvailable reports whether the query is an IP literal; RDAP here only
// serves ip network objects.
func (p *RDAPProvider) IsAvailable(query string) bool {
	return domainutil.IsIP(query)
}

// Lookup fetches and parses the RDAP ip network object for the query.
func (p *RDAPProvider) Lookup(ctx context.Context, query string) *models.ProviderResponse {
	start := time.Now()
	resp := newResponse(p.Name())

	if !p.IsAvailable(query) {
		resp.Error = fmt.Sprintf("%q is not an IP address", query)
		return finish(resp, start)
	}

	reqURL := fmt.Sprintf("%s/%s", p.baseURL, url.PathEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fail(resp, start, err)
	}
	req.Header.Set("Accept", "application/rdap+json")

	httpResp, err := p.client.Do(req)
	if err != nil {
		return fail(resp, start, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	switch {
	case httpResp.StatusCode == http.StatusNotFound:
		return notFound(resp, start)
	case httpResp.StatusCode == http.StatusTooManyRequests:
		resp.Error = "rate limited by registry"
		return finish(resp, start)
	case httpResp.StatusCode != http.StatusOK:
		resp.Error = fmt.Sprintf("rdap endpoint returned %s", httpResp.Status)
		return finish(resp, start)
	}

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return fail(resp, start, err)
	}

	record, err := rdap.Parse(body)
	if err != nil {
		return fail(resp, start, err)
	}
	resp.Success = true
	resp.Record = record
	return finish(resp, start)
}
