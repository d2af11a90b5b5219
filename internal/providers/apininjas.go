package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/commjoen/whoisintel/pkg/models"
)

const (
	apiNinjasBaseURL        = "https://api.api-ninjas.com/v1/whois"
	apiNinjasDefaultTimeout = 15 * time.Second
)

// APINinjasProvider wraps the commercial API Ninjas WHOIS endpoint. It is
// disabled without an API key and last in the default priority order.
type APINinjasProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewAPINinjasProvider creates the commercial API provider. An empty
// baseURL selects the production endpoint.
func NewAPINinjasProvider(baseURL, apiKey string, timeout time.Duration) *APINinjasProvider {
	if baseURL == "" {
		baseURL = apiNinjasBaseURL
	}
	if timeout == 0 {
		timeout = apiNinjasDefaultTimeout
	}
	return &APINinjasProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider identifier.
func (p *APINinjasProvider) Name() string {
	return "apininjas"
}

// IsAvailable reports whether an API key is configured.
func (p *APINinjasProvider) IsAvailable(query string) bool {
	return p.apiKey != ""
}

// Lookup queries the commercial API and maps its JSON payload onto the
// shared record shape.
func (p *APINinjasProvider) Lookup(ctx context.Context, query string) *models.ProviderResponse {
	start := time.Now()
	resp := newResponse(p.Name())

	if p.apiKey == "" {
		// Configuration failure: the manager skips this provider for the
		// remainder of the call instead of retrying.
		resp.Error = "API key not configured"
		return finish(resp, start)
	}

	reqURL := fmt.Sprintf("%s?domain=%s", p.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fail(resp, start, err)
	}
	req.Header.Set("X-Api-Key", p.apiKey)
	req.Header.Set("Accept", "application/json")

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
	case httpResp.StatusCode == http.StatusUnauthorized, httpResp.StatusCode == http.StatusForbidden:
		resp.Error = "API key rejected"
		return finish(resp, start)
	case httpResp.StatusCode != http.StatusOK:
		resp.Error = fmt.Sprintf("API returned %s", httpResp.Status)
		return finish(resp, start)
	}

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return fail(resp, start, err)
	}

	var payload apiNinjasResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return fail(resp, start, fmt.Errorf("decode API response: %w", err))
	}
	if payload.DomainName == "" {
		return notFound(resp, start)
	}

	resp.Success = true
	resp.Record = payload.toRecord(string(body))
	return finish(resp, start)
}

// apiNinjasResponse mirrors the commercial API payload. Dates arrive as
// unix timestamps.
type apiNinjasResponse struct {
	DomainName     string   `json:"domain_name"`
	Registrar      string   `json:"registrar"`
	WhoisServer    string   `json:"whois_server"`
	CreationDate   int64    `json:"creation_date"`
	ExpirationDate int64    `json:"expiration_date"`
	UpdatedDate    int64    `json:"updated_date"`
	NameServers    []string `json:"name_servers"`
	Status         []string `json:"status"`
	DNSSEC         string   `json:"dnssec"`
	Org            string   `json:"org"`
	Name           string   `json:"name"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	Zipcode        string   `json:"zipcode"`
	Country        string   `json:"country"`
	Emails         string   `json:"emails"`
}

func (a *apiNinjasResponse) toRecord(raw string) *models.WhoisRecord {
	record := &models.WhoisRecord{
		DomainName:     strings.ToLower(a.DomainName),
		Registrar:      a.Registrar,
		CreationDate:   unixToISO(a.CreationDate),
		ExpirationDate: unixToISO(a.ExpirationDate),
		UpdatedDate:    unixToISO(a.UpdatedDate),
		Status:         a.Status,
		DNSSEC:         a.DNSSEC,
		RawText:        raw,
	}
	for _, ns := range a.NameServers {
		ns = strings.ToLower(strings.TrimSpace(ns))
		if ns != "" {
			record.NameServers = append(record.NameServers, ns)
		}
	}
	contact := &models.Contact{
		Name:         a.Name,
		Organization: a.Org,
		Street:       a.Address,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.Zipcode,
		Country:      a.Country,
		Email:        a.Emails,
	}
	if !contact.IsEmpty() {
		record.Registrant = contact
	}
	record.SetExtra("whois_server", a.WhoisServer)
	return record
}

func unixToISO(ts int64) string {
	if ts <= 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
