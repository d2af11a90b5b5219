package providers

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/likexian/whois"

	"github.com/commjoen/whoisintel/internal/domainutil"
	"github.com/commjoen/whoisintel/internal/parser"
	"github.com/commjoen/whoisintel/pkg/models"
)

const (
	whoisDefaultTimeout = 15 * time.Second

	// Referral chains are followed a bounded number of hops; registries
	// occasionally refer in circles.
	domainReferralLimit = 2
	ipReferralLimit     = 1
)

var referralPattern = regexp.MustCompile(`(?im)^\s*(?:refer|registrar whois server|whois server|whois)\s*:\s*(\S+)\s*$`)

// WhoisProvider is the generic WHOIS socket provider. Server selection is
// TLD-driven through the static lookup table; unknown TLDs fall back to the
// whois library's own server discovery.
type WhoisProvider struct {
	client  *whois.Client
	timeout time.Duration
}

// NewWhoisProvider creates a generic WHOIS provider.
func NewWhoisProvider(timeout time.Duration) *WhoisProvider {
	if timeout == 0 {
		timeout = whoisDefaultTimeout
	}
	client := whois.NewClient()
	client.SetTimeout(timeout)
	// Referral follow is implemented here with an explicit hop budget.
	client.SetDisableReferral(true)
	return &WhoisProvider{
		client:  client,
		timeout: timeout,
	}
}

// Name returns the provider identifier.
func (p *WhoisProvider) Name() string {
	return "whois"
}

// IsAvailable returns true; the generic provider needs no configuration.
func (p *WhoisProvider) IsAvailable(query string) bool {
	return true
}

// Lookup queries the authoritative WHOIS server for the query's TLD,
// following registrar referrals up to the hop budget, and parses the final
// response.
func (p *WhoisProvider) Lookup(ctx context.Context, query string) *models.ProviderResponse {
	start := time.Now()
	resp := newResponse(p.Name())

	limit := domainReferralLimit
	server := ""
	if domainutil.IsIP(query) {
		limit = ipReferralLimit
	} else {
		server = domainutil.WhoisServer(domainutil.ExtractTLD(query))
	}

	raw, err := p.queryWithReferrals(ctx, query, server, limit)
	if err != nil {
		return fail(resp, start, err)
	}
	if strings.TrimSpace(raw) == "" {
		resp.Error = "empty response from registry"
		return finish(resp, start)
	}
	if parser.IsNotFound(raw) {
		return notFound(resp, start)
	}

	record, err := parser.Parse(raw, query)
	if err != nil {
		return fail(resp, start, err)
	}
	resp.Success = true
	resp.Record = record
	return finish(resp, start)
}

// queryWithReferrals issues the query and follows "refer:" style pointers
// to more specific servers, keeping the most detailed response seen.
func (p *WhoisProvider) queryWithReferrals(ctx context.Context, query, server string, limit int) (string, error) {
	raw, err := p.query(ctx, query, server)
	if err != nil {
		return "", err
	}

	seen := map[string]struct{}{}
	if server != "" {
		seen[server] = struct{}{}
	}
	for hop := 0; hop < limit; hop++ {
		next := extractReferral(raw)
		if next == "" {
			break
		}
		if _, visited := seen[next]; visited {
			break
		}
		seen[next] = struct{}{}

		referred, err := p.query(ctx, query, next)
		if err != nil || strings.TrimSpace(referred) == "" {
			// The referral target failing does not invalidate what the
			// parent registry already returned.
			break
		}
		raw = referred
	}
	return raw, nil
}

// query runs one blocking whois call under the provider timeout and the
// caller's context.
func (p *WhoisProvider) query(ctx context.Context, query, server string) (string, error) {
	type outcome struct {
		raw string
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		var raw string
		var err error
		if server != "" {
			raw, err = p.client.Whois(query, server)
		} else {
			raw, err = p.client.Whois(query)
		}
		done <- outcome{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(p.timeout + time.Second):
		return "", ErrTimeout
	case out := <-done:
		return out.raw, out.err
	}
}

// extractReferral finds a registrar WHOIS referral in a response, if any.
func extractReferral(raw string) string {
	match := referralPattern.FindStringSubmatch(raw)
	if match == nil {
		return ""
	}
	server := strings.ToLower(strings.TrimSpace(match[1]))
	server = strings.TrimPrefix(server, "rwhois://")
	server = strings.TrimPrefix(server, "whois://")
	server = strings.TrimPrefix(server, "http://")
	server = strings.TrimPrefix(server, "https://")
	server = strings.TrimSuffix(server, "/")
	if server == "" || strings.ContainsAny(server, " \t") {
		return ""
	}
	return server
}
