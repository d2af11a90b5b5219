package providers

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/commjoen/whoisintel/internal/domainutil"
	"github.com/commjoen/whoisintel/internal/parser"
	"github.com/commjoen/whoisintel/pkg/models"
)

const (
	trabisHost           = "whois.trabis.gov.tr"
	trabisPort           = "43"
	trabisDefaultTimeout = 15 * time.Second

	// Below this length a response with no recognized fields is treated
	// as an error instead of a raw-only success.
	trabisMinResponse = 50

	maxResponseBytes = 256 * 1024
)

// Responses from the .tr registry use both languages for negatives.
var trabisNotFound = []string{
	"no match found",
	"not found",
	"alan adı bulunamadı",
	"alan adi bulunamadi",
	"bulunamadı",
	"bulunamadi",
}

// TrabisProvider queries the Turkish national registry over a raw TCP
// socket. Its response dialect mixes "** Section **" banners with dotted
// key alignment; parsing goes through the shared free-text parser, which
// knows the Turkish field names.
type TrabisProvider struct {
	host    string
	timeout time.Duration
	dialer  *net.Dialer
}

// NewTrabisProvider creates a provider for the .tr registry. An empty host
// selects the production registry endpoint.
func NewTrabisProvider(host string, timeout time.Duration) *TrabisProvider {
	if host == "" {
		host = net.JoinHostPort(trabisHost, trabisPort)
	}
	if timeout == 0 {
		timeout = trabisDefaultTimeout
	}
	return &TrabisProvider{
		host:    host,
		timeout: timeout,
		dialer:  &net.Dialer{Timeout: timeout},
	}
}

// Name returns the provider identifier.
func (p *TrabisProvider) Name() string {
	return "trabis"
}

// IsAvailable reports whether the query falls under the .tr zone; the
// registry answers for nothing else.
func (p *TrabisProvider) IsAvailable(query string) bool {
	if domainutil.IsIP(query) {
		return false
	}
	tld := domainutil.ExtractTLD(query)
	return tld == "tr" || strings.HasSuffix(tld, ".tr")
}

// Lookup queries the registry socket. Non-.tr domains are rejected before
// any network call.
func (p *TrabisProvider) Lookup(ctx context.Context, query string) *models.ProviderResponse {
	start := time.Now()
	resp := newResponse(p.Name())

	if !p.IsAvailable(query) {
		resp.Error = fmt.Sprintf("domain %q is not under the .tr zone", query)
		return finish(resp, start)
	}

	raw, err := p.query(ctx, query)
	if err != nil {
		return fail(resp, start, err)
	}

	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || p.isNotFound(trimmed) {
		return notFound(resp, start)
	}

	record, err := parser.Parse(raw, query)
	if err != nil {
		if len(trimmed) < trabisMinResponse {
			resp.Error = "unrecognized registry response"
			return finish(resp, start)
		}
		record = &models.WhoisRecord{DomainName: strings.ToLower(query), RawText: raw}
	}

	// Banner sections only appear on registered domains; when the registry
	// omitted an explicit status line, their presence is the status.
	if len(record.Status) == 0 && strings.Contains(raw, "**") {
		record.Status = []string{"active"}
	}

	resp.Success = true
	resp.Record = record
	return finish(resp, start)
}

// query writes the CRLF-terminated query and reads until the registry
// closes the connection or the deadline fires.
func (p *TrabisProvider) query(ctx context.Context, query string) (string, error) {
	conn, err := p.dialer.DialContext(ctx, "tcp", p.host)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", p.host, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(p.timeout)); err != nil {
		return "", fmt.Errorf("set deadline: %w", err)
	}

	if _, err := conn.Write([]byte(query + "\r\n")); err != nil {
		return "", fmt.Errorf("write query: %w", err)
	}

	raw, err := io.ReadAll(io.LimitReader(conn, maxResponseBytes))
	if err != nil {
		if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
			if len(raw) > 0 {
				return string(raw), nil
			}
			return "", ErrTimeout
		}
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(raw), nil
}

func (p *TrabisProvider) isNotFound(raw string) bool {
	lower := strings.ToLower(raw)
	for _, phrase := range trabisNotFound {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
