package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const apiNinjasBody = `{
  "domain_name": "EXAMPLE.COM",
  "registrar": "RESERVED-Internet Assigned Numbers Authority",
  "whois_server": "whois.iana.org",
  "creation_date": 808372800,
  "expiration_date": 1849924800,
  "updated_date": 1723708800,
  "name_servers": ["A.IANA-SERVERS.NET", "B.IANA-SERVERS.NET"],
  "status": ["clientDeleteProhibited"],
  "org": "Internet Assigned Numbers Authority",
  "country": "US"
}`

func TestAPINinjasLookup(t *testing.T) {
	var gotKey, gotDomain string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		gotDomain = r.URL.Query().Get("domain")
		fmt.Fprint(w, apiNinjasBody)
	}))
	defer srv.Close()

	p := NewAPINinjasProvider(srv.URL, "secret", 0)
	resp := p.Lookup(context.Background(), "example.com")
	if !resp.Success {
		t.Fatalf("Lookup failed: %s", resp.Error)
	}
	if gotKey != "secret" {
		t.Errorf("X-Api-Key = %q", gotKey)
	}
	if gotDomain != "example.com" {
		t.Errorf("domain param = %q", gotDomain)
	}

	record := resp.Record
	if record.DomainName != "example.com" {
		t.Errorf("DomainName = %q, want lowercased", record.DomainName)
	}
	if record.CreationDate != "1995-08-14T04:00:00Z" {
		t.Errorf("CreationDate = %q, want ISO from unix timestamp", record.CreationDate)
	}
	if len(record.NameServers) != 2 || record.NameServers[0] != "a.iana-servers.net" {
		t.Errorf("NameServers = %v", record.NameServers)
	}
	if record.Registrant == nil || record.Registrant.Organization != "Internet Assigned Numbers Authority" {
		t.Errorf("Registrant = %+v", record.Registrant)
	}
	if record.Extra["whois_server"] != "whois.iana.org" {
		t.Errorf("whois_server = %q", record.Extra["whois_server"])
	}
}

func TestAPINinjasMissingKey(t *testing.T) {
	p := NewAPINinjasProvider("http://127.0.0.1:1", "", 0)
	if p.IsAvailable("example.com") {
		t.Error("provider without a key must not be available")
	}
	resp := p.Lookup(context.Background(), "example.com")
	if resp.Error != "API key not configured" {
		t.Errorf("Error = %q", resp.Error)
	}
	if !isConfiguration(resp.Error) {
		t.Error("missing key must classify as a configuration error")
	}
}

func TestAPINinjasEmptyPayloadIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	p := NewAPINinjasProvider(srv.URL, "secret", 0)
	resp := p.Lookup(context.Background(), "unregistered-example.net")
	if !resp.NotFound {
		t.Errorf("resp = %+v, want not-found for empty payload", resp)
	}
}

func TestAPINinjasAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewAPINinjasProvider(srv.URL, "bad", 0)
	resp := p.Lookup(context.Background(), "example.com")
	if resp.Success || resp.Error != "API key rejected" {
		t.Errorf("resp = %+v, want auth rejection", resp)
	}
	if !isConfiguration(resp.Error) {
		t.Error("rejected key must classify as a configuration error")
	}
}
