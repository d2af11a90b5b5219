package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const rdapNetworkBody = `{
  "objectClassName": "ip network",
  "handle": "NET-192-0-2-0-1",
  "name": "TEST-NET-1",
  "startAddress": "192.0.2.0",
  "endAddress": "192.0.2.255",
  "ipVersion": "v4",
  "type": "DIRECT ALLOCATION",
  "country": "US",
  "status": ["active"],
  "cidr0_cidrs": [{"v4prefix": "192.0.2.0", "length": 24}],
  "events": [
    {"eventAction": "registration", "eventDate": "2009-06-19T00:00:00Z"},
    {"eventAction": "last changed", "eventDate": "2021-02-10T00:00:00Z"}
  ]
}`

func TestRDAPLookup(t *testing.T) {
	var gotPath, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/rdap+json")
		fmt.Fprint(w, rdapNetworkBody)
	}))
	defer srv.Close()

	p := NewRDAPProvider(srv.URL+"/ip", 0)
	resp := p.Lookup(context.Background(), "192.0.2.1")
	if !resp.Success {
		t.Fatalf("Lookup failed: %s", resp.Error)
	}
	if gotPath != "/ip/192.0.2.1" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotAccept != "application/rdap+json" {
		t.Errorf("Accept = %q", gotAccept)
	}
	record := resp.Record
	if record.Extra["handle"] != "NET-192-0-2-0-1" {
		t.Errorf("handle = %q", record.Extra["handle"])
	}
	if record.Extra["cidr"] != "192.0.2.0/24" {
		t.Errorf("cidr = %q", record.Extra["cidr"])
	}
	if record.CreationDate != "2009-06-19T00:00:00Z" {
		t.Errorf("CreationDate = %q", record.CreationDate)
	}
}

func TestRDAPLookupFollowsRedirects(t *testing.T) {
	authoritative := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rdapNetworkBody)
	}))
	defer authoritative.Close()

	redirector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, authoritative.URL+r.URL.Path, http.StatusFound)
	}))
	defer redirector.Close()

	p := NewRDAPProvider(redirector.URL+"/ip", 0)
	resp := p.Lookup(context.Background(), "192.0.2.1")
	if !resp.Success {
		t.Fatalf("Lookup through redirector failed: %s", resp.Error)
	}
	if resp.Record.Extra["name"] != "TEST-NET-1" {
		t.Errorf("name = %q", resp.Record.Extra["name"])
	}
}

func TestRDAPLookupRedirectLimit(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+r.URL.Path, http.StatusFound)
	}))
	defer srv.Close()

	p := NewRDAPProvider(srv.URL+"/ip", 0)
	resp := p.Lookup(context.Background(), "192.0.2.1")
	if resp.Success {
		t.Fatal("redirect loop must fail")
	}
	if !strings.Contains(resp.Error, "redirect") {
		t.Errorf("Error = %q, want redirect limit", resp.Error)
	}
}

func TestRDAPLookupStatusHandling(t *testing.T) {
	tests := []struct {
		status       int
		wantNotFound bool
		wantError    string
	}{
		{http.StatusNotFound, true, "no match for query"},
		{http.StatusTooManyRequests, false, "rate limited by registry"},
		{http.StatusInternalServerError, false, "rdap endpoint returned"},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		p := NewRDAPProvider(srv.URL+"/ip", 0)
		resp := p.Lookup(context.Background(), "192.0.2.1")
		srv.Close()

		if resp.Success {
			t.Errorf("status %d: unexpected success", tt.status)
		}
		if resp.NotFound != tt.wantNotFound {
			t.Errorf("status %d: NotFound = %v, want %v", tt.status, resp.NotFound, tt.wantNotFound)
		}
		if !strings.Contains(resp.Error, tt.wantError) {
			t.Errorf("status %d: Error = %q, want %q", tt.status, resp.Error, tt.wantError)
		}
	}
}

func TestRDAPRejectsDomains(t *testing.T) {
	p := NewRDAPProvider("http://127.0.0.1:1/ip", 0)
	if p.IsAvailable("example.com") {
		t.Error("IsAvailable must reject domain queries")
	}
	resp := p.Lookup(context.Background(), "example.com")
	if resp.Success || !strings.Contains(resp.Error, "not an IP address") {
		t.Errorf("resp = %+v, want IP rejection before any request", resp)
	}
}
