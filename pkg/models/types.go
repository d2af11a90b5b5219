// Package models contains shared data structures used across the application
package models

import "time"

// Contact holds one registry contact block (registrant, admin, tech or abuse).
type Contact struct {
	Name         string `json:"name,omitempty"`
	Organization string `json:"organization,omitempty"`
	Street       string `json:"street,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// IsEmpty reports whether no field of the contact is set.
func (c *Contact) IsEmpty() bool {
	if c == nil {
		return true
	}
	return c.Name == "" && c.Organization == "" && c.Street == "" && c.City == "" &&
		c.State == "" && c.PostalCode == "" && c.Country == "" && c.Email == "" && c.Phone == ""
}

// WhoisRecord is the canonical structured result shared by every wire format.
// Lifecycle dates are ISO-8601 strings when parseable, otherwise the original
// registry token is kept as-is. Extra carries network-specific attributes
// (handle, CIDR blocks, parent handle and so on) that have no fixed field.
type WhoisRecord struct {
	DomainName     string            `json:"domain_name,omitempty"`
	Registrar      string            `json:"registrar,omitempty"`
	RegistrarURL   string            `json:"registrar_url,omitempty"`
	RegistrarIANA  string            `json:"registrar_iana_id,omitempty"`
	CreationDate   string            `json:"creation_date,omitempty"`
	UpdatedDate    string            `json:"updated_date,omitempty"`
	ExpirationDate string            `json:"expiration_date,omitempty"`
	Registrant     *Contact          `json:"registrant,omitempty"`
	Admin          *Contact          `json:"admin,omitempty"`
	Tech           *Contact          `json:"tech,omitempty"`
	Abuse          *Contact          `json:"abuse,omitempty"`
	NameServers    []string          `json:"name_servers,omitempty"`
	Status         []string          `json:"status,omitempty"`
	DNSSEC         string            `json:"dnssec,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
	RawText        string            `json:"raw_text,omitempty"`
}

// SetExtra records an open-ended attribute, allocating the map on first use.
func (r *WhoisRecord) SetExtra(key, value string) {
	if value == "" {
		return
	}
	if r.Extra == nil {
		r.Extra = make(map[string]string)
	}
	r.Extra[key] = value
}

// ProviderResponse wraps one provider's outcome for a single query attempt.
// Immutable once created; the orchestrator collects them into LookupResult.
type ProviderResponse struct {
	Provider    string       `json:"provider"`
	Success     bool         `json:"success"`
	NotFound    bool         `json:"not_found,omitempty"`
	Record      *WhoisRecord `json:"record,omitempty"`
	Error       string       `json:"error,omitempty"`
	ElapsedMs   int64        `json:"elapsed_ms"`
	RetrievedAt time.Time    `json:"retrieved_at"`
}

// LookupResult is the outward-facing envelope returned by the orchestrator.
type LookupResult struct {
	Query     string             `json:"query"`
	Timestamp time.Time          `json:"timestamp"`
	Cached    bool               `json:"cached"`
	Success   bool               `json:"success"`
	NotFound  bool               `json:"not_found,omitempty"`
	Record    *WhoisRecord       `json:"record,omitempty"`
	Providers []ProviderResponse `json:"providers"`
	Errors    []string           `json:"errors,omitempty"`
	ElapsedMs int64              `json:"elapsed_ms"`
	DNSCheck  *DNSCheck          `json:"dns_check,omitempty"`
}

// DNSCheck cross-references registry-reported nameservers against live DNS.
type DNSCheck struct {
	LiveNameServers []string `json:"live_name_servers,omitempty"`
	Match           bool     `json:"match"`
	Error           string   `json:"error,omitempty"`
}

// CacheStats reports cache effectiveness counters.
type CacheStats struct {
	Keys   int   `json:"keys"`
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
}
