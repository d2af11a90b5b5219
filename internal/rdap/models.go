// Package rdap parses RDAP IP-network JSON responses into the shared record
// shape and renders them as WHOIS-style text for raw-data display.
package rdap

import "encoding/json"

// Link represents an RDAP link object.
type Link struct {
	Value string `json:"value,omitempty"`
	Rel   string `json:"rel,omitempty"`
	Href  string `json:"href,omitempty"`
	Type  string `json:"type,omitempty"`
}

// Event represents an RDAP event object.
type Event struct {
	EventAction string `json:"eventAction"`
	EventDate   string `json:"eventDate"`
	EventActor  string `json:"eventActor,omitempty"`
}

// Remark represents an RDAP remark object.
type Remark struct {
	Title       string   `json:"title,omitempty"`
	Description []string `json:"description,omitempty"`
}

// Entity represents an RDAP entity with its nested entity graph. The
// vCard array is kept as raw JSON and decoded lazily; its layout
// (["vcard", [[name, params, type, value], ...]]) does not map onto a
// fixed struct.
type Entity struct {
	ObjectClassName string          `json:"objectClassName,omitempty"`
	Handle          string          `json:"handle,omitempty"`
	Roles           []string        `json:"roles,omitempty"`
	VCardArray      json.RawMessage `json:"vcardArray,omitempty"`
	Entities        []Entity        `json:"entities,omitempty"`
	Events          []Event         `json:"events,omitempty"`
	Links           []Link          `json:"links,omitempty"`
	Remarks         []Remark        `json:"remarks,omitempty"`
}

// CIDR represents one entry of the cidr0_cidrs extension.
type CIDR struct {
	V4Prefix string `json:"v4prefix,omitempty"`
	V6Prefix string `json:"v6prefix,omitempty"`
	Length   int    `json:"length"`
}

// IPNetwork represents an RDAP ip network object (RFC 9083 section 5.4).
type IPNetwork struct {
	ObjectClassName string   `json:"objectClassName,omitempty"`
	Handle          string   `json:"handle,omitempty"`
	StartAddress    string   `json:"startAddress,omitempty"`
	EndAddress      string   `json:"endAddress,omitempty"`
	IPVersion       string   `json:"ipVersion,omitempty"`
	Name            string   `json:"name,omitempty"`
	Type            string   `json:"type,omitempty"`
	Country         string   `json:"country,omitempty"`
	ParentHandle    string   `json:"parentHandle,omitempty"`
	Status          []string `json:"status,omitempty"`
	Entities        []Entity `json:"entities,omitempty"`
	Events          []Event  `json:"events,omitempty"`
	Links           []Link   `json:"links,omitempty"`
	Remarks         []Remark `json:"remarks,omitempty"`
	CIDRs           []CIDR   `json:"cidr0_cidrs,omitempty"`
	Port43          string   `json:"port43,omitempty"`
}
