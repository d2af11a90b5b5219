package rdap

import (
	"strings"
	"testing"
)

const sampleNetwork = `{
  "objectClassName": "ip network",
  "handle": "NET-93-184-216-0-1",
  "startAddress": "93.184.216.0",
  "endAddress": "93.184.216.255",
  "ipVersion": "v4",
  "name": "EDGECAST-NETBLK-03",
  "type": "DIRECT ALLOCATION",
  "country": "US",
  "parentHandle": "NET-93-0-0-0-0",
  "status": ["active"],
  "cidr0_cidrs": [{"v4prefix": "93.184.216.0", "length": 24}],
  "events": [
    {"eventAction": "registration", "eventDate": "2008-06-02T00:00:00Z"},
    {"eventAction": "last changed", "eventDate": "2023-01-10T12:00:00Z"}
  ],
  "entities": [
    {
      "objectClassName": "entity",
      "handle": "EDGECAST",
      "roles": ["registrant"],
      "vcardArray": ["vcard", [
        ["version", {}, "text", "4.0"],
        ["fn", {}, "text", "Edgecast Inc."],
        ["org", {}, "text", "Edgecast Inc."],
        ["adr", {"label": "13031 W Jefferson Blvd\nLos Angeles\nCA\n90094\nUS"}, "text", ["", "", "", "", "", "", ""]]
      ]],
      "entities": [
        {
          "objectClassName": "entity",
          "handle": "ABUSE-EC",
          "roles": ["abuse"],
          "vcardArray": ["vcard", [
            ["version", {}, "text", "4.0"],
            ["fn", {}, "text", "Abuse Desk"],
            ["email", {}, "text", "abuse@edgecast.example"],
            ["tel", {"type": "voice"}, "uri", "tel:+1-555-0100"]
          ]]
        },
        {
          "objectClassName": "entity",
          "handle": "TECH-EC",
          "roles": ["technical"],
          "vcardArray": ["vcard", [
            ["version", {}, "text", "4.0"],
            ["fn", {}, "text", "Tech Desk"],
            ["email", {}, "text", "noc@edgecast.example"]
          ]]
        }
      ]
    }
  ]
}`

func TestParseNetwork(t *testing.T) {
	record, err := Parse([]byte(sampleNetwork))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if record.Extra["handle"] != "NET-93-184-216-0-1" {
		t.Errorf("handle = %q", record.Extra["handle"])
	}
	if record.Extra["cidr"] != "93.184.216.0/24" {
		t.Errorf("cidr = %q, want 93.184.216.0/24", record.Extra["cidr"])
	}
	if record.Extra["ip_version"] != "v4" {
		t.Errorf("ip_version = %q", record.Extra["ip_version"])
	}
	if record.Extra["parent_handle"] != "NET-93-0-0-0-0" {
		t.Errorf("parent_handle = %q", record.Extra["parent_handle"])
	}
	if record.CreationDate != "2008-06-02T00:00:00Z" {
		t.Errorf("CreationDate = %q, want registration event date", record.CreationDate)
	}
	if record.UpdatedDate != "2023-01-10T12:00:00Z" {
		t.Errorf("UpdatedDate = %q, want last changed event date", record.UpdatedDate)
	}
	if len(record.Status) != 1 || record.Status[0] != "active" {
		t.Errorf("Status = %v", record.Status)
	}
}

func TestParseEntityGraph(t *testing.T) {
	record, err := Parse([]byte(sampleNetwork))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if record.Registrant == nil {
		t.Fatal("registrant entity must populate the organization contact")
	}
	if record.Registrant.Organization != "Edgecast Inc." {
		t.Errorf("Registrant.Organization = %q", record.Registrant.Organization)
	}
	if !strings.Contains(record.Registrant.Street, "13031 W Jefferson Blvd") {
		t.Errorf("Registrant.Street = %q, want adr label text", record.Registrant.Street)
	}

	if record.Abuse == nil {
		t.Fatal("nested abuse entity must populate the abuse contact")
	}
	if record.Abuse.Email != "abuse@edgecast.example" {
		t.Errorf("Abuse.Email = %q", record.Abuse.Email)
	}
	if record.Tech == nil || record.Tech.Email != "noc@edgecast.example" {
		t.Errorf("Tech = %+v, want nested technical entity", record.Tech)
	}
}

func TestFormatCIDRs(t *testing.T) {
	tests := []struct {
		name  string
		cidrs []CIDR
		want  string
	}{
		{"v4", []CIDR{{V4Prefix: "93.184.216.0", Length: 24}}, "93.184.216.0/24"},
		{"v6", []CIDR{{V6Prefix: "2606:2800::", Length: 32}}, "2606:2800::/32"},
		{"multiple", []CIDR{{V4Prefix: "10.0.0.0", Length: 8}, {V4Prefix: "192.168.0.0", Length: 16}}, "10.0.0.0/8, 192.168.0.0/16"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCIDRs(tt.cidrs); got != tt.want {
				t.Errorf("FormatCIDRs = %q, want %q", got, tt.want)
			}
		})
	}
}

// The text rendering must stay consistent with the JSON parser: both views
// are derived from the same source fields.
func TestFormatTextConsistency(t *testing.T) {
	text, err := FormatText([]byte(sampleNetwork))
	if err != nil {
		t.Fatalf("FormatText failed: %v", err)
	}

	record, err := Parse([]byte(sampleNetwork))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	for _, want := range []string{
		"NetName:",
		record.Extra["name"],
		"CIDR:",
		record.Extra["cidr"],
		"RegDate:",
		record.CreationDate,
		"NetRange:",
		"OrgAbuseEmail:",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered text missing %q:\n%s", want, text)
		}
	}
}

func TestParseInvalidJSON(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := FormatText([]byte("{")); err == nil {
		t.Error("expected error for truncated JSON")
	}
}
