package domainutil

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain domain", "example.com", "example.com"},
		{"uppercase with scheme and www", "HTTPS://WWW.Example.com/path", "example.com"},
		{"http scheme", "http://example.com", "example.com"},
		{"www prefix", "www.example.com", "example.com"},
		{"path stripped", "example.com/some/path", "example.com"},
		{"port stripped", "example.com:8080", "example.com"},
		{"surrounding whitespace", "  example.com  ", "example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsValidDomain(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple", "example.com", true},
		{"subdomain", "sub.example.com", true},
		{"hyphenated", "my-site.example.co.uk", true},
		{"idn label", "xn--bcher-kva.example", true},
		{"turkish compound", "ornek.com.tr", true},
		{"empty", "", false},
		{"single label", "localhost", false},
		{"numeric tld", "example.123", false},
		{"one char tld", "example.c", false},
		{"leading hyphen", "-bad.example.com", false},
		{"trailing hyphen", "bad-.example.com", false},
		{"empty label", "bad..example.com", false},
		{"over length ceiling", strings.Repeat("a", 300) + ".com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidDomain(tt.input); got != tt.want {
				t.Errorf("IsValidDomain(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsIP(t *testing.T) {
	if !IsIP("93.184.216.34") {
		t.Error("expected IPv4 literal to be recognized")
	}
	if !IsIP("2606:2800:220:1:248:1893:25c8:1946") {
		t.Error("expected IPv6 literal to be recognized")
	}
	if IsIP("example.com") {
		t.Error("domain must not be recognized as IP")
	}
}

func TestExtractTLD(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"foo.com.tr", "com.tr"},
		{"foo.io", "io"},
		{"example.co.uk", "co.uk"},
		{"a.b.example.com.br", "com.br"},
		{"example.com", "com"},
		{"bare", "bare"},
	}

	for _, tt := range tests {
		if got := ExtractTLD(tt.input); got != tt.expected {
			t.Errorf("ExtractTLD(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestExtractSLD(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"example.com", "example"},
		{"foo.com.tr", "foo"},
		{"sub.example.co.uk", "example"},
		{"com", ""},
	}

	for _, tt := range tests {
		if got := ExtractSLD(tt.input); got != tt.expected {
			t.Errorf("ExtractSLD(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestWhoisServer(t *testing.T) {
	if got := WhoisServer("com"); got != "whois.verisign-grs.com" {
		t.Errorf("WhoisServer(com) = %q", got)
	}
	// Compound ccTLD falls back to the bare country code.
	if got := WhoisServer("com.tr"); got != "whois.trabis.gov.tr" {
		t.Errorf("WhoisServer(com.tr) = %q", got)
	}
	if got := WhoisServer("nosuchtld"); got != "" {
		t.Errorf("WhoisServer(nosuchtld) = %q, want empty", got)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"rfc3339", "1995-08-14T04:00:00Z", "1995-08-14T04:00:00Z"},
		{"date only", "2024-01-15", "2024-01-15T00:00:00Z"},
		{"registry style", "21-Aug-2001", "2001-08-21T00:00:00Z"},
		{"turkish registry style", "2001-Aug-21.", "2001-08-21T00:00:00Z"},
		{"unparseable kept verbatim", "before unix epoch, circa dawn", "before unix epoch, circa dawn"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDate(tt.input); got != tt.expected {
				t.Errorf("ParseDate(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
