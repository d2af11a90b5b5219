// Package domainutil provides domain name normalization, validation and
// TLD-based WHOIS server selection.
package domainutil

import (
	"net"
	"regexp"
	"strings"
	"time"
)

const maxDomainLength = 253

var (
	labelPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?$`)
	finalLabel   = regexp.MustCompile(`^[a-z]{2,}$`)
	idnLabel     = regexp.MustCompile(`^xn--[a-z0-9-]{1,59}$`)
)

// secondLevelTLDs lists the compound country-code TLDs that must be treated
// as a single registry zone when extracting the TLD.
var secondLevelTLDs = map[string]struct{}{
	"com.tr": {}, "net.tr": {}, "org.tr": {}, "gen.tr": {}, "biz.tr": {},
	"info.tr": {}, "web.tr": {}, "gov.tr": {}, "edu.tr": {}, "k12.tr": {},
	"av.tr": {}, "dr.tr": {}, "bel.tr": {}, "pol.tr": {}, "tv.tr": {}, "name.tr": {},
	"co.uk": {}, "org.uk": {}, "me.uk": {}, "ltd.uk": {}, "plc.uk": {}, "ac.uk": {}, "gov.uk": {},
	"com.au": {}, "net.au": {}, "org.au": {}, "edu.au": {}, "gov.au": {},
	"co.nz": {}, "net.nz": {}, "org.nz": {}, "govt.nz": {},
	"co.jp": {}, "ne.jp": {}, "or.jp": {}, "ac.jp": {}, "go.jp": {},
	"com.br": {}, "net.br": {}, "org.br": {}, "gov.br": {},
	"com.cn": {}, "net.cn": {}, "org.cn": {}, "gov.cn": {},
	"co.in": {}, "net.in": {}, "org.in": {}, "gov.in": {},
	"com.mx": {}, "org.mx": {}, "net.mx": {},
	"co.za": {}, "org.za": {}, "net.za": {},
	"com.ar": {}, "com.co": {}, "com.pe": {}, "com.ve": {}, "com.uy": {},
	"com.sg": {}, "com.my": {}, "com.hk": {}, "com.tw": {}, "com.ph": {}, "com.vn": {},
	"co.kr": {}, "or.kr": {}, "co.th": {}, "in.th": {},
	"com.eg": {}, "com.sa": {}, "com.ae": {}, "com.qa": {}, "com.kw": {},
	"com.pl": {}, "net.pl": {}, "org.pl": {},
	"com.ru": {}, "org.ru": {}, "net.ru": {},
	"com.ua": {}, "co.il": {}, "org.il": {}, "com.gr": {}, "com.pt": {},
	"co.id": {}, "or.id": {}, "web.id": {},
	"com.ng": {}, "com.gh": {}, "co.ke": {}, "co.tz": {},
}

// whoisServers maps a TLD to its authoritative WHOIS server. Compound ccTLDs
// fall back to the bare country code entry when absent.
var whoisServers = map[string]string{
	"com":  "whois.verisign-grs.com",
	"net":  "whois.verisign-grs.com",
	"org":  "whois.publicinterestregistry.org",
	"info": "whois.nic.info",
	"biz":  "whois.nic.biz",
	"io":   "whois.nic.io",
	"co":   "whois.nic.co",
	"me":   "whois.nic.me",
	"tv":   "whois.nic.tv",
	"cc":   "ccwhois.verisign-grs.com",
	"us":   "whois.nic.us",
	"uk":   "whois.nic.uk",
	"de":   "whois.denic.de",
	"fr":   "whois.nic.fr",
	"nl":   "whois.domain-registry.nl",
	"eu":   "whois.eu",
	"it":   "whois.nic.it",
	"es":   "whois.nic.es",
	"ch":   "whois.nic.ch",
	"at":   "whois.nic.at",
	"be":   "whois.dns.be",
	"se":   "whois.iis.se",
	"no":   "whois.norid.no",
	"fi":   "whois.fi",
	"dk":   "whois.punktum.dk",
	"pl":   "whois.dns.pl",
	"ru":   "whois.tcinet.ru",
	"ua":   "whois.ua",
	"cz":   "whois.nic.cz",
	"tr":   "whois.trabis.gov.tr",
	"jp":   "whois.jprs.jp",
	"kr":   "whois.kr",
	"cn":   "whois.cnnic.cn",
	"in":   "whois.registry.in",
	"au":   "whois.auda.org.au",
	"nz":   "whois.irs.net.nz",
	"br":   "whois.registro.br",
	"mx":   "whois.mx",
	"ar":   "whois.nic.ar",
	"za":   "whois.registry.net.za",
	"ca":   "whois.cira.ca",
	"dev":  "whois.nic.google",
	"app":  "whois.nic.google",
	"xyz":  "whois.nic.xyz",
	"online": "whois.nic.online",
	"site": "whois.nic.site",
	"club": "whois.nic.club",
	"shop": "whois.nic.shop",
	"ai":   "whois.nic.ai",
	"sh":   "whois.nic.sh",
}

// Normalize lowercases and trims a raw query, strips a leading URL scheme and
// "www." prefix, and truncates at the first path or port separator.
func Normalize(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "www.")
	if idx := strings.IndexAny(s, "/:"); idx != -1 {
		s = s[:idx]
	}
	return s
}

// IsValidDomain reports whether input looks like a resolvable domain name.
// It accepts standard labels and IDN (xn--) labels, enforces the 253 byte
// ceiling and requires an alphabetic final label of at least two characters.
func IsValidDomain(input string) bool {
	if input == "" || len(input) > maxDomainLength {
		return false
	}
	labels := strings.Split(input, ".")
	if len(labels) < 2 {
		return false
	}
	for i, label := range labels {
		if label == "" {
			return false
		}
		if idnLabel.MatchString(label) {
			continue
		}
		if !labelPattern.MatchString(label) {
			return false
		}
		if i == len(labels)-1 && !finalLabel.MatchString(label) {
			return false
		}
	}
	return true
}

// IsIP reports whether input is a valid IPv4 or IPv6 literal.
func IsIP(input string) bool {
	return net.ParseIP(input) != nil
}

// ExtractTLD returns the registry zone of a domain: the last two labels when
// they form a known compound ccTLD, otherwise the last label alone.
func ExtractTLD(domain string) string {
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		if len(labels) == 1 {
			return labels[0]
		}
		return ""
	}
	lastTwo := labels[len(labels)-2] + "." + labels[len(labels)-1]
	if _, ok := secondLevelTLDs[lastTwo]; ok {
		return lastTwo
	}
	return labels[len(labels)-1]
}

// ExtractSLD returns the label immediately left of the TLD.
func ExtractSLD(domain string) string {
	tld := ExtractTLD(domain)
	if tld == "" || len(domain) <= len(tld)+1 {
		return ""
	}
	rest := strings.TrimSuffix(domain, "."+tld)
	labels := strings.Split(rest, ".")
	return labels[len(labels)-1]
}

// WhoisServer returns the authoritative WHOIS server for a TLD, or "" when
// none is known. A compound ccTLD falls back to its bare country code.
func WhoisServer(tld string) string {
	if server, ok := whoisServers[tld]; ok {
		return server
	}
	if idx := strings.LastIndex(tld, "."); idx != -1 {
		if server, ok := whoisServers[tld[idx+1:]]; ok {
			return server
		}
	}
	return ""
}

// dateFormats covers the layouts observed across registry responses.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02",
	"02-Jan-2006",
	"2006-Jan-02",
	"2006-Jan-02.",
	"January 2, 2006",
	"2 Jan 2006",
	"02.01.2006",
	"2006.01.02",
	"02/01/2006",
	"2006/01/02",
	"20060102",
}

// ParseDate normalizes a registry date token to ISO-8601 UTC. Unparseable
// input is returned unchanged so the original token is never lost.
func ParseDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return raw
}
