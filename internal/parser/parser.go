// Package parser converts raw line-oriented WHOIS registry text into a
// structured record. Registries disagree on field names, languages and
// layout; the parser runs whois-parser first for mainstream dialects and a
// synonym-table pass afterwards to fill whatever that left empty, so a
// Turkish ccTLD response and a Verisign response end up in the same shape.
package parser

import (
	"errors"
	"regexp"
	"strings"

	whoisparser "github.com/likexian/whois-parser"

	"github.com/commjoen/whoisintel/internal/domainutil"
	"github.com/commjoen/whoisintel/pkg/models"
)

// ErrNoData means the response held no recognized fields and was too short
// to be worth returning as raw text.
var ErrNoData = errors.New("no recognized fields in response")

// minRawLength is the threshold below which an unrecognized response is an
// error rather than a raw-only partial success.
const minRawLength = 100

var notFoundPhrases = []string{
	"no match",
	"not found",
	"no entries found",
	"no data found",
	"no object found",
	"nothing found",
	"status: free",
	"status: available",
	"domain not registered",
	"bulunamadi",
	"bulunamadı",
}

// IsNotFound reports whether a registry response is an authoritative
// negative result rather than a parse failure.
func IsNotFound(raw string) bool {
	lower := strings.ToLower(raw)
	for _, phrase := range notFoundPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// scalar field identifiers used by the synonym table.
const (
	fDomainName = "domain_name"
	fRegistrar  = "registrar"
	fRegURL     = "registrar_url"
	fRegIANA    = "registrar_iana"
	fCreated    = "created"
	fUpdated    = "updated"
	fExpires    = "expires"
	fNameServer = "name_server"
	fStatus     = "status"
	fDNSSEC     = "dnssec"
)

// fieldSynonyms maps lowercase registry keys to canonical fields. The table
// is the union of the English and Turkish key sets seen in the wild.
var fieldSynonyms = map[string]string{
	"domain name": fDomainName, "domain": fDomainName, "domain adı": fDomainName,
	"alan adı": fDomainName, "alan adi": fDomainName,

	"registrar": fRegistrar, "registrar name": fRegistrar, "sponsoring registrar": fRegistrar,
	"registrar organization": fRegistrar, "kayıt operatörü": fRegistrar, "kayit operatoru": fRegistrar,
	"organization name": fRegistrar,

	"registrar url": fRegURL, "referral url": fRegURL,
	"registrar iana id": fRegIANA,

	"creation date": fCreated, "created": fCreated, "created on": fCreated,
	"created date": fCreated, "registered": fCreated, "registered on": fCreated,
	"registration date": fCreated, "registration time": fCreated, "record created": fCreated,
	"kayıt tarihi": fCreated, "kayit tarihi": fCreated,

	"updated date": fUpdated, "last updated": fUpdated, "last modified": fUpdated,
	"modified": fUpdated, "changed": fUpdated, "last update": fUpdated,
	"güncelleme tarihi": fUpdated, "guncelleme tarihi": fUpdated,

	"expiry date": fExpires, "expiration date": fExpires, "registry expiry date": fExpires,
	"expires": fExpires, "expires on": fExpires, "expire date": fExpires,
	"expiration time": fExpires, "paid-till": fExpires, "renewal date": fExpires,
	"bitiş tarihi": fExpires, "bitis tarihi": fExpires,

	"name server": fNameServer, "nameserver": fNameServer, "nameservers": fNameServer,
	"name servers": fNameServer, "nserver": fNameServer, "dns": fNameServer,
	"domain servers": fNameServer, "domain nameservers": fNameServer,
	"alan adı sunucusu": fNameServer, "dns servers": fNameServer,

	"domain status": fStatus, "status": fStatus, "state": fStatus,
	"durum": fStatus, "durumu": fStatus,

	"dnssec": fDNSSEC,
}

// contactSynonyms maps lowercase sub-keys of a contact block to Contact
// field names.
var contactSynonyms = map[string]string{
	"name": "name", "contact": "name", "adı": "name", "adi": "name",
	"organization": "org", "organisation": "org", "org": "org", "organization name": "org",
	"kuruluş": "org", "kurulus": "org", "company": "org",
	"street": "street", "address": "street", "adres": "street", "adresi": "street",
	"city": "city", "şehir": "city", "sehir": "city", "town": "city",
	"state": "state", "province": "state", "state/province": "state", "eyalet": "state", "il": "state",
	"postal code": "postal", "zip": "postal", "zip code": "postal",
	"posta kodu": "postal", "postcode": "postal",
	"country": "country", "ülke": "country", "ulke": "country",
	"email": "email", "e-mail": "email", "e-posta": "email", "mail": "email",
	"phone": "phone", "telephone": "phone", "telefon": "phone", "tel": "phone",
	"phone number": "phone",
}

// contact block prefixes routing a key to the matching sub-record.
var contactPrefixes = []struct {
	prefix string
	role   string
}{
	{"registrant", "registrant"},
	{"holder", "registrant"},
	{"owner", "registrant"},
	{"kayıt sahibi", "registrant"},
	{"kayit sahibi", "registrant"},
	{"administrative", "admin"},
	{"admin", "admin"},
	{"idari sorumlu", "admin"},
	{"idari", "admin"},
	{"technical", "tech"},
	{"tech", "tech"},
	{"teknik sorumlu", "tech"},
	{"teknik", "tech"},
}

var (
	hostnamePattern    = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*\.[a-z]{2,}\.?$`)
	nameserverSweep    = regexp.MustCompile(`(?im)^\s*(?:nserver|nameserver|ns)\s*[:=]?\s+([a-z0-9][a-z0-9.-]*\.[a-z]{2,})`)
	serverSectionStart = regexp.MustCompile(`(?i)^\*+\s*(?:domain servers|name servers|dns servers|alan ad[ıi] sunucular[ıi])`)
)

// Parse converts a raw registry response into a WhoisRecord. The queried
// domain is used for dialect hints and to fill the domain name when the
// response never states it. A response with no recognized fields is still
// returned as a raw-only record when it is substantial enough.
func Parse(raw, domain string) (*models.WhoisRecord, error) {
	record := &models.WhoisRecord{
		RawText: raw,
	}

	// First pass: mainstream dialects via whois-parser.
	if parsed, err := whoisparser.Parse(raw); err == nil {
		applyLibraryParse(record, parsed)
	}

	// Second pass: synonym table fills anything still empty and catches
	// dialects the library does not know (Turkish registry output among
	// them).
	applyLinePass(record, raw)

	if len(record.NameServers) == 0 {
		record.NameServers = fallbackNameServers(raw)
	}

	record.CreationDate = domainutil.ParseDate(record.CreationDate)
	record.UpdatedDate = domainutil.ParseDate(record.UpdatedDate)
	record.ExpirationDate = domainutil.ParseDate(record.ExpirationDate)

	if record.DomainName == "" && domain != "" {
		record.DomainName = strings.ToLower(domain)
	}

	if !hasRecognizedFields(record) {
		if len(strings.TrimSpace(raw)) < minRawLength {
			return nil, ErrNoData
		}
		// Unfamiliar dialect: surface the raw text rather than discard it.
		return record, nil
	}
	return record, nil
}

func applyLibraryParse(record *models.WhoisRecord, parsed whoisparser.WhoisInfo) {
	if parsed.Domain != nil {
		record.DomainName = strings.ToLower(parsed.Domain.Domain)
		for _, ns := range parsed.Domain.NameServers {
			if host := cleanNameServer(ns); host != "" {
				record.NameServers = mergeList(record.NameServers, []string{host})
			}
		}
		record.Status = mergeList(record.Status, parsed.Domain.Status)
		record.CreationDate = parsed.Domain.CreatedDate
		record.UpdatedDate = parsed.Domain.UpdatedDate
		record.ExpirationDate = parsed.Domain.ExpirationDate
		if parsed.Domain.DNSSec {
			record.DNSSEC = "signedDelegation"
		}
	}
	if parsed.Registrar != nil {
		record.Registrar = parsed.Registrar.Name
		record.RegistrarURL = parsed.Registrar.ReferralURL
		record.RegistrarIANA = parsed.Registrar.ID
	}
	record.Registrant = libraryContact(parsed.Registrant)
	record.Admin = libraryContact(parsed.Administrative)
	record.Tech = libraryContact(parsed.Technical)
}

func libraryContact(c *whoisparser.Contact) *models.Contact {
	if c == nil {
		return nil
	}
	contact := &models.Contact{
		Name:         c.Name,
		Organization: c.Organization,
		Street:       c.Street,
		City:         c.City,
		State:        c.Province,
		PostalCode:   c.PostalCode,
		Country:      c.Country,
		Email:        c.Email,
		Phone:        c.Phone,
	}
	if contact.IsEmpty() {
		return nil
	}
	return contact
}

// applyLinePass walks the response line by line matching keys against the
// synonym table. First occurrence wins for scalars; nameservers and status
// accumulate. Inside a "** Administrative Contact **" style banner section
// unprefixed keys route to that section's contact.
func applyLinePass(record *models.WhoisRecord, raw string) {
	section := ""
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if role, ok := bannerSection(trimmed); ok {
			section = role
			continue
		}
		if strings.HasPrefix(trimmed, "%") || strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, ">>>") {
			continue
		}

		key, value, ok := splitLine(trimmed)
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}

		// Inside a contact banner section, contact keys shadow the flat
		// table ("Organization Name" there belongs to the contact, not
		// the registrar).
		if section != "" {
			if sub, ok := contactSynonyms[key]; ok {
				applyContact(record, section, sub, value)
				continue
			}
		}
		if field, ok := fieldSynonyms[key]; ok {
			applyField(record, field, value)
			continue
		}
		if role, sub, ok := contactKey(key); ok {
			applyContact(record, role, sub, value)
		}
	}
}

// bannerSection recognizes "** Administrative Contact **" style banners and
// returns the contact role they open, if any.
func bannerSection(line string) (string, bool) {
	if !strings.HasPrefix(line, "**") {
		return "", false
	}
	// A banner carrying a value ("** Domain Name: example.com.tr") is a
	// regular key:value line, not a section marker.
	if idx := strings.Index(line, ":"); idx != -1 && strings.TrimSpace(line[idx+1:]) != "" {
		return "", false
	}
	inner := strings.ToLower(strings.Trim(line, "* \t:"))
	for _, cp := range contactPrefixes {
		if strings.HasPrefix(inner, cp.prefix) {
			return cp.role, true
		}
	}
	// Any other banner closes the current section.
	return "", true
}

// splitLine splits a response line into key and value on the first colon,
// falling back to the first period within the first 30 characters for
// dialects that use dotted alignment instead of colons.
func splitLine(line string) (string, string, bool) {
	if idx := strings.Index(line, ":"); idx > 0 {
		return strings.Trim(line[:idx], "*. \t"), line[idx+1:], true
	}
	limit := len(line)
	if limit > 30 {
		limit = 30
	}
	if idx := strings.Index(line[:limit], "."); idx > 0 {
		return line[:idx], strings.TrimLeft(line[idx:], ". \t"), true
	}
	return "", "", false
}

// contactKey resolves prefixed keys like "admin email" or "registrant city".
func contactKey(key string) (role, sub string, ok bool) {
	for _, cp := range contactPrefixes {
		if !strings.HasPrefix(key, cp.prefix) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(key, cp.prefix))
		rest = strings.TrimPrefix(rest, "contact")
		rest = strings.TrimSpace(rest)
		if rest == "" {
			rest = "name"
		}
		if sub, ok := contactSynonyms[rest]; ok {
			return cp.role, sub, true
		}
		return "", "", false
	}
	return "", "", false
}

func applyField(record *models.WhoisRecord, field, value string) {
	switch field {
	case fDomainName:
		setIfEmpty(&record.DomainName, strings.ToLower(value))
	case fRegistrar:
		setIfEmpty(&record.Registrar, value)
	case fRegURL:
		setIfEmpty(&record.RegistrarURL, value)
	case fRegIANA:
		setIfEmpty(&record.RegistrarIANA, value)
	case fCreated:
		setIfEmpty(&record.CreationDate, value)
	case fUpdated:
		setIfEmpty(&record.UpdatedDate, value)
	case fExpires:
		setIfEmpty(&record.ExpirationDate, value)
	case fDNSSEC:
		setIfEmpty(&record.DNSSEC, value)
	case fNameServer:
		if host := cleanNameServer(value); host != "" {
			record.NameServers = mergeList(record.NameServers, []string{host})
		}
	case fStatus:
		record.Status = mergeList(record.Status, []string{strings.Fields(value)[0]})
	}
}

func applyContact(record *models.WhoisRecord, role, sub, value string) {
	var contact **models.Contact
	switch role {
	case "registrant":
		contact = &record.Registrant
	case "admin":
		contact = &record.Admin
	case "tech":
		contact = &record.Tech
	default:
		return
	}
	if *contact == nil {
		*contact = &models.Contact{}
	}
	c := *contact
	switch sub {
	case "name":
		setIfEmpty(&c.Name, value)
	case "org":
		setIfEmpty(&c.Organization, value)
	case "street":
		setIfEmpty(&c.Street, value)
	case "city":
		setIfEmpty(&c.City, value)
	case "state":
		setIfEmpty(&c.State, value)
	case "postal":
		setIfEmpty(&c.PostalCode, value)
	case "country":
		setIfEmpty(&c.Country, value)
	case "email":
		setIfEmpty(&c.Email, value)
	case "phone":
		setIfEmpty(&c.Phone, value)
	}
}

func setIfEmpty(dst *string, value string) {
	if *dst == "" {
		*dst = value
	}
}

// cleanNameServer keeps only the hostname from a nameserver value, dropping
// trailing IP or comment annotations.
func cleanNameServer(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	host := strings.ToLower(strings.TrimSuffix(fields[0], "."))
	if !hostnamePattern.MatchString(host) {
		return ""
	}
	return host
}

// fallbackNameServers recovers nameservers when no key:value line carried
// them: first from a "** Domain Servers:" style section, then by a catch-all
// sweep over the whole response.
func fallbackNameServers(raw string) []string {
	var servers []string
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		if !serverSectionStart.MatchString(strings.TrimSpace(line)) {
			continue
		}
		for _, next := range lines[i+1:] {
			candidate := strings.ToLower(strings.TrimSpace(strings.TrimRight(next, "\r")))
			if candidate == "" || strings.HasPrefix(candidate, "**") {
				break
			}
			if host := cleanNameServer(candidate); host != "" {
				servers = mergeList(servers, []string{host})
			}
		}
		break
	}
	if len(servers) > 0 {
		return servers
	}
	for _, match := range nameserverSweep.FindAllStringSubmatch(raw, -1) {
		if host := cleanNameServer(match[1]); host != "" {
			servers = mergeList(servers, []string{host})
		}
	}
	return servers
}

// mergeList appends additions not already present, deduplicating
// case-insensitively while preserving order and original casing.
func mergeList(existing, additions []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, v := range existing {
		seen[strings.ToLower(v)] = struct{}{}
	}
	for _, v := range additions {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[strings.ToLower(v)]; ok {
			continue
		}
		seen[strings.ToLower(v)] = struct{}{}
		existing = append(existing, v)
	}
	return existing
}

func hasRecognizedFields(record *models.WhoisRecord) bool {
	return record.Registrar != "" || record.CreationDate != "" ||
		record.ExpirationDate != "" || record.UpdatedDate != "" ||
		len(record.NameServers) > 0 || len(record.Status) > 0 ||
		!record.Registrant.IsEmpty() || !record.Admin.IsEmpty() || !record.Tech.IsEmpty()
}
