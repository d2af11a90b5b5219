package lookup

import (
	"strings"

	"github.com/commjoen/whoisintel/pkg/models"
)

// mergeRecords builds one record from the successful responses, in priority
// order: the first provider to supply a non-empty scalar wins, later ones
// never overwrite it. Nameservers and status are unioned across all
// providers. Returns nil when no response carries a record.
func mergeRecords(responses []models.ProviderResponse) *models.WhoisRecord {
	var merged *models.WhoisRecord
	for _, resp := range responses {
		if !resp.Success || resp.Record == nil {
			continue
		}
		if merged == nil {
			clone := *resp.Record
			merged = &clone
			continue
		}
		mergeInto(merged, resp.Record)
	}
	return merged
}

func mergeInto(dst, src *models.WhoisRecord) {
	fillString(&dst.DomainName, src.DomainName)
	fillString(&dst.Registrar, src.Registrar)
	fillString(&dst.RegistrarURL, src.RegistrarURL)
	fillString(&dst.RegistrarIANA, src.RegistrarIANA)
	fillString(&dst.CreationDate, src.CreationDate)
	fillString(&dst.UpdatedDate, src.UpdatedDate)
	fillString(&dst.ExpirationDate, src.ExpirationDate)
	fillString(&dst.DNSSEC, src.DNSSEC)

	dst.Registrant = fillContact(dst.Registrant, src.Registrant)
	dst.Admin = fillContact(dst.Admin, src.Admin)
	dst.Tech = fillContact(dst.Tech, src.Tech)
	dst.Abuse = fillContact(dst.Abuse, src.Abuse)

	dst.NameServers = unionLists(dst.NameServers, src.NameServers)
	dst.Status = unionLists(dst.Status, src.Status)

	for key, value := range src.Extra {
		if _, ok := dst.Extra[key]; !ok {
			dst.SetExtra(key, value)
		}
	}
}

func fillString(dst *string, src string) {
	if *dst == "" && src != "" {
		*dst = src
	}
}

func fillContact(dst, src *models.Contact) *models.Contact {
	if src.IsEmpty() {
		return dst
	}
	if dst.IsEmpty() {
		clone := *src
		return &clone
	}
	return dst
}

func unionLists(a, b []string) []string {
	seen := make(map[string]struct{}, len(a))
	for _, v := range a {
		seen[strings.ToLower(v)] = struct{}{}
	}
	for _, v := range b {
		if _, ok := seen[strings.ToLower(v)]; ok {
			continue
		}
		seen[strings.ToLower(v)] = struct{}{}
		a = append(a, v)
	}
	return a
}
