package rdap

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/commjoen/whoisintel/internal/domainutil"
	"github.com/commjoen/whoisintel/pkg/models"
)

// Parse decodes an RDAP ip network JSON body into a WhoisRecord. Network
// block attributes land in the record's open extension map; entities with a
// registrant role populate the organization contact and entities one level
// deeper with abuse/technical/administrative roles populate the matching
// sub-records.
func Parse(body []byte) (*models.WhoisRecord, error) {
	var network IPNetwork
	if err := json.Unmarshal(body, &network); err != nil {
		return nil, fmt.Errorf("decode rdap response: %w", err)
	}

	record := &models.WhoisRecord{
		DomainName: network.Name,
		RawText:    string(body),
	}
	record.SetExtra("handle", network.Handle)
	record.SetExtra("name", network.Name)
	record.SetExtra("start_address", network.StartAddress)
	record.SetExtra("end_address", network.EndAddress)
	record.SetExtra("ip_version", network.IPVersion)
	record.SetExtra("type", network.Type)
	record.SetExtra("country", network.Country)
	record.SetExtra("parent_handle", network.ParentHandle)
	if cidr := FormatCIDRs(network.CIDRs); cidr != "" {
		record.SetExtra("cidr", cidr)
	}

	for _, status := range network.Status {
		record.Status = appendUnique(record.Status, status)
	}

	applyEvents(record, network.Events)
	applyEntities(record, network.Entities)
	return record, nil
}

// FormatCIDRs renders the cidr0_cidrs extension as a comma-separated list
// of prefix/length strings.
func FormatCIDRs(cidrs []CIDR) string {
	parts := make([]string, 0, len(cidrs))
	for _, c := range cidrs {
		prefix := c.V4Prefix
		if prefix == "" {
			prefix = c.V6Prefix
		}
		if prefix == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s/%d", prefix, c.Length))
	}
	return strings.Join(parts, ", ")
}

func applyEvents(record *models.WhoisRecord, events []Event) {
	for _, event := range events {
		switch strings.ToLower(event.EventAction) {
		case "registration":
			if record.CreationDate == "" {
				record.CreationDate = domainutil.ParseDate(event.EventDate)
			}
		case "last changed":
			if record.UpdatedDate == "" {
				record.UpdatedDate = domainutil.ParseDate(event.EventDate)
			}
		case "expiration":
			if record.ExpirationDate == "" {
				record.ExpirationDate = domainutil.ParseDate(event.EventDate)
			}
		}
	}
}

// applyEntities walks the entity graph. Top-level registrant entities carry
// the responsible organization; their children hold the abuse, technical
// and administrative points of contact.
func applyEntities(record *models.WhoisRecord, entities []Entity) {
	for _, entity := range entities {
		contact := parseVCard(entity.VCardArray)
		if hasRole(entity.Roles, "registrant") && record.Registrant == nil && !contact.IsEmpty() {
			record.Registrant = contact
		}
		for _, child := range entity.Entities {
			childContact := parseVCard(child.VCardArray)
			if childContact.IsEmpty() {
				continue
			}
			switch {
			case hasRole(child.Roles, "abuse") && record.Abuse == nil:
				record.Abuse = childContact
			case hasRole(child.Roles, "technical") && record.Tech == nil:
				record.Tech = childContact
			case hasRole(child.Roles, "administrative") && record.Admin == nil:
				record.Admin = childContact
			}
		}
	}
}

func hasRole(roles []string, want string) bool {
	for _, role := range roles {
		if strings.EqualFold(role, want) {
			return true
		}
	}
	return false
}

// parseVCard extracts contact fields from a jCard structure:
// ["vcard", [[name, params, type, value], ...]]. The adr entry's address
// text lives in its "label" parameter.
func parseVCard(raw json.RawMessage) *models.Contact {
	if len(raw) == 0 {
		return &models.Contact{}
	}
	var outer []json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil || len(outer) < 2 {
		return &models.Contact{}
	}
	var entries [][]json.RawMessage
	if err := json.Unmarshal(outer[1], &entries); err != nil {
		return &models.Contact{}
	}

	contact := &models.Contact{}
	for _, entry := range entries {
		if len(entry) < 4 {
			continue
		}
		var name string
		if err := json.Unmarshal(entry[0], &name); err != nil {
			continue
		}
		switch strings.ToLower(name) {
		case "fn":
			if contact.Name == "" {
				contact.Name = vcardString(entry[3])
			}
		case "org":
			if contact.Organization == "" {
				contact.Organization = vcardString(entry[3])
			}
		case "email":
			if contact.Email == "" {
				contact.Email = vcardString(entry[3])
			}
		case "tel":
			if contact.Phone == "" {
				contact.Phone = vcardString(entry[3])
			}
		case "adr":
			if contact.Street == "" {
				contact.Street = vcardLabel(entry[1])
			}
		}
	}
	return contact
}

func vcardString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	// Some registries emit structured values; join their text parts.
	var parts []string
	if err := json.Unmarshal(raw, &parts); err == nil {
		return strings.TrimSpace(strings.Join(parts, " "))
	}
	return ""
}

func vcardLabel(raw json.RawMessage) string {
	var params map[string]json.RawMessage
	if err := json.Unmarshal(raw, &params); err != nil {
		return ""
	}
	label, ok := params["label"]
	if !ok {
		return ""
	}
	return strings.ReplaceAll(vcardString(label), "\n", ", ")
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return list
		}
	}
	return append(list, value)
}
