package rdap

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/commjoen/whoisintel/internal/domainutil"
)

// FormatText renders an RDAP ip network JSON body as field-aligned
// WHOIS-style text, for clients that want a familiar raw-data view of the
// same structure the JSON parser consumes.
func FormatText(body []byte) (string, error) {
	var network IPNetwork
	if err := json.Unmarshal(body, &network); err != nil {
		return "", fmt.Errorf("decode rdap response: %w", err)
	}

	var sb strings.Builder
	writeField := func(key, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&sb, "%-15s %s\n", key+":", value)
	}

	if network.StartAddress != "" && network.EndAddress != "" {
		writeField("NetRange", network.StartAddress+" - "+network.EndAddress)
	}
	writeField("CIDR", FormatCIDRs(network.CIDRs))
	writeField("NetName", network.Name)
	writeField("NetHandle", network.Handle)
	writeField("Parent", network.ParentHandle)
	writeField("NetType", network.Type)
	writeField("Country", network.Country)
	writeField("Status", strings.Join(network.Status, ", "))

	for _, event := range network.Events {
		switch strings.ToLower(event.EventAction) {
		case "registration":
			writeField("RegDate", domainutil.ParseDate(event.EventDate))
		case "last changed":
			writeField("Updated", domainutil.ParseDate(event.EventDate))
		}
	}

	for _, entity := range network.Entities {
		if !hasRole(entity.Roles, "registrant") {
			continue
		}
		contact := parseVCard(entity.VCardArray)
		writeField("OrgName", contact.Organization)
		if contact.Organization == "" {
			writeField("OrgName", contact.Name)
		}
		writeField("OrgId", entity.Handle)
		writeField("Address", contact.Street)
		for _, child := range entity.Entities {
			childContact := parseVCard(child.VCardArray)
			switch {
			case hasRole(child.Roles, "abuse"):
				writeField("OrgAbuseName", childContact.Name)
				writeField("OrgAbuseEmail", childContact.Email)
				writeField("OrgAbusePhone", childContact.Phone)
			case hasRole(child.Roles, "technical"):
				writeField("OrgTechName", childContact.Name)
				writeField("OrgTechEmail", childContact.Email)
			}
		}
		break
	}

	return sb.String(), nil
}
