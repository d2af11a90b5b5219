// Package output provides formatting options for lookup results
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/commjoen/whoisintel/pkg/models"
)

// Formatter defines the interface for output formatters
type Formatter interface {
	Write(w io.Writer, result *models.LookupResult) error
}

// TextFormatter renders results as human-readable text
type TextFormatter struct {
	// Raw appends the unparsed registry response at the end.
	Raw bool
}

// JSONFormatter renders results as JSON
type JSONFormatter struct {
	Pretty bool
}

// NewFormatter creates a new formatter based on the format type
func NewFormatter(format string, raw bool) (Formatter, error) {
	switch strings.ToLower(format) {
	case "text", "":
		return &TextFormatter{Raw: raw}, nil
	case "json":
		return &JSONFormatter{Pretty: true}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Write writes the formatted output to the writer
func (f *TextFormatter) Write(w io.Writer, result *models.LookupResult) error {
	fmt.Fprintf(w, "Query:     %s\n", result.Query)
	fmt.Fprintf(w, "Time:      %s\n", result.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Cached:    %v\n", result.Cached)
	fmt.Fprintf(w, "Elapsed:   %dms\n", result.ElapsedMs)

	switch {
	case result.NotFound:
		fmt.Fprintln(w, "Result:    not found (no registration)")
	case !result.Success:
		fmt.Fprintln(w, "Result:    lookup failed")
	default:
		fmt.Fprintln(w, "Result:    ok")
	}
	fmt.Fprintln(w, strings.Repeat("-", 60))

	if record := result.Record; record != nil {
		writeField(w, "Domain", record.DomainName)
		writeField(w, "Registrar", record.Registrar)
		writeField(w, "Registrar URL", record.RegistrarURL)
		writeField(w, "Created", record.CreationDate)
		writeField(w, "Updated", record.UpdatedDate)
		writeField(w, "Expires", record.ExpirationDate)
		writeField(w, "DNSSEC", record.DNSSEC)
		writeField(w, "Name servers", strings.Join(record.NameServers, ", "))
		writeField(w, "Status", strings.Join(record.Status, ", "))
		writeContact(w, "Registrant", record.Registrant)
		writeContact(w, "Admin", record.Admin)
		writeContact(w, "Tech", record.Tech)
		writeContact(w, "Abuse", record.Abuse)
		for key, value := range record.Extra {
			writeField(w, key, value)
		}
	}

	if result.DNSCheck != nil {
		fmt.Fprintln(w, strings.Repeat("-", 60))
		writeField(w, "Live NS", strings.Join(result.DNSCheck.LiveNameServers, ", "))
		fmt.Fprintf(w, "%-16s %v\n", "NS match:", result.DNSCheck.Match)
		writeField(w, "DNS error", result.DNSCheck.Error)
	}

	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, provider := range result.Providers {
		state := "failed"
		switch {
		case provider.Success:
			state = "ok"
		case provider.NotFound:
			state = "not found"
		}
		fmt.Fprintf(w, "Provider %-10s %-10s %4dms", provider.Provider, state, provider.ElapsedMs)
		if provider.Error != "" {
			fmt.Fprintf(w, "  (%s)", provider.Error)
		}
		fmt.Fprintln(w)
	}
	for _, errMsg := range result.Errors {
		fmt.Fprintf(w, "Error: %s\n", errMsg)
	}

	if f.Raw && result.Record != nil && result.Record.RawText != "" {
		fmt.Fprintln(w, strings.Repeat("=", 60))
		fmt.Fprintln(w, result.Record.RawText)
	}
	return nil
}

func writeField(w io.Writer, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%-16s %s\n", key+":", value)
}

func writeContact(w io.Writer, role string, contact *models.Contact) {
	if contact.IsEmpty() {
		return
	}
	parts := make([]string, 0, 4)
	for _, part := range []string{contact.Name, contact.Organization, contact.Email, contact.Phone, contact.Country} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	writeField(w, role, strings.Join(parts, " / "))
}

// Write writes the formatted output to the writer
func (f *JSONFormatter) Write(w io.Writer, result *models.LookupResult) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(result)
}
