// Package dnscheck resolves live NS records so registry-reported
// nameservers can be cross-checked against the DNS.
package dnscheck

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/commjoen/whoisintel/pkg/models"
)

const (
	defaultTimeout = 10 * time.Second
	defaultRetries = 2
)

// Checker queries NS records against the system resolvers.
type Checker struct {
	servers []string
	client  *dns.Client
	retries int
}

// NewChecker creates a checker using the resolvers from /etc/resolv.conf,
// falling back to well-known public servers.
func NewChecker(timeout time.Duration) *Checker {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Checker{
		servers: systemResolvers(),
		client:  &dns.Client{Timeout: timeout},
		retries: defaultRetries,
	}
}

func systemResolvers() []string {
	config, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(config.Servers) == 0 {
		return []string{"8.8.8.8:53", "1.1.1.1:53"}
	}
	servers := make([]string, 0, len(config.Servers))
	for _, server := range config.Servers {
		if !strings.Contains(server, ":") {
			server += ":53"
		}
		servers = append(servers, server)
	}
	return servers
}

// Check resolves the domain's NS set and compares it against the
// registry-reported nameservers. Comparison ignores case, order and
// trailing dots; Match is true when the sets are equal.
func (c *Checker) Check(ctx context.Context, domain string, reported []string) *models.DNSCheck {
	live, err := c.queryNS(ctx, domain)
	if err != nil {
		return &models.DNSCheck{Error: err.Error()}
	}
	return &models.DNSCheck{
		LiveNameServers: live,
		Match:           sameHostSet(live, reported),
	}
}

func (c *Checker) queryNS(ctx context.Context, domain string) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeNS)
	msg.RecursionDesired = true

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		for _, server := range c.servers {
			reply, _, err := c.client.ExchangeContext(ctx, msg, server)
			if err != nil {
				lastErr = err
				continue
			}
			if reply.Rcode != dns.RcodeSuccess {
				lastErr = fmt.Errorf("NS query returned %s", dns.RcodeToString[reply.Rcode])
				continue
			}
			var servers []string
			for _, answer := range reply.Answer {
				if ns, ok := answer.(*dns.NS); ok {
					servers = append(servers, strings.ToLower(strings.TrimSuffix(ns.Ns, ".")))
				}
			}
			sort.Strings(servers)
			return servers, nil
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no resolvers configured")
	}
	return nil, fmt.Errorf("resolve NS for %s: %w", domain, lastErr)
}

func sameHostSet(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	normalize := func(list []string) map[string]struct{} {
		set := make(map[string]struct{}, len(list))
		for _, host := range list {
			set[strings.ToLower(strings.TrimSuffix(strings.TrimSpace(host), "."))] = struct{}{}
		}
		return set
	}
	setA, setB := normalize(a), normalize(b)
	if len(setA) != len(setB) {
		return false
	}
	for host := range setA {
		if _, ok := setB[host]; !ok {
			return false
		}
	}
	return true
}
