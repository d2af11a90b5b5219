package dnscheck

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
)

func TestSameHostSet(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want bool
	}{
		{
			name: "equal ignoring case and dots",
			a:    []string{"ns1.example.com", "ns2.example.com"},
			b:    []string{"NS2.Example.COM.", " ns1.example.com "},
			want: true,
		},
		{
			name: "different sets",
			a:    []string{"ns1.example.com"},
			b:    []string{"ns1.other.net"},
			want: false,
		},
		{
			name: "subset is not a match",
			a:    []string{"ns1.example.com", "ns2.example.com"},
			b:    []string{"ns1.example.com"},
			want: false,
		},
		{
			name: "empty side never matches",
			a:    nil,
			b:    []string{"ns1.example.com"},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameHostSet(tt.a, tt.b); got != tt.want {
				t.Errorf("sameHostSet() = %v, want %v", got, tt.want)
			}
		})
	}
}

// serveDNS runs a local resolver answering every NS query with the given
// hosts.
func serveDNS(t *testing.T, hosts []string) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	mux := dns.NewServeMux()
	mux.HandleFunc(".", func(w dns.ResponseWriter, r *dns.Msg) {
		reply := new(dns.Msg)
		reply.SetReply(r)
		for _, host := range hosts {
			reply.Answer = append(reply.Answer, &dns.NS{
				Hdr: dns.RR_Header{
					Name:   r.Question[0].Name,
					Rrtype: dns.TypeNS,
					Class:  dns.ClassINET,
					Ttl:    300,
				},
				Ns: dns.Fqdn(host),
			})
		}
		w.WriteMsg(reply)
	})

	srv := &dns.Server{PacketConn: pc, Handler: mux}
	go srv.ActivateAndServe()
	t.Cleanup(func() { srv.Shutdown() })
	return pc.LocalAddr().String()
}

func TestCheck(t *testing.T) {
	addr := serveDNS(t, []string{"NS2.Example.com", "ns1.example.com"})

	checker := NewChecker(2 * time.Second)
	checker.servers = []string{addr}

	result := checker.Check(context.Background(), "example.com", []string{"ns1.example.com", "ns2.example.com"})
	if result.Error != "" {
		t.Fatalf("Check error: %s", result.Error)
	}
	if !result.Match {
		t.Errorf("Match = false, live = %v", result.LiveNameServers)
	}
	// Live servers come back lowercased and sorted.
	if len(result.LiveNameServers) != 2 || result.LiveNameServers[0] != "ns1.example.com" {
		t.Errorf("LiveNameServers = %v", result.LiveNameServers)
	}

	mismatch := checker.Check(context.Background(), "example.com", []string{"ns1.other.net"})
	if mismatch.Match {
		t.Error("differing sets must not match")
	}
}
