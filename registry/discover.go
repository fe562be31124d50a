package registry

import (
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// SRVService is the SRV service label of registry endpoints:
// _vanityreg._tcp.{domain}
const SRVService = "vanityreg"

const (
	// defaultUpstream is the default recursive resolver for DNSSEC queries.
	defaultUpstream = "8.8.8.8:53"

	dnssecTimeout = 10 * time.Second
	edns0BufSize  = 4096
)

// DNSResolver defines the SRV lookup used for endpoint discovery.
type DNSResolver interface {
	LookupSRV(service, proto, name string) (string, []*net.SRV, error)
}

type defaultDNSResolver struct{}

func (defaultDNSResolver) LookupSRV(service, proto, name string) (string, []*net.SRV, error) {
	return net.LookupSRV(service, proto, name)
}

// DefaultDNSResolver uses the system resolver without DNSSEC checks.
var DefaultDNSResolver DNSResolver = defaultDNSResolver{}

// DiscoverEndpoint resolves the registry endpoint for domain from its SRV
// records and returns it as an http:// URL. The highest priority (lowest
// value) record wins, ties broken by the larger weight.
func DiscoverEndpoint(domain string, resolver DNSResolver) (string, error) {
	if domain == "" {
		return "", fmt.Errorf("%w: empty domain", ErrDNSLookupFailed)
	}
	if resolver == nil {
		resolver = DefaultDNSResolver
	}

	_, addrs, err := resolver.LookupSRV(SRVService, "tcp", domain)
	if err != nil {
		return "", fmt.Errorf("%w: SRV lookup for _%s._tcp.%s: %w", ErrDNSLookupFailed, SRVService, domain, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("%w: no SRV records for _%s._tcp.%s", ErrNoEndpoints, SRVService, domain)
	}

	sort.SliceStable(addrs, func(i, j int) bool {
		if addrs[i].Priority != addrs[j].Priority {
			return addrs[i].Priority < addrs[j].Priority
		}
		return addrs[i].Weight > addrs[j].Weight
	})

	best := addrs[0]
	host := strings.TrimSuffix(best.Target, ".")
	return fmt.Sprintf("http://%s", net.JoinHostPort(host, fmt.Sprint(best.Port))), nil
}

// DNSSECResolver implements DNSResolver and only accepts answers the
// upstream recursive resolver marked as authenticated (AD flag).
type DNSSECResolver struct {
	// Upstream is the recursive resolver address (e.g., "8.8.8.8:53").
	Upstream string
	// Timeout bounds each query; zero means 10s.
	Timeout time.Duration
}

var _ DNSResolver = (*DNSSECResolver)(nil)

// NewDNSSECResolver creates a DNSSECResolver. An empty upstream defaults to 8.8.8.8:53.
func NewDNSSECResolver(upstream string) *DNSSECResolver {
	if upstream == "" {
		upstream = defaultUpstream
	}
	return &DNSSECResolver{Upstream: upstream}
}

// LookupSRV looks up SRV records with DNSSEC validation. The returned
// cname is always empty.
func (r *DNSSECResolver) LookupSRV(service, proto, name string) (string, []*net.SRV, error) {
	qname := dns.Fqdn(fmt.Sprintf("_%s._%s.%s", service, proto, name))

	msg := new(dns.Msg)
	msg.SetQuestion(qname, dns.TypeSRV)
	msg.RecursionDesired = true
	msg.SetEdns0(edns0BufSize, true)

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = dnssecTimeout
	}
	client := &dns.Client{Timeout: timeout}
	resp, _, err := client.Exchange(msg, r.Upstream)
	if err != nil {
		return "", nil, fmt.Errorf("%w: query %s: %w", ErrDNSLookupFailed, qname, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return "", nil, fmt.Errorf("%w: query %s: rcode %s", ErrDNSLookupFailed, qname, dns.RcodeToString[resp.Rcode])
	}
	if !resp.AuthenticatedData {
		return "", nil, fmt.Errorf("%w: AD flag not set for %s", ErrDNSSECValidationFailed, qname)
	}

	var srvs []*net.SRV
	for _, rr := range resp.Answer {
		if srv, ok := rr.(*dns.SRV); ok {
			srvs = append(srvs, &net.SRV{
				Target:   strings.TrimSuffix(srv.Target, "."),
				Port:     srv.Port,
				Priority: srv.Priority,
				Weight:   srv.Weight,
			})
		}
	}
	return "", srvs, nil
}
