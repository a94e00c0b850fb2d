package tools

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// blockedHostSuffixes are hostname suffixes that never resolve to a
// legitimate external fetch target.
var blockedHostSuffixes = []string{".local", ".internal"}

// blockedHostnames are exact-match hostnames known to front cloud metadata
// services or loopback aliases.
var blockedHostnames = map[string]bool{
	"localhost":                  true,
	"metadata.google.internal":   true,
	"metadata.google.internal.":  true,
	"metadata":                   true,
	"metadata.azure.com":         true,
	"instance-data":              true,
}

// blockedCIDRs are IPv4/IPv6 ranges that must never be reachable from a
// URL-accessing tool: loopback, RFC1918 private space, link-local (including
// the cloud metadata address 169.254.169.254), the "this network" block,
// and their IPv6 equivalents.
var blockedCIDRs = mustParseCIDRs(
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"0.0.0.0/8",
	"169.254.0.0/16",
	"::1/128",
	"fe80::/10",
	"fc00::/7",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(fmt.Sprintf("ssrf: invalid CIDR literal %q: %v", c, err))
		}
		nets = append(nets, n)
	}
	return nets
}

// checkSSRF rejects any URL that a fetch tool must never be allowed to
// reach: non-HTTP(S) schemes, loopback/private/link-local/cloud-metadata
// addresses (by literal IP or by resolving the hostname), and a short list
// of hostnames known to front those addresses. Tools call this once on the
// requested URL and again on every redirect target, since a redirect is an
// equally valid way to smuggle a request to an internal address.
func checkSSRF(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme %q is not allowed", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("URL has no host")
	}
	if err := checkSSRFHost(host); err != nil {
		return err
	}
	return nil
}

func checkSSRFHost(host string) error {
	lower := strings.ToLower(host)
	if blockedHostnames[lower] {
		return fmt.Errorf("host %q is blocked", host)
	}
	for _, suffix := range blockedHostSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return fmt.Errorf("host %q is blocked", host)
		}
	}

	if ip := net.ParseIP(host); ip != nil {
		return checkSSRFIP(ip)
	}

	ips, err := net.LookupIP(host)
	if err != nil {
		// Unresolvable hosts fail the fetch itself later; don't block here.
		return nil
	}
	for _, ip := range ips {
		if err := checkSSRFIP(ip); err != nil {
			return err
		}
	}
	return nil
}

func checkSSRFIP(ip net.IP) error {
	if ip.IsUnspecified() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return fmt.Errorf("IP %s is blocked", ip)
	}
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	for _, n := range blockedCIDRs {
		if n.Contains(ip) {
			return fmt.Errorf("IP %s is blocked (matches %s)", ip, n)
		}
	}
	return nil
}
