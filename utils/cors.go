package utils

import (
	"net"
	"net/url"
	"strings"
)

// OriginPolicy decides which browser origins may call the API.
type OriginPolicy struct {
	// Extra lists additional allowed origins ("https://movies.example.com").
	// A single "*" allows every origin.
	Extra []string
}

// Allows reports whether origin is a local/private origin or explicitly listed.
func (p OriginPolicy) Allows(origin string) bool {
	if origin == "" {
		return false
	}
	for _, o := range p.Extra {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return IsAllowedOrigin(origin)
}

// IsAllowedOrigin allows localhost, private and link-local IPs, .local hostnames
// and single-label hostnames. Public internet origins are blocked.
func IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	hostname := parsed.Hostname()
	switch {
	case hostname == "localhost":
		return true
	case strings.HasSuffix(hostname, ".local"):
		return true
	case !strings.Contains(hostname, ".") && !strings.Contains(hostname, ":"):
		return true
	}

	if ip := net.ParseIP(hostname); ip != nil {
		return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast()
	}
	return false
}
