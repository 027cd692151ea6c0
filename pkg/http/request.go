package http

import (
	"net"
	"net/http"
	"strings"
)

// IPConfig holds the CIDR ranges of proxies whose forwarding headers are
// trusted. Requests arriving from anywhere else only get RemoteAddr.
type IPConfig struct {
	TrustedProxies []string
}

// RequestMeta is the network metadata captured for journal entries and
// last-login bookkeeping.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// ExtractRequestMeta pulls the client IP and User-Agent off the request.
func ExtractRequestMeta(r *http.Request, config *IPConfig) RequestMeta {
	return RequestMeta{
		IPAddress: ExtractClientIP(r, config),
		UserAgent: r.Header.Get("User-Agent"),
	}
}

// ExtractClientIP extracts the real client IP address. X-Forwarded-For and
// X-Real-IP are honored only when the request comes through a trusted proxy,
// otherwise a client could spoof its address by setting the header itself.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := getRemoteAddr(r)

	if config != nil && isTrustedProxy(remoteIP, config.TrustedProxies) {
		// X-Forwarded-For can hold a chain; take the first valid hop
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			for _, ip := range strings.Split(xff, ",") {
				ip = strings.TrimSpace(ip)
				if isValidIP(ip) {
					return ip
				}
			}
		}

		if xri := r.Header.Get("X-Real-IP"); xri != "" && isValidIP(xri) {
			return xri
		}
	}

	return remoteIP
}

// getRemoteAddr extracts the IP address from RemoteAddr (removing port if present)
func getRemoteAddr(r *http.Request) string {
	if r.RemoteAddr != "" {
		if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return ip
		}
		return r.RemoteAddr
	}
	return "unknown"
}

// isTrustedProxy checks if an IP address is within any of the trusted proxy CIDR ranges
func isTrustedProxy(ip string, trustedProxies []string) bool {
	if len(trustedProxies) == 0 {
		return false
	}

	clientIP := net.ParseIP(ip)
	if clientIP == nil {
		return false
	}

	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			continue // Skip invalid CIDR ranges
		}
		if ipNet.Contains(clientIP) {
			return true
		}
	}

	return false
}

// isValidIP checks if a string is a valid IPv4 or IPv6 address
func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
