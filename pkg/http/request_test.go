package http_test

import (
	"net/http/httptest"
	"testing"

	pkghttp "github.com/exploria-travel/auth-service/pkg/http"
	"github.com/stretchr/testify/assert"
)

// Forwarding headers must only be trusted when the request comes through a
// configured proxy; otherwise a client can spoof its own address.

func TestExtractClientIP_DirectConnection_IgnoresHeaders(t *testing.T) {
	req := httptest.NewRequest("POST", "/portal/login", nil)
	req.RemoteAddr = "203.0.113.10:54321"

	req.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	req.Header.Set("X-Real-IP", "192.168.1.1")

	config := &pkghttp.IPConfig{
		TrustedProxies: []string{"10.0.0.0/8", "172.16.0.0/12", "127.0.0.1/32"},
	}

	ip := pkghttp.ExtractClientIP(req, config)
	assert.Equal(t, "203.0.113.10", ip)
}

func TestExtractClientIP_TrustedProxy_UsesXForwardedFor(t *testing.T) {
	req := httptest.NewRequest("POST", "/portal/login", nil)
	req.RemoteAddr = "10.0.0.5:54321"

	req.Header.Set("X-Forwarded-For", "203.0.113.42, 10.0.0.5")
	req.Header.Set("X-Real-IP", "203.0.113.42")

	config := &pkghttp.IPConfig{
		TrustedProxies: []string{"10.0.0.0/8", "127.0.0.1/32"},
	}

	ip := pkghttp.ExtractClientIP(req, config)
	assert.Equal(t, "203.0.113.42", ip)
}

func TestExtractClientIP_TrustedProxy_FallsBackToXRealIP(t *testing.T) {
	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.RemoteAddr = "10.0.0.5:54321"
	req.Header.Set("X-Real-IP", "203.0.113.7")

	config := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}

	ip := pkghttp.ExtractClientIP(req, config)
	assert.Equal(t, "203.0.113.7", ip)
}

func TestExtractClientIP_NilConfig_UsesRemoteAddr(t *testing.T) {
	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.RemoteAddr = "198.51.100.9:1234"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	ip := pkghttp.ExtractClientIP(req, nil)
	assert.Equal(t, "198.51.100.9", ip)
}

func TestExtractClientIP_InvalidHeaderValues_Skipped(t *testing.T) {
	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.RemoteAddr = "10.0.0.5:54321"
	req.Header.Set("X-Forwarded-For", "not-an-ip, 203.0.113.42")

	config := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8"}}

	ip := pkghttp.ExtractClientIP(req, config)
	assert.Equal(t, "203.0.113.42", ip)
}

func TestExtractRequestMeta(t *testing.T) {
	req := httptest.NewRequest("POST", "/auth/register", nil)
	req.RemoteAddr = "198.51.100.9:1234"
	req.Header.Set("User-Agent", "Mozilla/5.0 (ExploriaApp 2.1.0)")

	meta := pkghttp.ExtractRequestMeta(req, nil)
	assert.Equal(t, "198.51.100.9", meta.IPAddress)
	assert.Equal(t, "Mozilla/5.0 (ExploriaApp 2.1.0)", meta.UserAgent)
}
