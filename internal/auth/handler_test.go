package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sosmed/internal/auth/service"
	"sosmed/pkg/ratelimit"
	"sosmed/pkg/token"
	"sosmed/store/memory"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func newHandler(rate int, proxies ...string) *AuthHandler {
	svc := service.NewAuthService(memory.New().Accounts(), token.NewIssuer("test-secret", time.Hour), bcrypt.MinCost)
	return NewAuthHandler(svc, ratelimit.NewMemory(), rate, proxies)
}

func login(h *AuthHandler, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"ghost","password":"x"}`))
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec.Code
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	h := newHandler(2)

	assert.Equal(t, http.StatusNotFound, login(h, "203.0.113.7:4000", "198.51.100.1"))
	assert.Equal(t, http.StatusNotFound, login(h, "203.0.113.7:4001", "198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, login(h, "203.0.113.7:4002", "198.51.100.3"))
}

func TestRateLimitUsesForwardedForBehindTrustedProxy(t *testing.T) {
	h := newHandler(1, "10.0.0.0/8", "192.0.2.1")

	assert.Equal(t, http.StatusNotFound, login(h, "10.1.2.3:4000", "198.51.100.1"))
	assert.Equal(t, http.StatusNotFound, login(h, "10.1.2.3:4000", "198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, login(h, "10.1.2.3:4000", "198.51.100.1"))

	// A client-supplied entry in front of the real hop is not trusted.
	assert.Equal(t, http.StatusTooManyRequests, login(h, "192.0.2.1:4000", "1.1.1.1, 198.51.100.2, 10.9.9.9"))
}

func TestClientIP(t *testing.T) {
	h := newHandler(0, "127.0.0.1", "bogus", "10.0.0.0/8")
	assert.Len(t, h.TrustedProxies, 2)

	cases := []struct {
		remote, forwarded, want string
	}{
		{"203.0.113.7:80", "198.51.100.1", "203.0.113.7"},
		{"127.0.0.1:80", "", "127.0.0.1"},
		{"127.0.0.1:80", "198.51.100.1", "198.51.100.1"},
		{"127.0.0.1:80", "6.6.6.6, 198.51.100.1, 10.0.0.5", "198.51.100.1"},
		{"127.0.0.1:80", "10.0.0.4, 10.0.0.5", "10.0.0.4"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = tc.remote
		if tc.forwarded != "" {
			req.Header.Set("X-Forwarded-For", tc.forwarded)
		}
		assert.Equal(t, tc.want, h.clientIP(req), "%s via %q", tc.remote, tc.forwarded)
	}
}
