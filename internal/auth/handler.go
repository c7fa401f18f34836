package handler

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"sosmed/internal/auth/model"
	"sosmed/internal/auth/service"
	"sosmed/pkg/logger"
	"sosmed/pkg/ratelimit"
	"sosmed/pkg/response"
)

type AuthHandler struct {
	Service *service.AuthService
	Limiter ratelimit.Limiter
	// RatePerMinute caps register and login attempts per client IP; 0 disables it.
	RatePerMinute int
	// TrustedProxies are the peers whose X-Forwarded-For header is honoured.
	TrustedProxies []netip.Prefix
}

func NewAuthHandler(service *service.AuthService, limiter ratelimit.Limiter, ratePerMinute int, trustedProxies []string) *AuthHandler {
	return &AuthHandler{
		Service:        service,
		Limiter:        limiter,
		RatePerMinute:  ratePerMinute,
		TrustedProxies: ParseProxies(trustedProxies),
	}
}

// ParseProxies accepts single addresses and CIDR ranges. Invalid entries are
// logged and skipped.
func ParseProxies(entries []string) []netip.Prefix {
	var out []netip.Prefix
	for _, entry := range entries {
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				logger.Sugar.Warnf("Ignoring trusted proxy %q: %v", entry, err)
				continue
			}
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			logger.Sugar.Warnf("Ignoring trusted proxy %q: %v", entry, err)
			continue
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, "register") {
		return
	}

	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Service.Register(r.Context(), req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, "login") {
		return
	}

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Service.Login(r.Context(), req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) allow(w http.ResponseWriter, r *http.Request, action string) bool {
	if h.Limiter == nil || h.RatePerMinute <= 0 {
		return true
	}
	key := fmt.Sprintf("%s:ip:%s", action, h.clientIP(r))
	ok, retry, err := h.Limiter.Allow(r.Context(), key, h.RatePerMinute, time.Minute)
	if err != nil {
		// Fail open when the limiter backend is unreachable.
		logger.Sugar.Warnf("Rate limiter unavailable for %s: %v", key, err)
		return true
	}
	if !ok {
		response.RateLimited(w, retry)
		return false
	}
	return true
}

// clientIP is the connection peer unless that peer is a trusted proxy, in
// which case X-Forwarded-For is walked from the right to the first hop that
// is not itself trusted.
func (h *AuthHandler) clientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}
	if !h.trusted(peer) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !h.trusted(hop) {
			return hop
		}
		peer = hop
	}
	return peer
}

func (h *AuthHandler) trusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range h.TrustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
