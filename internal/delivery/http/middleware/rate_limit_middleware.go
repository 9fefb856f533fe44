package middleware

import (
	"math"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"slot-booking/pkg/response"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const limiterIdleTimeout = 10 * time.Minute

type visitorLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware limits requests per client IP address. Forwarding
// headers are only believed when the peer is one of the trusted proxies.
type RateLimitMiddleware struct {
	mu        sync.Mutex
	limiters  map[string]*visitorLimiter
	limit     rate.Limit
	burst     int
	trusted   []netip.Prefix
	lastSweep time.Time
	log       *logrus.Logger
}

// NewRateLimitMiddleware builds the limiter. trustedProxies holds IPs or
// CIDRs; unparsable entries are skipped with a warning.
func NewRateLimitMiddleware(rps float64, burst int, trustedProxies []string, log *logrus.Logger) *RateLimitMiddleware {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitMiddleware{
		limiters:  make(map[string]*visitorLimiter),
		limit:     rate.Limit(rps),
		burst:     burst,
		trusted:   parseTrustedProxies(trustedProxies, log),
		lastSweep: time.Now(),
		log:       log,
	}
}

func parseTrustedProxies(raw []string, log *logrus.Logger) []netip.Prefix {
	var out []netip.Prefix
	for _, entry := range raw {
		if prefix, err := netip.ParsePrefix(entry); err == nil {
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			log.Warnf("Ignoring invalid trusted proxy %q: %+v", entry, err)
			continue
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out
}

// getLimiter returns the rate limiter for a given IP, creating one if it doesn't exist.
func (m *RateLimitMiddleware) getLimiter(ip string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if now.Sub(m.lastSweep) > limiterIdleTimeout {
		for key, v := range m.limiters {
			if now.Sub(v.lastSeen) > limiterIdleTimeout {
				delete(m.limiters, key)
			}
		}
		m.lastSweep = now
	}

	v, exists := m.limiters[ip]
	if !exists {
		v = &visitorLimiter{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.limiters[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (m *RateLimitMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, m.trusted)
		if !m.getLimiter(ip).Allow() {
			m.log.Warnf("Rate limit exceeded for %s", ip)
			response.TooManyRequests(w, "Rate limit exceeded. Try again later.", m.retryAfter())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// retryAfter is the time in seconds until one more token is available.
func (m *RateLimitMiddleware) retryAfter() int {
	if m.limit <= 0 || m.limit == rate.Inf {
		return 0
	}
	return int(math.Ceil(1 / float64(m.limit)))
}

// clientIP is the peer address, or the nearest untrusted hop named by the
// forwarding headers when the peer is a trusted proxy.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}
	if !isTrusted(peer, trusted) {
		return peer
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		hops := strings.Split(fwd, ",")
		// right to left: the leftmost entries are whatever the client wrote
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if _, err := netip.ParseAddr(hop); err != nil {
				break
			}
			if !isTrusted(hop, trusted) {
				return hop
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		if _, err := netip.ParseAddr(ip); err == nil {
			return ip
		}
	}
	return peer
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
