package server

import (
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/osse101/SpinVault_Go/internal/logger"
)

// AuthMiddleware validates API key
func AuthMiddleware(apiKey string, trustedProxies []string, detector *SuspiciousActivityDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Allow public access to documentation and health check endpoints
			for _, path := range PublicPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			providedKey := r.Header.Get(HeaderAPIKey)

			// Use constant time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
				ip := extractIP(r, trustedProxies)
				detector.RecordFailedAuth(ip)

				logger.FromContext(r.Context()).Warn(LogMsgAuthFailed,
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
					"has_key", providedKey != "",
					"ip", ip)

				http.Error(w, ErrMsgUnauthorized, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestSizeLimitMiddleware limits request body size
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// client is the per-IP state the detector keeps
type client struct {
	limiter    *rate.Limiter
	mu         sync.Mutex
	failedAuth int
	blocked    int
}

// SuspiciousActivityDetector rate limits clients by IP and alerts on repeated
// auth failures. Idle clients age out of a bounded LRU.
type SuspiciousActivityDetector struct {
	clients *expirable.LRU[string, *client]
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
}

// NewSuspiciousActivityDetector uses the default per-client budget
func NewSuspiciousActivityDetector() *SuspiciousActivityDetector {
	return NewSuspiciousActivityDetectorWithLimit(ClientRequestsPerSecond, ClientBurst)
}

// NewSuspiciousActivityDetectorWithLimit allows perSecond requests per client
// with bursts of up to burst
func NewSuspiciousActivityDetectorWithLimit(perSecond float64, burst int) *SuspiciousActivityDetector {
	return &SuspiciousActivityDetector{
		clients: expirable.NewLRU[string, *client](MaxTrackedClient, nil, ClientWindow),
		limit:   rate.Limit(perSecond),
		burst:   burst,
	}
}

func (s *SuspiciousActivityDetector) clientFor(ip string) *client {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients.Get(ip)
	if !ok {
		c = &client{limiter: rate.NewLimiter(s.limit, s.burst)}
	}
	// Re-adding refreshes the idle window
	s.clients.Add(ip, c)
	return c
}

// RecordFailedAuth records a failed authentication attempt
func (s *SuspiciousActivityDetector) RecordFailedAuth(ip string) {
	c := s.clientFor(ip)
	c.mu.Lock()
	c.failedAuth++
	count := c.failedAuth
	c.mu.Unlock()

	if count >= FailedAuthAlertThreshold {
		slog.Warn(SecurityAlertFailedAuth, "ip", ip, "count", count)
	}
}

// FailedAuthCount reports the failures recorded for ip in the current window
func (s *SuspiciousActivityDetector) FailedAuthCount(ip string) int {
	s.mu.Lock()
	c, ok := s.clients.Peek(ip)
	s.mu.Unlock()
	if !ok {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failedAuth
}

// RecordRequest returns false when ip is over its request budget
func (s *SuspiciousActivityDetector) RecordRequest(ip string) bool {
	c := s.clientFor(ip)
	if c.limiter.Allow() {
		return true
	}

	c.mu.Lock()
	c.blocked++
	blocked := c.blocked
	c.mu.Unlock()
	// Log every 100 blocked requests to avoid log spam
	if blocked%100 == 1 {
		slog.Warn(SecurityAlertHighRate, "ip", ip, "blocked", blocked)
	}
	return false
}

// SecurityLoggingMiddleware enforces the per-client request budget
func SecurityLoggingMiddleware(trustedProxies []string, detector *SuspiciousActivityDetector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := extractIP(r, trustedProxies)
			if !detector.RecordRequest(ip) {
				http.Error(w, ErrMsgTooManyRequests, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractIP gets the client IP address from request.
// It only trusts X-Forwarded-For if the request comes from a trusted proxy.
func extractIP(r *http.Request, trustedProxies []string) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	isTrusted := false
	for _, proxy := range trustedProxies {
		if proxy == remoteIP {
			isTrusted = true
			break
		}
	}

	if isTrusted {
		if forwarded := r.Header.Get(HeaderForwardedFor); forwarded != "" {
			// The rightmost entry is the hop our trusted proxy saw
			ips := strings.Split(forwarded, ",")
			return strings.TrimSpace(ips[len(ips)-1])
		}
	}

	return remoteIP
}

// SecurityHeadersMiddleware adds security headers to responses
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(HeaderContentType, HeaderValueNoSniff)
			w.Header().Set(HeaderFrameOptions, HeaderValueSameOrigin)
			w.Header().Set(HeaderXSSProtection, HeaderValueXSSBlock)
			w.Header().Set(HeaderReferrerPolicy, HeaderValueReferrerStrictOrigin)

			next.ServeHTTP(w, r)
		})
	}
}
