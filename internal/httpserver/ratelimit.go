package httpserver

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fdg312/fitplanner/internal/config"
	"golang.org/x/time/rate"
)

// aiRoutes are the endpoints that call the AI provider on every request.
// They get their own, much smaller per-IP budget.
var aiRoutes = map[string]bool{
	"POST /v1/plan/generate":      true,
	"POST /v1/nutrition/estimate": true,
	"POST /v1/chat/messages":      true,
}

func isAIRoute(r *http.Request) bool {
	return aiRoutes[r.Method+" "+r.URL.Path]
}

// clientBuckets holds one token bucket per client IP.
type clientBuckets struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
	seen    atomic.Int64
}

func newClientBuckets(limit rate.Limit, burst int) *clientBuckets {
	return &clientBuckets{
		buckets: make(map[string]*rate.Limiter),
		limit:   limit,
		burst:   burst,
	}
}

func (c *clientBuckets) allow(ip string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.buckets[ip]
	if !ok {
		b = rate.NewLimiter(c.limit, c.burst)
		c.buckets[ip] = b
	}

	// Every 1000 lookups drop buckets that have refilled; those clients are idle.
	if c.seen.Add(1)%1000 == 0 {
		for key, other := range c.buckets {
			if key != ip && other.Tokens() >= float64(c.burst) {
				delete(c.buckets, key)
			}
		}
	}

	return b.Allow()
}

// RateLimitMiddleware enforces two per-IP token buckets. Every request
// draws from the general bucket (RATE_LIMIT_RPS). Generate, nutrition
// estimate and chat send also draw from the AI bucket
// (AI_RATE_LIMIT_PER_MINUTE), so a client cannot run up provider cost by
// looping on them while schedule edits stay unaffected.
// A limit <= 0 turns that bucket off.
func RateLimitMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	var general, ai *clientBuckets

	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = cfg.RateLimitRPS
		}
		general = newClientBuckets(rate.Limit(cfg.RateLimitRPS), burst)
	}
	if n := cfg.AIRateLimitPerMinute; n > 0 {
		ai = newClientBuckets(rate.Every(time.Minute/time.Duration(n)), n)
	}

	if general == nil && ai == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)

		if general != nil && !general.allow(ip) {
			writeRateLimited(w, "rate_limited", "Too many requests, slow down", 1)
			return
		}
		if ai != nil && isAIRoute(r) && !ai.allow(ip) {
			retry := int(time.Minute.Seconds()) / cfg.AIRateLimitPerMinute
			writeRateLimited(w, "ai_rate_limited", "Too many assistant requests, try again shortly", max(retry, 1))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeRateLimited(w http.ResponseWriter, code, message string, retryAfter int) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// extractIP prefers the first X-Forwarded-For hop for proxied setups.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
