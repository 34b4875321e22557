package shield

import (
	"database/sql"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// RateLimitRule is one fixed-window limit on a path.
type RateLimitRule struct {
	Endpoint      string
	MaxRequests   int
	WindowSeconds int
	// SkipSuccessful refunds requests answered with a status below 400.
	SkipSuccessful bool
	Enabled        bool
	Message        string
}

func (r RateLimitRule) window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

type bucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// RateLimiter provides per-IP, per-path rate limiting backed by the SQLite
// rate_limits table (see Schema). A path can carry several windows; the
// '*' rules apply to every path. Rules are reloaded periodically and
// expired buckets are garbage collected.
type RateLimiter struct {
	db      *sql.DB
	rules   map[string][]RateLimitRule
	buckets sync.Map
	mu      sync.RWMutex
	exclude []string // path prefixes excluded from rate limiting
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter that reads rules from the rate_limits
// table in db. Call StartReloader to enable periodic rule refresh and GC.
func NewRateLimiter(db *sql.DB, excludePrefixes ...string) *RateLimiter {
	rl := &RateLimiter{
		db:      db,
		rules:   make(map[string][]RateLimitRule),
		exclude: excludePrefixes,
		now:     time.Now,
	}
	rl.Reload()
	return rl
}

// StartReloader starts background goroutines for rule reloading (every 60s)
// and bucket GC (every 5min). Stops when done is closed.
func (rl *RateLimiter) StartReloader(done <-chan struct{}) {
	reloadTick := time.NewTicker(60 * time.Second)
	gcTick := time.NewTicker(5 * time.Minute)
	go func() {
		defer reloadTick.Stop()
		defer gcTick.Stop()
		for {
			select {
			case <-done:
				return
			case <-reloadTick.C:
				rl.Reload()
			case <-gcTick.C:
				rl.gc()
			}
		}
	}()
}

// Reload reads the rules table. On error the previous rules stay active.
func (rl *RateLimiter) Reload() {
	rows, err := rl.db.Query(`SELECT endpoint, max_requests, window_seconds, skip_successful, enabled, message FROM rate_limits`)
	if err != nil {
		slog.Warn("ratelimit: failed to reload rules", "error", err)
		return
	}
	defer rows.Close()

	rules := make(map[string][]RateLimitRule)
	n := 0
	for rows.Next() {
		var r RateLimitRule
		var skip, enabled int
		if err := rows.Scan(&r.Endpoint, &r.MaxRequests, &r.WindowSeconds, &skip, &enabled, &r.Message); err != nil {
			continue
		}
		r.SkipSuccessful = skip == 1
		r.Enabled = enabled == 1
		if !r.Enabled || r.WindowSeconds <= 0 {
			continue
		}
		rules[r.Endpoint] = append(rules[r.Endpoint], r)
		n++
	}
	for _, rs := range rules {
		sort.Slice(rs, func(i, j int) bool { return rs[i].WindowSeconds < rs[j].WindowSeconds })
	}

	rl.mu.Lock()
	rl.rules = rules
	rl.mu.Unlock()

	slog.Debug("ratelimit: rules reloaded", "count", n)
}

func (rl *RateLimiter) gc() {
	now := rl.now()
	rl.buckets.Range(func(key, value any) bool {
		b := value.(*bucket)
		b.mu.Lock()
		expired := now.After(b.resetAt)
		b.mu.Unlock()
		if expired {
			rl.buckets.Delete(key)
		}
		return true
	})
}

// applicable returns the '*' rules followed by the path's own rules.
func (rl *RateLimiter) applicable(path string) []RateLimitRule {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	out := append([]RateLimitRule(nil), rl.rules["*"]...)
	return append(out, rl.rules[path]...)
}

func bucketKey(ip string, r RateLimitRule) string {
	return ip + "|" + r.Endpoint + "|" + strconv.Itoa(r.WindowSeconds)
}

// take counts one request against r and reports whether it is allowed,
// with the remaining quota and the window reset time.
func (rl *RateLimiter) take(ip string, r RateLimitRule) (bool, int, time.Time) {
	now := rl.now()
	val, _ := rl.buckets.LoadOrStore(bucketKey(ip, r), &bucket{resetAt: now.Add(r.window())})
	b := val.(*bucket)

	b.mu.Lock()
	defer b.mu.Unlock()
	if now.After(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(r.window())
	}
	b.count++
	return b.count <= r.MaxRequests, max(r.MaxRequests-b.count, 0), b.resetAt
}

func (rl *RateLimiter) refund(ip string, r RateLimitRule) {
	val, ok := rl.buckets.Load(bucketKey(ip, r))
	if !ok {
		return
	}
	b := val.(*bucket)
	b.mu.Lock()
	if b.count > 0 {
		b.count--
	}
	b.mu.Unlock()
}

// Middleware enforces the rules. A blocked request gets a 429 JSON body
// carrying the rule's message.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range rl.exclude {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		rules := rl.applicable(r.URL.Path)
		if len(rules) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		ip := ExtractIP(r)
		var refundable []RateLimitRule
		for _, rule := range rules {
			ok, remaining, reset := rl.take(ip, rule)
			w.Header().Set("RateLimit-Limit", strconv.Itoa(rule.MaxRequests))
			w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))
			secs := int(reset.Sub(rl.now()).Seconds() + 0.5)
			w.Header().Set("RateLimit-Reset", strconv.Itoa(secs))
			if !ok {
				GetLogger(r.Context()).Warn("ratelimit: request blocked",
					"ip", ip, "endpoint", rule.Endpoint, "window_s", rule.WindowSeconds)
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": rule.Message})
				return
			}
			if rule.SkipSuccessful {
				refundable = append(refundable, rule)
			}
		}

		if len(refundable) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		if status := ww.Status(); status == 0 || status < http.StatusBadRequest {
			for _, rule := range refundable {
				rl.refund(ip, rule)
			}
		}
	})
}

// ExtractIP returns the client IP from X-Forwarded-For or RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
