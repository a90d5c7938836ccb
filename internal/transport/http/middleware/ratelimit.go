package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"hotelperf/internal/transport/http/api"
)

// RateLimitKeyFunc picks the bucket a request is counted against.
type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*windowLimiter)

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(l *windowLimiter) {
		if fn != nil {
			l.keyFn = fn
		}
	}
}

// windowLimiter counts hits per key in fixed windows.
type windowLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	keyFn     RateLimitKeyFunc
	now       func() time.Time
	buckets   map[string]*windowBucket
	lastSweep time.Time
}

type windowBucket struct {
	hits    int
	resetAt time.Time
}

type decision struct {
	allowed   bool
	remaining int
	resetIn   time.Duration
}

func newWindowLimiter(limit int, window time.Duration, keyFn RateLimitKeyFunc) *windowLimiter {
	if keyFn == nil {
		keyFn = ActorOrIPKey
	}
	return &windowLimiter{
		limit:   limit,
		window:  window,
		keyFn:   keyFn,
		now:     time.Now,
		buckets: map[string]*windowBucket{},
	}
}

func (l *windowLimiter) take(key string) decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.window {
		for k, b := range l.buckets {
			if !now.Before(b.resetAt) {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		b = &windowBucket{resetAt: now.Add(l.window)}
		l.buckets[key] = b
	}
	b.hits++
	return decision{
		allowed:   b.hits <= l.limit,
		remaining: max(l.limit-b.hits, 0),
		resetIn:   b.resetAt.Sub(now),
	}
}

// allow records the hit and writes the rate headers. A rejected request gets a 429 envelope.
func (l *windowLimiter) allow(w http.ResponseWriter, r *http.Request) bool {
	if l.limit <= 0 {
		return true
	}
	key := l.keyFn(r)
	if key == "" {
		key = "ip:" + clientIP(r)
	}
	d := l.take(key)
	resetSeconds := ceilSeconds(d.resetIn)

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetSeconds))
	if d.allowed {
		return true
	}

	w.Header().Set("Retry-After", strconv.Itoa(max(resetSeconds, 1)))
	slog.Warn("rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path, "limit", l.limit)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

// RateLimit applies one limiter to every request, keyed by the caller or the client IP.
func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	l := newWindowLimiter(limit, window, ActorOrIPKey)
	for _, opt := range opts {
		opt(l)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.allow(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

type limitScope int

const (
	scopeNone limitScope = iota
	scopeLogin
	scopeActor
)

// sensitiveRoute matches a method and an API path; "*" stands for one path segment.
type sensitiveRoute struct {
	method  string
	pattern string
	scope   limitScope
}

var sensitiveRoutes = []sensitiveRoute{
	{http.MethodPost, "/auth/login", scopeLogin},
	{http.MethodPost, "/users", scopeActor},
	{http.MethodPost, "/evaluations/*/signatures", scopeActor},
	{http.MethodDelete, "/evaluations/*", scopeActor},
	{http.MethodDelete, "/kpis/*", scopeActor},
	{http.MethodDelete, "/departments/*", scopeActor},
	{http.MethodDelete, "/employees/*", scopeActor},
}

// SensitiveMutationRateLimit throttles login attempts per IP and per username, and the
// destructive or signing mutations per caller. Reads are never counted.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	loginLimit := max(baseLimit/4, 1)
	loginByIP := newWindowLimiter(loginLimit, window, IPKey)
	loginByUsername := newWindowLimiter(loginLimit, window, AuthFieldOrIPKey("username"))
	byActor := newWindowLimiter(max(baseLimit/2, 1), window, ActorOrIPKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch routeScope(r) {
			case scopeLogin:
				if !loginByIP.allow(w, r) || !loginByUsername.allow(w, r) {
					return
				}
			case scopeActor:
				if !byActor.allow(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func routeScope(r *http.Request) limitScope {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1"), "/")
	for _, route := range sensitiveRoutes {
		if route.method == r.Method && matchSegments(route.pattern, path) {
			return route.scope
		}
	}
	return scopeNone
}

func matchSegments(pattern, path string) bool {
	want := strings.Split(strings.Trim(pattern, "/"), "/")
	got := strings.Split(path, "/")
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if got[i] == "" || (want[i] != "*" && want[i] != got[i]) {
			return false
		}
	}
	return true
}

func ActorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return IPKey(r)
}

func IPKey(r *http.Request) string {
	return "ip:" + clientIP(r)
}

// AuthFieldOrIPKey keys requests by a string field of the JSON body, case-insensitively,
// falling back to the client IP. The body is restored for the handler.
func AuthFieldOrIPKey(field string) RateLimitKeyFunc {
	field = strings.TrimSpace(field)
	if field == "" {
		field = "username"
	}
	return func(r *http.Request) string {
		if value := peekJSONField(r, field); value != "" {
			return field + ":" + strings.ToLower(value)
		}
		return IPKey(r)
	}
}

// clientIP expects RealIP to have already rewritten RemoteAddr from forwarding headers.
func clientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func peekJSONField(r *http.Request, field string) string {
	if r.Body == nil || !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	original := r.Body
	raw, err := io.ReadAll(io.LimitReader(original, 64<<10))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(raw), original), original}
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	value, _ := payload[field].(string)
	return strings.TrimSpace(value)
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
