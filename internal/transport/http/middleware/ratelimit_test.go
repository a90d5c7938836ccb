package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hotelperf/internal/domain/auth"
)

var noContent = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func loginRequest(ip, username string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"username":"`+username+`","password":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = ip + ":4000"
	return req
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: userID}))
}

func serveCode(h http.Handler, req *http.Request) int {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitKeysByUserBeforeIP(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent)

	first := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/evaluations/e1/signatures", nil), "user-1")
	first.RemoteAddr = "198.51.100.11:2222"
	if code := serveCode(limited, first); code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", code)
	}

	second := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/evaluations/e1/signatures", nil), "user-1")
	second.RemoteAddr = "198.51.100.12:3333"
	if code := serveCode(limited, second); code != http.StatusTooManyRequests {
		t.Fatalf("expected same user from another address to be throttled, got %d", code)
	}

	other := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/evaluations/e1/signatures", nil), "user-2")
	other.RemoteAddr = "198.51.100.12:3333"
	if code := serveCode(limited, other); code != http.StatusNoContent {
		t.Fatalf("expected another user to have their own bucket, got %d", code)
	}
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent)

	if code := serveCode(limited, loginRequest("203.0.113.10", "front.desk")); code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := serveCode(limited, loginRequest("203.0.113.10", "night.audit")); code != http.StatusTooManyRequests {
		t.Fatalf("expected anonymous requests from one ip to share a bucket, got %d", code)
	}
}

func TestWindowLimiterResetsAndSweeps(t *testing.T) {
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	l := newWindowLimiter(1, time.Minute, IPKey)
	l.now = func() time.Time { return now }

	if !l.take("a").allowed {
		t.Fatal("expected first hit to be allowed")
	}
	d := l.take("a")
	if d.allowed || d.remaining != 0 || d.resetIn != time.Minute {
		t.Fatalf("unexpected decision after limit: %+v", d)
	}

	now = now.Add(time.Minute)
	if !l.take("b").allowed {
		t.Fatal("expected new key to be allowed")
	}
	if _, ok := l.buckets["a"]; ok {
		t.Fatal("expected expired bucket to be swept")
	}
	if !l.take("a").allowed {
		t.Fatal("expected window reset to allow the key again")
	}
}

func TestRateLimitReturnsRetryMetadata(t *testing.T) {
	limited := RateLimit(1, time.Minute)(noContent)
	serveCode(limited, loginRequest("192.0.2.30", "front.desk"))

	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, loginRequest("192.0.2.30", "front.desk"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected throttled response, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After of 60, got %q", rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected no remaining hits, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}
	if !strings.Contains(rec.Body.String(), "rate_limited") {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
}

func TestRouteScope(t *testing.T) {
	cases := []struct {
		method string
		path   string
		want   limitScope
	}{
		{http.MethodPost, "/api/v1/auth/login", scopeLogin},
		{http.MethodGet, "/api/v1/auth/login", scopeNone},
		{http.MethodPost, "/api/v1/users/", scopeActor},
		{http.MethodPost, "/api/v1/evaluations/e1/signatures", scopeActor},
		{http.MethodPost, "/api/v1/evaluations//signatures", scopeNone},
		{http.MethodDelete, "/api/v1/evaluations/e1", scopeActor},
		{http.MethodPut, "/api/v1/evaluations/e1", scopeNone},
		{http.MethodDelete, "/api/v1/kpis/k1", scopeActor},
		{http.MethodGet, "/api/v1/evaluations/summary", scopeNone},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if got := routeScope(req); got != tc.want {
			t.Errorf("%s %s: got scope %d, want %d", tc.method, tc.path, got, tc.want)
		}
	}
}

func TestSensitiveMutationRateLimitIgnoresReads(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(noContent)

	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/evaluations/summary", nil)
		req.RemoteAddr = "198.51.100.40:8888"
		if code := serveCode(limited, req); code != http.StatusNoContent {
			t.Fatalf("expected read %d to bypass limits, got %d", i+1, code)
		}
	}

	for i := 0; i < 3; i++ {
		req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/evaluations/e1/signatures", nil), "supervisor-1")
		code := serveCode(limited, req)
		if i < 2 && code != http.StatusNoContent {
			t.Fatalf("expected signature %d to pass, got %d", i+1, code)
		}
		if i == 2 && code != http.StatusTooManyRequests {
			t.Fatalf("expected third signature to be throttled, got %d", code)
		}
	}
}

func TestSensitiveMutationRateLimitLoginByUsername(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !bytes.Contains(body, []byte(`"password":"x"`)) {
			t.Fatal("expected the full body to be readable after key extraction")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if code := serveCode(limited, loginRequest("192.0.2.50", "Admin")); code != http.StatusNoContent {
		t.Fatalf("expected first login to pass, got %d", code)
	}
	if code := serveCode(limited, loginRequest("192.0.2.51", "admin")); code != http.StatusTooManyRequests {
		t.Fatalf("expected second login for the same username to be throttled, got %d", code)
	}
	if code := serveCode(limited, loginRequest("192.0.2.51", "reception")); code != http.StatusTooManyRequests {
		t.Fatalf("expected second login from the same ip to be throttled, got %d", code)
	}
}
