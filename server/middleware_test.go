package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/medassist/medassist-api/config"
)

func TestRealIPMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		expectedIP string
	}{
		{"no forwarded header", "", "10.0.0.1:1234", "10.0.0.1:1234"},
		{"single forwarded ip", "203.0.113.5", "10.0.0.1:1234", "203.0.113.5"},
		{"multiple forwarded ips", "203.0.113.5, 70.41.3.18, 150.172.238.178", "10.0.0.1:1234", "203.0.113.5"},
		{"forwarded ip with spaces", "  203.0.113.5  ", "10.0.0.1:1234", "203.0.113.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotIP string
			handler := RealIPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotIP = r.RemoteAddr
			}))

			req := httptest.NewRequest("GET", "/medicines", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)

			if gotIP != tt.expectedIP {
				t.Errorf("Expected remote addr %s, got %s", tt.expectedIP, gotIP)
			}
		})
	}
}

func TestRequestSizeMiddleware_BodyTooLarge(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 100, MaxHeaderSize: 4096}
	mw := RequestSizeMiddleware(cfg)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/identify", strings.NewReader("x"))
	req.Header.Set("Content-Length", "5000")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Request body too large") {
		t.Errorf("Expected a body size error, got %s", rr.Body.String())
	}
}

func TestRequestSizeMiddleware_HeadersTooLarge(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 1 << 20, MaxHeaderSize: 64}
	mw := RequestSizeMiddleware(cfg)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/medicines", nil)
	req.Header.Set("X-Big-Header", strings.Repeat("a", 200))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestHeaderFieldsTooLarge {
		t.Errorf("Expected status 431, got %d", rr.Code)
	}
}

func TestRequestSizeMiddleware_AllowsNormalRequests(t *testing.T) {
	cfg := &config.Config{MaxRequestBody: 1 << 20, MaxHeaderSize: 1 << 20}
	mw := RequestSizeMiddleware(cfg)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/medicines", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestGetTokenCost(t *testing.T) {
	tests := []struct {
		path     string
		expected int64
	}{
		{"/health", 5},
		{"/metrics", 5},
		{"/medicines", 50},
		{"/identify", 100},
		{"/speak", 50},
		{"/speak/unlock", 5},
		{"/history", 10},
		{"/medicines/search/paracetamol", 50},
		{"/medicines/MED001", 20},
		{"/doctors/fever/Mumbai", 20},
		{"/unknown", 20},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if got := getTokenCost(req); got != tt.expected {
				t.Errorf("Expected cost %d for %s, got %d", tt.expected, tt.path, got)
			}
		})
	}
}

func TestRateLimitHandler_AllowsWithinBudget(t *testing.T) {
	handler := RateLimitHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/health", nil)
	req.RemoteAddr = "192.0.2.10:5000"
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if rr.Header().Get("X-RateLimit-Limit") != "1000" {
		t.Errorf("Expected the rate limit header, got %s", rr.Header().Get("X-RateLimit-Limit"))
	}
	if rr.Header().Get("X-RateLimit-Remaining") == "" {
		t.Error("Expected a remaining tokens header")
	}
}

func TestRateLimitHandler_BlocksWhenExhausted(t *testing.T) {
	handler := RateLimitHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Each identify request costs 100 tokens against a 1000 token bucket
	clientAddr := "192.0.2.20:5000"
	var lastCode int
	for i := 0; i < 12; i++ {
		req := httptest.NewRequest("POST", "/identify", nil)
		req.RemoteAddr = clientAddr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		lastCode = rr.Code
	}

	if lastCode != http.StatusTooManyRequests {
		t.Errorf("Expected status 429 after exhausting the bucket, got %d", lastCode)
	}
}

func TestRateLimitHandler_SeparateClients(t *testing.T) {
	handler := RateLimitHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Exhaust one client
	for i := 0; i < 12; i++ {
		req := httptest.NewRequest("POST", "/identify", nil)
		req.RemoteAddr = "192.0.2.30:5000"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	// A different client is unaffected
	req := httptest.NewRequest("POST", "/identify", nil)
	req.RemoteAddr = "192.0.2.31:5000"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200 for an unrelated client, got %d", rr.Code)
	}
}

func TestRateLimiter_BucketReuse(t *testing.T) {
	rl := NewRateLimiter()

	first := rl.getBucket("192.0.2.40")
	second := rl.getBucket("192.0.2.40")

	if first != second {
		t.Error("Expected the same bucket for repeated lookups")
	}

	other := rl.getBucket("192.0.2.41")
	if first == other {
		t.Error("Expected a distinct bucket per client")
	}
}

func TestRespondWithJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	respondWithJSON(rr, http.StatusTeapot, map[string]string{"k": "v"})

	if rr.Code != http.StatusTeapot {
		t.Errorf("Expected status %d, got %d", http.StatusTeapot, rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", ct)
	}
	expected := fmt.Sprintf("{%q:%q}", "k", "v")
	if !strings.Contains(rr.Body.String(), expected) {
		t.Errorf("Expected body to contain %s, got %s", expected, rr.Body.String())
	}
}
