package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/hookstudio/internal/logger"
)

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host    string
		pattern string
		want    bool
	}{
		{"studio.example", "studio.example", true},
		{"a.studio.example", "*.studio.example", true},
		{"a.b.studio.example", "*.studio.example", true},
		{"studio.example", "*.studio.example", false},
		{"evilstudio.example", "*.studio.example", false},
		{"other.example", "studio.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.host+"_"+tt.pattern, func(t *testing.T) {
			if got := matchHost(tt.host, tt.pattern); got != tt.want {
				t.Errorf("matchHost(%q, %q) = %v, want %v", tt.host, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestEnforceHost(t *testing.T) {
	log := logger.New("error", false)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name    string
		allowed []string
		host    string
		want    int
	}{
		{"empty list passes", nil, "anything", http.StatusOK},
		{"port ignored", []string{"Studio.Example:8080"}, "studio.example:9090", http.StatusOK},
		{"wildcard", []string{"*.studio.example"}, "eu.studio.example", http.StatusOK},
		{"rejected", []string{"studio.example"}, "evil.example", http.StatusMisdirectedRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/message", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()
			EnforceHost(tt.allowed, log)(ok).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestAllowOnlyCIDRS(t *testing.T) {
	log := logger.New("error", false)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name       string
		allowed    []string
		trustProxy bool
		remote     string
		xff        string
		want       int
	}{
		{"empty list passes", nil, false, "192.0.2.1:1", "", http.StatusOK},
		{"cidr match", []string{"10.0.0.0/8"}, false, "10.9.8.7:1", "", http.StatusOK},
		{"exact ip", []string{"192.0.2.1"}, false, "192.0.2.1:1", "", http.StatusOK},
		{"outside", []string{"10.0.0.0/8"}, false, "192.0.2.1:1", "", http.StatusForbidden},
		{"xff ignored without trust", []string{"10.0.0.0/8"}, false, "192.0.2.1:1", "10.0.0.1", http.StatusForbidden},
		{"xff used with trust", []string{"10.0.0.0/8"}, true, "127.0.0.1:1", "10.0.0.1, 127.0.0.1", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			rec := httptest.NewRecorder()
			AllowOnlyCIDRS(tt.allowed, tt.trustProxy, log)(ok).ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
