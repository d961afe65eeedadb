package utils

import (
	"net/http/httptest"
	"net/netip"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{"remote addr", "192.0.2.7:4242", nil, false, "192.0.2.7"},
		{"ipv6 remote", "[2001:db8::1]:443", nil, false, "2001:db8::1"},
		{"headers ignored", "192.0.2.7:4242", map[string]string{"X-Forwarded-For": "10.0.0.1"}, false, "192.0.2.7"},
		{"cloudflare first", "127.0.0.1:1", map[string]string{"CF-Connecting-IP": "203.0.113.5", "X-Forwarded-For": "10.0.0.1"}, true, "203.0.113.5"},
		{"left-most forwarded", "127.0.0.1:1", map[string]string{"X-Forwarded-For": " 10.0.0.1 , 127.0.0.1"}, true, "10.0.0.1"},
		{"real ip", "127.0.0.1:1", map[string]string{"X-Real-IP": "10.0.0.9"}, true, "10.0.0.9"},
		{"no headers", "127.0.0.1:1", nil, true, "127.0.0.1"},
		{"garbage header skipped", "127.0.0.1:1", map[string]string{"CF-Connecting-IP": "unknown", "X-Real-IP": "10.0.0.9"}, true, "10.0.0.9"},
		{"mapped ipv4", "[::ffff:192.0.2.7]:80", nil, false, "192.0.2.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{" 10.0.0.0/8", "192.0.2.1", "", "garbage", "2001:db8::/32"})
	if m.IsEmpty() {
		t.Fatal("matcher is empty")
	}

	tests := []struct {
		ip   string
		want bool
	}{
		{"10.255.0.1", true},
		{"192.0.2.1", true},
		{"192.0.2.2", false},
		{"2001:db8::42", true},
		{"not-an-ip", false},
		{"::ffff:10.1.2.3", true},
	}
	for _, tt := range tests {
		if got := m.Allow(tt.ip); got != tt.want {
			t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}

	if !NewIPMatcher([]string{"", "nope"}).IsEmpty() {
		t.Error("matcher with no valid rules should be empty")
	}
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		ip   string
		want string
	}{
		{"192.0.2.7", "192.0.2.7"},
		{"2001:db8:1:2:aaaa::1", "2001:db8:1:2::/64"},
		{"2001:db8:1:2:bbbb::9", "2001:db8:1:2::/64"},
		{"not-an-ip", "not-an-ip"},
	}
	for _, tt := range tests {
		if got := ClientKey(tt.ip); got != tt.want {
			t.Errorf("ClientKey(%q) = %q, want %q", tt.ip, got, tt.want)
		}
	}
}

func TestIsInternalAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"127.0.0.1", true},
		{"10.0.0.1", true},
		{"169.254.169.254", true},
		{"100.100.1.1", true},
		{"::", true},
		{"fd00::1", true},
		{"::ffff:192.168.1.1", true},
		{"8.8.8.8", false},
		{"2001:4860:4860::8888", false},
	}
	for _, tt := range tests {
		if got := IsInternalAddr(netip.MustParseAddr(tt.addr)); got != tt.want {
			t.Errorf("IsInternalAddr(%s) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}
