package web

import (
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	trusted := trustedProxies{netip.MustParsePrefix("10.0.0.0/8")}

	cases := []struct {
		name    string
		proxies trustedProxies
		remote  string
		xff     string
		want    string
	}{
		{"peer only", nil, "198.51.100.7:4000", "", "198.51.100.7"},
		{"untrusted peer ignores header", nil, "198.51.100.7:4000", "203.0.113.1", "198.51.100.7"},
		{"trusted peer uses header", trusted, "10.0.0.2:4000", "203.0.113.1", "203.0.113.1"},
		{"rightmost untrusted hop wins", trusted, "10.0.0.2:4000", "1.1.1.1, 203.0.113.1, 10.0.0.9", "203.0.113.1"},
		{"trusted peer without header", trusted, "10.0.0.2:4000", "", "10.0.0.2"},
		{"malformed hop falls back to peer", trusted, "10.0.0.2:4000", "garbage", "10.0.0.2"},
		{"remote without port", nil, "198.51.100.7", "", "198.51.100.7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/auth/login", nil)
			r.RemoteAddr = tc.remote
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			assert.Equal(t, tc.want, tc.proxies.clientIP(r))
		})
	}
}
