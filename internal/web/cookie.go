package web

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"careerpage/portal-service/internal/session"
)

// SessionCookie names the cookie carrying the session ID.
const SessionCookie = "portal_session"

func sessionID(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// setSessionCookie issues the session cookie. Remembered sessions get a
// persistent cookie; the others end with the browser session.
func setSessionCookie(w http.ResponseWriter, s *session.Session) {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.Remember {
		if ttl := time.Until(s.ExpiresAt); ttl > 0 {
			c.MaxAge = int(ttl.Seconds())
			c.Expires = s.ExpiresAt
		}
	}
	http.SetCookie(w, c)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// trustedProxies lists the reverse proxies whose X-Forwarded-For header is
// believed.
type trustedProxies []netip.Prefix

func (t trustedProxies) trusts(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range t {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientIP keys the login limiter. The peer address is used unless the peer
// is a trusted proxy; then X-Forwarded-For is walked from the right and the
// first hop that is not a trusted proxy wins.
func (t trustedProxies) clientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}
	addr, err := netip.ParseAddr(peer)
	if err != nil || !t.trusts(addr) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		if !t.trusts(hop) {
			return hop.Unmap().String()
		}
	}
	return peer
}
