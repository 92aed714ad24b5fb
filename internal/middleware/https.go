// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net"
	"net/http"
)

// ForceHTTPS wraps h.  If the request arrived over plain HTTP and the host is
// not a loopback name, the wrapper issues a 308 Permanent Redirect to the
// HTTPS version of the same URL.  X-Forwarded-Proto is honoured only when
// trustProxy is set.
func ForceHTTPS(trustProxy bool, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secure := r.TLS != nil || (trustProxy && r.Header.Get("X-Forwarded-Proto") == "https")
		if secure || isLoopback(stripPort(r.Host)) {
			h.ServeHTTP(w, r)
			return
		}
		target := "https://" + r.Host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if host, _, err := net.SplitHostPort(h); err == nil {
		return host
	}
	return h
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
