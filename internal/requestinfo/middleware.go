// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *RequestInfo.
//
/*
Context
--------
For every request the handler:

  1. Resolves the client IP.  X-Forwarded-For and X-Real-IP are honoured
     only when TrustProxy is set; otherwise a visitor could pick their own
     rate-limit bucket.
  2. Parses the User-Agent header.
  3. Performs an optional GeoLite2 lookup.
  4. Stores a `*RequestInfo` in the request context.

Instrumentation
---------------
At debug level each request logs IP, country, browser, device, bot flag,
and path.  Form values are never logged.
*/
package requestinfo

import (
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

/*──────────────────────────── middleware ───────────────────────────────────*/

// Enricher builds the middleware.  Geo may be nil.
type Enricher struct {
	Geo        GeoLookup
	TrustProxy bool
}

// Enrich wraps an http.Handler, attaches *RequestInfo, and forwards.
func (e Enricher) Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, e.TrustProxy)

		info := &RequestInfo{
			IP:        ip,
			UA:        ParseUA(r.UserAgent()),
			Geo:       lookupGeo(e.Geo, ip),
			Timestamp: time.Now().UTC(),
		}

		zap.S().Debugw("request info",
			"ip", info.ClientKey(),
			"country", info.Geo.CountryISO,
			"browser", info.UA.Browser,
			"device", info.UA.Device,
			"bot", info.UA.IsBot,
			"path", r.URL.Path,
		)

		next.ServeHTTP(w, r.WithContext(WithInfo(r.Context(), info)))
	})
}

/*──────────────────────────── client IP helper ─────────────────────────────*/

// clientIP returns the left-most parseable forwarded address when trusted,
// falling back to r.RemoteAddr ("ip:port").
func clientIP(r *http.Request, trustProxy bool) net.IP {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			for _, part := range strings.Split(xff, ",") {
				if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
					return ip
				}
			}
		}
		if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
			if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
				return ip
			}
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(r.RemoteAddr)
}
