//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (client IP, user-agent fingerprint, and optional geolocation).  The
//  form handlers key rate limits by client IP and count bot posts; the
//  structs are inert and safe to log.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	surfer "github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties.
type UA struct {
	Browser   string // "Chrome", "Firefox", "Safari", etc.
	Version   string // "124.0.6367"
	OS        string
	OSVersion string
	Device    string // "Desktop", "Mobile", "Tablet", or "Other"
	IsBot     bool
}

// Geo holds IP-based geolocation hints.  Empty when no database is loaded
// or the address has no match.
type Geo struct {
	CountryISO string
	City       string
}

// RequestInfo is stored in the request context by Enrich.
type RequestInfo struct {
	IP        net.IP
	UA        UA
	Geo       Geo
	Timestamp time.Time
}

// ClientKey is the rate-limit key component for this request.  Unknown
// addresses share one bucket.
func (ri *RequestInfo) ClientKey() string {
	if ri == nil || ri.IP == nil {
		return "unknown"
	}
	return ri.IP.String()
}

//
//  -----------------------------
//  Geo lookups
//  -----------------------------
//

// GeoLookup is the part of *geoip2.Reader Enrich uses.
type GeoLookup interface {
	City(ip net.IP) (*geoip2.City, error)
}

// OpenGeo opens a GeoLite2-City database.  The caller owns Close.
func OpenGeo(dbPath string) (*geoip2.Reader, error) {
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("requestinfo: open GeoLite2 DB: %w", err)
	}
	return r, nil
}

func lookupGeo(g GeoLookup, ip net.IP) Geo {
	if g == nil || ip == nil {
		return Geo{}
	}
	rec, err := g.City(ip)
	if err != nil || rec == nil {
		return Geo{}
	}
	return Geo{
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}

//
//  -----------------------------
//  Public helper: FromContext
//  -----------------------------
//

type ctxKey struct{}

// FromContext returns the pointer previously stored by Enrich, or nil.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// WithInfo stores ri in ctx.  Tests use it to bypass the middleware.
func WithInfo(ctx context.Context, ri *RequestInfo) context.Context {
	return context.WithValue(ctx, ctxKey{}, ri)
}

//
//  -----------------------------
//  UA parsing
//  -----------------------------
//

// ParseUA converts a raw header into UA.
func ParseUA(raw string) UA {
	u := surfer.Parse(raw)

	out := UA{
		Browser:   strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:   versionString(u.Browser.Version),
		OS:        strings.TrimPrefix(u.OS.Name.String(), "OS"),
		OSVersion: versionString(u.OS.Version),
		IsBot:     u.IsBot(),
	}

	switch u.DeviceType {
	case surfer.DeviceComputer:
		out.Device = "Desktop"
	case surfer.DeviceTablet:
		out.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		out.Device = "Mobile"
	default:
		out.Device = "Other"
	}
	return out
}

// versionString renders 17.0.0 as "17", 17.3.0 as "17.3", and so on.
func versionString(v surfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0 && v.Patch == 0:
		return ""
	case v.Patch != 0:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	case v.Minor != 0:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return strconv.Itoa(int(v.Major))
	}
}
