//
//  internal/requestinfo/requestinfo.go
//
//  Lightweight types and helpers that collect per-request metadata
//  (user-agent fingerprint, IP + geolocation, and timestamp).  These
//  structs are inert, so they are safe to log or JSON-encode.
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
	"sync/atomic"
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
//
// Example (Chrome on macOS):
//
//	Browser   "BrowserChrome"
//	Version   "125.0.6422"
//	OS        "OSMacOSX"
//	Device    "Desktop"
//	IsBot     false
type UA struct {
	Raw         string
	Browser     string
	Version     string
	OS          string
	OSVersion   string
	Device      string // Desktop, Mobile, Tablet, or Other
	Platform    string
	IsBot       bool
	PrimaryLang string // first tag from Accept-Language ("en", "es", ...)
}

// Geo holds IP-based geolocation hints.  They are best-effort and empty
// when no database is loaded or the DB has no match.
type Geo struct {
	IP         net.IP
	CountryISO string
	City       string
}

// RequestInfo is stored on the request context by Enrich.
type RequestInfo struct {
	UA        UA
	Geo       Geo
	Timestamp time.Time
}

//
//  -----------------------------
//  Package-level state
//  -----------------------------
//

// geoReader is the MaxMind handle, nil when geo hints are disabled.  Safe
// for concurrent reads.
var geoReader atomic.Pointer[geoip2.Reader]

// InitGeo opens the GeoLite2-City database.  An empty path disables geo
// hints.
func InitGeo(dbPath string) error {
	if dbPath == "" {
		return nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return fmt.Errorf("requestinfo: open GeoLite2 DB: %w", err)
	}
	if old := geoReader.Swap(r); old != nil {
		_ = old.Close()
	}
	return nil
}

//
//  -----------------------------
//  Context helpers
//  -----------------------------
//

type ctxKey struct{}

// FromContext returns the value stored by Enrich, or nil when the
// middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// LogFields flattens the info into zap key/value pairs.
func (ri *RequestInfo) LogFields() []any {
	if ri == nil {
		return nil
	}
	return []any{
		"ip", ri.Geo.IP.String(),
		"country", ri.Geo.CountryISO,
		"browser", ri.UA.Browser,
		"device", ri.UA.Device,
		"bot", ri.UA.IsBot,
	}
}

//
//  -----------------------------
//  Internal helpers
//  -----------------------------
//

// parseUA converts raw headers into our UA struct.
func parseUA(raw, acceptLang string) UA {
	u := surfer.Parse(raw)

	ua := UA{
		Raw:         raw,
		Browser:     u.Browser.Name.String(),
		Version:     versionToString(u.Browser.Version),
		OS:          u.OS.Name.String(),
		OSVersion:   versionToString(u.OS.Version),
		Platform:    u.OS.Platform.String(),
		IsBot:       u.IsBot(),
		PrimaryLang: primaryLang(acceptLang),
	}

	switch u.DeviceType {
	case surfer.DeviceComputer:
		ua.Device = "Desktop"
	case surfer.DeviceTablet:
		ua.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		ua.Device = "Mobile"
	default:
		ua.Device = "Other"
	}
	return ua
}

// versionToString renders a version in dotted form while trimming trailing
// zeros, e.g. 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionToString(v surfer.Version) string {
	if v.Major == 0 && v.Minor == 0 && v.Patch == 0 {
		return ""
	}
	if v.Patch != 0 {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	if v.Minor != 0 {
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return strconv.Itoa(int(v.Major))
}

// primaryLang extracts the first language subtag before any ";q=" rule.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	tag := strings.TrimSpace(strings.Split(al, ",")[0])
	if i := strings.IndexByte(tag, ';'); i != -1 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}

// lookupGeo returns best-effort Geo data.
func lookupGeo(ip net.IP) Geo {
	r := geoReader.Load()
	if r == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := r.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}
