// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *RequestInfo.
//
/*
Context
--------
This handler sits after chi's RealIP middleware, so r.RemoteAddr already
holds the client address taken from X-Forwarded-For or X-Real-IP.  For every
request it:

  1. Parses the User-Agent header and Accept-Language list.
  2. Performs a GeoLite2 lookup when a database is loaded.
  3. Stores a `*RequestInfo` value in the request context under an
     unexported key, so handlers can log UA and geo hints without reparsing.

Instrumentation
---------------
At debug level each invocation logs the client IP, country, browser,
device, bot flag, and request path.
*/
package requestinfo

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

/*──────────────────────────── middleware ───────────────────────────────────*/

// Enrich wraps an http.Handler, attaches *RequestInfo, and forwards.
func Enrich(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := &RequestInfo{
			UA:        parseUA(r.UserAgent(), r.Header.Get("Accept-Language")),
			Geo:       lookupGeo(clientIP(r)),
			Timestamp: time.Now().UTC(),
		}

		zap.S().Debugw("request info", append(info.LogFields(), "path", r.URL.Path)...)

		ctx := context.WithValue(r.Context(), ctxKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

/*──────────────────────────── client IP helper ─────────────────────────────*/

// clientIP parses r.RemoteAddr, which may or may not carry a port.
func clientIP(r *http.Request) net.IP {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(r.RemoteAddr)
}
