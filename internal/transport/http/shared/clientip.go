package shared

import (
	"net"
	"net/http"
)

// ClientIP returns the host part of RemoteAddr. chi's RealIP middleware rewrites RemoteAddr upstream.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
