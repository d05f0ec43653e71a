package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the client IP of the request in canonical form, so
// equivalent spellings of one address share a rate-limit bucket.
// It trusts r.RemoteAddr only; run chi's RealIP middleware first when the
// service sits behind a proxy that sets X-Forwarded-For / X-Real-IP.
func RealClientIP(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	if host == "" {
		return "unknown"
	}
	return host
}
