package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"
)

// CORSAllowlist admits the editor UI origins: localhost in development
// and *.app.clipforge.io (or .local) in hosted setups. Denied origins on
// simple requests are served without CORS headers; denied preflights are
// rejected outright.
func CORSAllowlist() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !isAllowedOrigin(origin) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, HEAD, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Range, Content-Type, Authorization, X-Request-ID")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Range, Accept-Ranges, Content-Length, Content-Type, X-Request-ID")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isAllowedOrigin(origin string) bool {
	scheme, rest, found := strings.Cut(origin, "://")
	if !found {
		return false
	}
	if scheme != "http" && scheme != "https" {
		return false
	}
	if strings.ContainsAny(rest, "/?#") {
		return false
	}

	host := rest
	if h, port, err := net.SplitHostPort(rest); err == nil {
		if _, perr := strconv.Atoi(port); perr != nil {
			return false
		}
		host = h
	} else if strings.Contains(rest, ":") {
		// A colon without a valid host:port split means a malformed port.
		return false
	}

	if host == "localhost" || host == "127.0.0.1" {
		return true
	}

	for _, domain := range []string{".app.clipforge.io", ".app.clipforge.local"} {
		if sub, ok := strings.CutSuffix(host, domain); ok {
			return isValidSubdomainLabel(sub)
		}
	}
	return false
}

func isValidSubdomainLabel(label string) bool {
	if label == "" || strings.Contains(label, ".") {
		return false
	}
	if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
		return false
	}
	for _, c := range label {
		if !(c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-') {
			return false
		}
	}
	return true
}

// LoopbackGuard restricts a route to requests originating on this
// machine. Media bytes never leave the host even if the listener is
// somehow exposed.
func LoopbackGuard() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemoteAddr(r.RemoteAddr) {
				WriteError(w, http.StatusForbidden, "local requests only", "FORBIDDEN")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isLoopbackRemoteAddr(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = strings.Trim(addr, "[]")
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
