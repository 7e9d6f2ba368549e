package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/cors"
)

func (s *Server) corsHandler() func(http.Handler) http.Handler {
	allowAll := false
	for _, origin := range s.cfg.AllowedOrigins {
		if origin == "*" {
			allowAll = true
		}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: !allowAll,
		MaxAge:           300,
	})
}

// securityHeaders sets the static hardening headers. JSON endpoints get a
// deny-all CSP; HTML pages may load their own assets and monster icons.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	pageCSP := "default-src 'self'; img-src 'self' data:" + remoteOrigin(s.cfg.RemoteImageBase) + "; frame-ancestors 'none'"
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if isAPIEndpoint(r.URL.Path) {
			w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		} else {
			w.Header().Set("Content-Security-Policy", pageCSP)
		}
		next.ServeHTTP(w, r)
	})
}

func remoteOrigin(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return " " + u.Scheme + "://" + u.Host
}

func isAPIEndpoint(path string) bool {
	return strings.HasPrefix(path, "/api/") || path == "/healthz"
}
