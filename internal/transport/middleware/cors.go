package middleware

import (
	"net/http"
	"strings"
)

// CORSConfig carries the comma-separated origin list from server config.
type CORSConfig struct {
	AllowedOrigins string
}

// CORS answers preflight requests and stamps the allow headers the dashboard
// frontend needs. An empty origin list behaves like "*".
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	allowed := map[string]bool{}
	allowAll := cfg.AllowedOrigins == "" || cfg.AllowedOrigins == "*"
	for _, o := range strings.Split(cfg.AllowedOrigins, ",") {
		o = strings.TrimSpace(o)
		if o == "*" {
			allowAll = true
		} else if o != "" {
			allowed[o] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Trace-ID")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
