// Package apikey provides bearer-token middleware for the admin sync
// endpoints. Sync triggers spend the shared Graph API budget, so they are
// never left open even inside a trusted network.
package apikey

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Require returns middleware that rejects requests whose Authorization
// header does not carry the configured bearer token. If no token is
// configured the protected routes are disabled outright (503) rather than
// silently open.
func Require(token string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				logger.Warn("admin endpoint hit with no API token configured",
					zap.String("path", r.URL.Path))
				writeError(w, http.StatusServiceUnavailable, "admin API token not configured")
				return
			}

			presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				logger.Warn("rejected admin request",
					zap.String("path", r.URL.Path),
					zap.String("remote", r.RemoteAddr))
				writeError(w, http.StatusUnauthorized, "invalid or missing API token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
