package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader carries the key for routes that require one
const APIKeyHeader = "X-API-Key"

func equal(a, b string) bool {
	ah := sha256.Sum256([]byte(a))
	bh := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ah[:], bh[:]) == 1
}

// basicAuth guards next with HTTP basic auth when a user is configured
func (s *Server) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		// skip basic authentication if no user
		if s.cfg.User == "" {
			next.ServeHTTP(w, r)
			return
		}

		ruser, rpasswd, ok := r.BasicAuth()

		if ok {
			// https://www.alexedwards.net/blog/basic-authentication-in-go
			userMatch := equal(s.cfg.User, ruser)
			passMatch := equal(s.cfg.Passwd, rpasswd)

			if userMatch && passMatch {
				next.ServeHTTP(w, r)
				return
			}
		}

		w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

// requireAPIKey lets a request through only with the configured API key.
// With no key configured, nothing gets through.
func (s *Server) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := r.Header[http.CanonicalHeaderKey(APIKeyHeader)]
		if !ok || s.cfg.APIKey == "" || !equal(s.cfg.APIKey, key[0]) {
			problem(w, http.StatusUnauthorized, "missing or invalid "+APIKeyHeader)
			return
		}
		next(w, r)
	}
}
