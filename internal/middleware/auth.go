package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/tabula/tabula/internal/models"
)

const apiKeyCookie = "api_key"

var publicPaths = map[string]bool{
	"/":       true,
	"/health": true,
}

// Auth rejects requests without a configured API key: 401 when no key is
// sent, 403 when it matches none. The key is read from headerName, then from
// the api_key cookie.
func Auth(apiKeys []string, headerName string) func(http.Handler) http.Handler {
	keys := compileKeys(apiKeys)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := APIKeyFromRequest(r, headerName)
			if key == "" {
				models.WriteError(w, http.StatusUnauthorized, "API key required")
				return
			}
			if !knownKey(keys, key) {
				log.Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Str("request_id", RequestIDFromContext(r.Context())).
					Msg("rejected API key")
				models.WriteError(w, http.StatusForbidden, "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// APIKeyFromRequest returns the key sent in headerName or, failing that, in
// the api_key cookie.
func APIKeyFromRequest(r *http.Request, headerName string) string {
	if key := r.Header.Get(headerName); key != "" {
		return key
	}
	if c, err := r.Cookie(apiKeyCookie); err == nil {
		return c.Value
	}
	return ""
}

// KeyIdentity returns a function reporting the caller's API key when it is
// one of apiKeys, and "" for a missing or unknown key.
func KeyIdentity(apiKeys []string, headerName string) func(*http.Request) string {
	keys := compileKeys(apiKeys)
	return func(r *http.Request) string {
		key := APIKeyFromRequest(r, headerName)
		if key == "" || !knownKey(keys, key) {
			return ""
		}
		return key
	}
}

func compileKeys(apiKeys []string) [][]byte {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}
	return keys
}

func knownKey(keys [][]byte, key string) bool {
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, []byte(key))
	}
	return found == 1
}
