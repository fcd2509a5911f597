package middleware

import (
	"crypto/subtle"
	"net/http"

	"scanbatch-rest-api/pkg/apierror"
)

// LoginKeyHeader carries the admin login key.
const LoginKeyHeader = "X-Login-Key"

// NewAdminKeyMiddleware guards admin routes with a shared login key.
// An empty key leaves the routes open, which suits local development.
func NewAdminKeyMiddleware(loginKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if loginKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(LoginKeyHeader)
			if provided == "" {
				writeError(w, apierror.Unauthorized("X-Login-Key header required"))
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(loginKey)) != 1 {
				writeError(w, apierror.Unauthorized("Invalid login key"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	w.Write(err.ToJSON())
}
