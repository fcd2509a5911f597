package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"scanbatch-rest-api/pkg/apierror"
)

// Recovery turns a handler panic into a 500 so the server keeps serving.
// http.ErrAbortHandler is re-raised; net/http uses it to abort a response silently.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			log.Printf("PANIC request_id=%s %s %s: %v\n%s",
				GetRequestID(r.Context()), r.Method, r.URL.Path, rec, debug.Stack())
			writeError(w, apierror.InternalError("internal server error"))
		}()

		next.ServeHTTP(w, r)
	})
}
