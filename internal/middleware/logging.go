package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/safetybuddy/backend/pkg/log"
)

// Logging records one structured line per request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Infof("%s %s status=%d bytes=%d duration=%s",
			r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start))
	})
}
