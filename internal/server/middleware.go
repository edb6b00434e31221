package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// requestLogger logs one line per request once the handler returns.
func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry := log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   status,
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start),
				"session":  ww.Header().Get("X-Session-Id"),
			})
			if status >= http.StatusInternalServerError {
				entry.Warn("request failed")
				return
			}
			entry.Debug("request")
		})
	}
}
