package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/endpointkit/logger"
)

const slowRequest = 500 * time.Millisecond

var probePaths = map[string]bool{
	"/health":    true,
	"/liveness":  true,
	"/readiness": true,
	"/metrics":   true,
}

// RequestLogger logs every request with method, path, status and duration.
// Probe paths are skipped. 5xx logs at error, 4xx at warn, the rest at debug.
func RequestLogger(log *logger.Logger) Middleware {
	log = logger.OrGlobal(log)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbe(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			fields := logger.Fields(
				"method", r.Method,
				logger.FieldPath, r.URL.Path,
				"status", sw.status,
				"duration_ms", duration.Milliseconds(),
			)
			if id := r.Header.Get(RequestIDHeader); id != "" {
				fields[logger.FieldRequestID] = id
			}
			if duration > slowRequest {
				fields["slow"] = true
			}

			switch {
			case sw.status >= 500:
				log.Error("Request completed", fields)
			case sw.status >= 400:
				log.Warn("Request completed", fields)
			default:
				log.Debug("Request completed", fields)
			}
		})
	}
}

// isProbe matches probe paths at the root or under any prefix.
func isProbe(path string) bool {
	if probePaths[path] {
		return true
	}
	if i := strings.LastIndex(path, "/"); i > 0 {
		return probePaths[path[i:]]
	}
	return false
}
