package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/truetimehq/truetime-proxy/internal/observe"
)

// Metrics records per-request counters and latency. Duration includes the
// upstream round trip, since that is what the dashboard actually waits on.
func Metrics(m *observe.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rc := NewResponseCapture(w)

			next.ServeHTTP(rc, r)

			m.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rc.StatusCode)).Inc()
			m.RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
