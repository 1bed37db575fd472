package middleware

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
)

const traceHeader = "X-Request-ID"

type traceKey struct{}

// Tracing generates or propagates a request ID. A client-supplied
// X-Request-ID is reused, otherwise a fresh one is generated. The ID is
// stored in the context, set on the request headers (so the proxy forwards
// it to the backend) and echoed on the response.
func Tracing() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(traceHeader)
			if traceID == "" {
				b := make([]byte, 16)
				rand.Read(b)
				traceID = fmt.Sprintf("%x", b)
			}

			ctx := context.WithValue(r.Context(), traceKey{}, traceID)
			r = r.WithContext(ctx)
			r.Header.Set(traceHeader, traceID)
			w.Header().Set(traceHeader, traceID)

			next.ServeHTTP(w, r)
		})
	}
}

// TraceIDFrom retrieves the trace ID from context, or "" if absent.
func TraceIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(traceKey{}).(string); ok {
		return id
	}
	return ""
}
