package health

import (
	"encoding/json"
	"net/http"
)

// Handler serves the /healthz endpoint. The proxy itself is always "ok"
// once it can answer; the upstream field reports the prober's verdict, or
// "unknown" when no backend is configured and the prober is nil.
func Handler(p *Prober) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstream := StatusUnknown
		if p != nil {
			upstream = p.Status()
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":   "ok",
			"upstream": upstream.String(),
		})
	})
}
