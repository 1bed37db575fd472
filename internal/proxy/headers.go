package proxy

import (
	"net/http"
	"strings"
)

// ForwardHeaders copies inbound request headers onto the outbound request.
//
// The proxy is a transparent tunnel, not a sanitizing boundary: everything
// the client sent is forwarded, including Authorization, cookies, and
// custom headers. The single exception is Host, which must reflect the
// backend, not the SPA origin; the transport sets it from the target URL.
// Repeated headers are joined with "," into one value. Empty values are
// dropped.
func ForwardHeaders(in, out http.Header) {
	for name, values := range in {
		if strings.EqualFold(name, "Host") {
			continue
		}
		v := joinValues(values)
		if v == "" {
			continue
		}
		out.Set(name, v)
	}
}

func joinValues(values []string) string {
	var nonEmpty []string
	for _, v := range values {
		if v != "" {
			nonEmpty = append(nonEmpty, v)
		}
	}
	return strings.Join(nonEmpty, ",")
}
