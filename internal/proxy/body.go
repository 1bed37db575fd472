package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// readBody materializes the inbound request payload for forwarding.
//
// GET and HEAD requests (and requests with no method at all) never carry a
// forwarded body, so the absent marker (nil) is returned regardless of
// what the inbound object holds. For everything else the stream is drained
// to completion; a stream that yields zero bytes also maps to the absent
// marker rather than an empty buffer. No timeout is imposed here beyond
// the server's own read deadline.
func readBody(r *http.Request) ([]byte, error) {
	switch r.Method {
	case http.MethodGet, http.MethodHead, "":
		return nil, nil
	}
	if r.Body == nil {
		return nil, nil
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(b) == 0 {
		return nil, nil
	}
	return b, nil
}

// EncodeBody converts an already-decoded payload into transport-ready
// bytes, for callers that invoke the proxy programmatically instead of
// through ServeHTTP (where bodies arrive as raw streams).
//
//   - []byte passes through unchanged
//   - string is encoded directly
//   - application/json payloads are re-serialized
//   - application/x-www-form-urlencoded payloads are re-encoded from
//     url.Values, map[string][]string, or map[string]string
//   - anything else is stringified best-effort, which may not reproduce
//     the original bytes exactly
//
// Returns false only for a nil body.
func EncodeBody(body any, contentType string) ([]byte, bool) {
	if body == nil {
		return nil, false
	}

	switch b := body.(type) {
	case []byte:
		return b, true
	case string:
		return []byte(b), true
	}

	mediaType := contentType
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	switch mediaType {
	case "application/json":
		b, err := json.Marshal(body)
		if err != nil {
			return []byte(fmt.Sprint(body)), true
		}
		return b, true
	case "application/x-www-form-urlencoded":
		switch form := body.(type) {
		case url.Values:
			return []byte(form.Encode()), true
		case map[string][]string:
			return []byte(url.Values(form).Encode()), true
		case map[string]string:
			values := make(url.Values, len(form))
			for k, v := range form {
				values.Set(k, v)
			}
			return []byte(values.Encode()), true
		}
	}

	return []byte(fmt.Sprint(body)), true
}
