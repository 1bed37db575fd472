package proxy

import (
	"net/url"
	"strings"
)

// pathSegments normalizes the routing layer's path value into an ordered
// list of segments. The mount point may hand us a single string
// ("employees/42"), an already-split list, or nothing at all; empty and
// whitespace-only entries are dropped in every case.
func pathSegments(v any) []string {
	switch p := v.(type) {
	case nil:
		return nil
	case string:
		return splitSegments(p)
	case []string:
		var out []string
		for _, s := range p {
			s = strings.TrimSpace(strings.Trim(s, "/"))
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// buildTarget maps the forwarded path segments and the inbound request's
// raw URL onto the backend base.
//
// The query string is recovered byte-for-byte from the first '?' of the
// raw inbound URL rather than re-encoded from parsed parameters, so the
// client's exact encoding, parameter order, and repeated keys survive.
func buildTarget(base *url.URL, segments []string, rawURL string) string {
	target := base.String()
	if len(segments) > 0 {
		target += "/" + strings.Join(segments, "/")
	}
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		target += rawURL[i:]
	}
	return target
}
