package proxy

import (
	"log/slog"
	"net/url"
	"strings"
)

// NormalizeBaseURL derives the canonical backend API root from a raw
// configured URL. The result always has a scheme and host, a path ending
// exactly at "/api", no query, no fragment, and no trailing slash.
//
// Rules over the path segments:
//   - no "api" segment: "api" is appended ("/foo" -> "/foo/api")
//   - an "api" segment exists: the path is truncated at the first one
//     ("/v2/api/extra" -> "/v2/api"); later "api" segments are ignored
//
// Returns nil for an empty raw value, and nil after a logged diagnostic
// for anything that does not parse into a usable absolute URL. Callers
// must treat nil as "proxy unconfigured", never as a fatal condition.
func NormalizeBaseURL(raw string, logger *slog.Logger) *url.URL {
	if logger == nil {
		logger = slog.Default()
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		logger.Warn("backend URL does not parse", "url", raw, "error", err)
		return nil
	}
	if u.Scheme == "" || u.Host == "" {
		logger.Warn("backend URL missing scheme or host", "url", raw)
		return nil
	}

	segments := splitSegments(u.Path)

	apiAt := -1
	for i, s := range segments {
		if s == "api" {
			apiAt = i
			break
		}
	}
	if apiAt >= 0 {
		segments = segments[:apiAt+1]
	} else {
		segments = append(segments, "api")
	}

	u.Path = "/" + strings.Join(segments, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""

	return u
}

// splitSegments breaks a URL path into its non-empty, trimmed segments.
func splitSegments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
