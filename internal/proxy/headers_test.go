package proxy

import (
	"net/http"
	"testing"
)

func TestForwardHeadersSkipsHost(t *testing.T) {
	in := http.Header{
		"Host":          {"dashboard.truetime.example"},
		"Authorization": {"Bearer token-123"},
	}
	out := http.Header{}
	ForwardHeaders(in, out)

	if got := out.Get("Host"); got != "" {
		t.Fatalf("Host forwarded as %q, want absent", got)
	}
	if got := out.Get("Authorization"); got != "Bearer token-123" {
		t.Fatalf("Authorization = %q, want forwarded verbatim", got)
	}
}

func TestForwardHeadersHostCaseInsensitive(t *testing.T) {
	// Header maps built by hand may carry non-canonical keys.
	in := http.Header{"hOsT": {"evil.example"}}
	out := http.Header{}
	ForwardHeaders(in, out)

	if len(out) != 0 {
		t.Fatalf("expected empty output, got %v", out)
	}
}

func TestForwardHeadersJoinsRepeatedValues(t *testing.T) {
	in := http.Header{"Accept": {"application/json", "text/plain"}}
	out := http.Header{}
	ForwardHeaders(in, out)

	if got := out.Get("Accept"); got != "application/json,text/plain" {
		t.Fatalf("Accept = %q, want joined with comma", got)
	}
	if n := len(out.Values("Accept")); n != 1 {
		t.Fatalf("Accept has %d values, want 1 joined value", n)
	}
}

func TestForwardHeadersSkipsEmptyValues(t *testing.T) {
	in := http.Header{
		"X-Empty":  {""},
		"X-Cookie": {"session=abc"},
	}
	out := http.Header{}
	ForwardHeaders(in, out)

	if _, ok := out["X-Empty"]; ok {
		t.Fatal("empty header forwarded")
	}
	if got := out.Get("X-Cookie"); got != "session=abc" {
		t.Fatalf("X-Cookie = %q", got)
	}
}

func TestForwardHeadersTransparent(t *testing.T) {
	// Everything besides Host passes through: cookies, custom headers,
	// even hop-ish ones. The proxy is a tunnel, not a filter.
	in := http.Header{
		"Cookie":       {"session=abc"},
		"X-Device-Key": {"fp-reader-7"},
		"User-Agent":   {"truetime-dashboard/2.1"},
	}
	out := http.Header{}
	ForwardHeaders(in, out)

	for name, want := range map[string]string{
		"Cookie":       "session=abc",
		"X-Device-Key": "fp-reader-7",
		"User-Agent":   "truetime-dashboard/2.1",
	} {
		if got := out.Get(name); got != want {
			t.Fatalf("%s = %q, want %q", name, got, want)
		}
	}
}
