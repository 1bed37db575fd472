package proxy

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/truetimehq/truetime-proxy/internal/observe"
)

const (
	allowedMethods       = "GET,POST,PUT,PATCH,DELETE,OPTIONS"
	defaultAllowHeaders  = "authorization,content-type"
	preflightMaxAge      = "86400"
	defaultUpstreamLimit = 30 * time.Second
)

// Config holds everything the handler needs, resolved once at startup.
type Config struct {
	// BaseURL is the normalized backend API root (see NormalizeBaseURL).
	// nil means the proxy is unconfigured and every request gets a 500
	// envelope telling the operator to set TRUETIME_BACKEND_URL.
	BaseURL *url.URL

	// Mount is the inbound path prefix; segments after it become the
	// forwarded path. Defaults to "/api".
	Mount string

	// UpstreamTimeout bounds the single upstream attempt. There is no
	// retry: a failed attempt surfaces as 502 immediately.
	UpstreamTimeout time.Duration

	// Client overrides the upstream HTTP client, mainly for tests.
	Client *http.Client

	Logger  *slog.Logger
	Metrics *observe.Metrics
}

// Proxy relays requests under its mount point to the Truetime backend,
// verbatim in both directions. It is stateless per request; concurrent
// requests share only the immutable config and the HTTP client.
type Proxy struct {
	base    *url.URL
	mount   string
	client  *http.Client
	logger  *slog.Logger
	metrics *observe.Metrics
}

// New builds the proxy handler. A nil cfg.BaseURL is accepted: the proxy
// must start and answer rather than crash when misconfigured.
func New(cfg Config) *Proxy {
	if cfg.Mount == "" {
		cfg.Mount = "/api"
	}
	if cfg.UpstreamTimeout == 0 {
		cfg.UpstreamTimeout = defaultUpstreamLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{
			Timeout: cfg.UpstreamTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		}
	}
	return &Proxy{
		base:    cfg.BaseURL,
		mount:   strings.TrimSuffix(cfg.Mount, "/"),
		client:  cfg.Client,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Browser preflight is answered locally, never forwarded.
	if r.Method == http.MethodOptions {
		p.preflight(w, r)
		return
	}

	if p.base == nil {
		p.countError("config")
		p.writeError(w, r, http.StatusInternalServerError,
			"backend URL is not configured; set TRUETIME_BACKEND_URL to the Truetime API root")
		return
	}

	// Forwarding to ourselves would recurse until the connection pool
	// starves. An empty inbound host cannot be compared, so it falls
	// through to forwarding.
	if r.Host != "" && strings.EqualFold(r.Host, p.base.Host) {
		p.countError("loop")
		p.logger.Error("proxy loop detected", "host", r.Host, "backend", p.base.Host)
		p.writeError(w, r, http.StatusInternalServerError,
			"backend URL points at this proxy; requests would loop forever")
		return
	}

	segments := pathSegments(strings.TrimPrefix(r.URL.Path, p.mount))
	target := buildTarget(p.base, segments, r.RequestURI)

	body, err := readBody(r)
	if err != nil {
		p.countError("upstream")
		p.logger.Error("reading request body failed", "error", err)
		p.writeError(w, r, http.StatusBadGateway, "failed to read request body")
		return
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, bodyReader)
	if err != nil {
		p.countError("upstream")
		p.logger.Error("building upstream request failed", "target", target, "error", err)
		p.writeError(w, r, http.StatusBadGateway, "failed to build upstream request")
		return
	}
	ForwardHeaders(r.Header, req.Header)

	resp, err := p.client.Do(req)
	if err != nil {
		p.countError("upstream")
		p.logger.Error("upstream request failed", "target", target, "error", err)
		p.writeError(w, r, http.StatusBadGateway, "backend is unreachable")
		return
	}
	defer resp.Body.Close()

	p.relay(w, r, resp)
}

// preflight answers OPTIONS with the CORS negotiation headers. The allowed
// origin echoes the caller, and the allowed headers echo whatever the
// browser asked for.
func (p *Proxy) preflight(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = "*"
	}
	allowHeaders := r.Header.Get("Access-Control-Request-Headers")
	if allowHeaders == "" {
		allowHeaders = defaultAllowHeaders
	}

	h := w.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Methods", allowedMethods)
	h.Set("Access-Control-Allow-Headers", allowHeaders)
	h.Set("Access-Control-Max-Age", preflightMaxAge)
	w.WriteHeader(http.StatusNoContent)
}

// relay copies the upstream response to the client unchanged: status
// verbatim, headers verbatim except Transfer-Encoding (the outbound
// transport recomputes it; copying it corrupts the response), body as
// raw bytes with no re-encoding.
func (p *Proxy) relay(w http.ResponseWriter, r *http.Request, resp *http.Response) {
	// Buffer fully before writing anything, so an upstream failure
	// mid-body still yields a clean 502 instead of a truncated reply.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.countError("upstream")
		p.logger.Error("reading upstream response failed", "error", err)
		p.writeError(w, r, http.StatusBadGateway, "backend response could not be read")
		return
	}

	h := w.Header()
	for name, values := range resp.Header {
		if strings.EqualFold(name, "Transfer-Encoding") {
			continue
		}
		for _, v := range values {
			h.Add(name, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	w.Write(body)
}

// writeError emits the handler-originated JSON envelope. It carries a CORS
// origin header so the dashboard can read the diagnostic cross-origin.
func (p *Proxy) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = "*"
	}
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Access-Control-Allow-Origin", origin)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (p *Proxy) countError(reason string) {
	if p.metrics != nil {
		p.metrics.ErrorsTotal.WithLabelValues(reason).Inc()
	}
}
