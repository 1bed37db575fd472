package health

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/truetimehq/truetime-proxy/internal/observe"
)

// Status represents backend reachability as seen from the proxy.
type Status int

const (
	StatusUnknown Status = iota
	StatusReachable
	StatusUnreachable
)

func (s Status) String() string {
	switch s {
	case StatusReachable:
		return "reachable"
	case StatusUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Prober periodically probes the backend API root. Any HTTP response at
// all counts as reachable: a 4xx/5xx is still the backend answering, and
// the relay treats those as normal responses, not proxy failures. Only
// transport-level errors count against the backend.
type Prober struct {
	mu                   sync.RWMutex
	status               Status
	consecutiveSuccesses int
	consecutiveFailures  int

	target             string
	interval           time.Duration
	healthyThreshold   int
	unhealthyThreshold int

	client  *http.Client
	logger  *slog.Logger
	metrics *observe.Metrics
	ctx     context.Context
	cancel  context.CancelFunc
}

// Config holds probe configuration.
type Config struct {
	Interval           time.Duration // how often to probe
	Timeout            time.Duration // per-probe timeout
	HealthyThreshold   int           // consecutive successes to mark reachable
	UnhealthyThreshold int           // consecutive failures to mark unreachable
}

// NewProber creates and starts a prober against the given URL (normally
// the normalized backend base). It runs until Close.
func NewProber(target string, cfg Config, logger *slog.Logger, metrics *observe.Metrics) *Prober {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.HealthyThreshold <= 0 {
		cfg.HealthyThreshold = 1
	}
	if cfg.UnhealthyThreshold <= 0 {
		cfg.UnhealthyThreshold = 2
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Prober{
		status:             StatusUnknown,
		target:             target,
		interval:           cfg.Interval,
		healthyThreshold:   cfg.HealthyThreshold,
		unhealthyThreshold: cfg.UnhealthyThreshold,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:  logger,
		metrics: metrics,
		ctx:     ctx,
		cancel:  cancel,
	}

	go p.run()
	return p
}

// Status returns the current reachability verdict.
func (p *Prober) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Close stops the probe loop. Implements io.Closer so the server can
// register it for shutdown.
func (p *Prober) Close() error {
	p.cancel()
	return nil
}

func (p *Prober) run() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Probe immediately on startup
	p.probe()

	for {
		select {
		case <-ticker.C:
			p.probe()
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Prober) probe() {
	req, err := http.NewRequestWithContext(p.ctx, http.MethodGet, p.target, nil)
	if err != nil {
		p.record(false)
		return
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("backend probe failed", "target", p.target, "error", err)
		p.record(false)
		return
	}
	resp.Body.Close()
	p.record(true)
}

func (p *Prober) record(success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev := p.status
	if success {
		p.consecutiveSuccesses++
		p.consecutiveFailures = 0
		if p.consecutiveSuccesses >= p.healthyThreshold {
			p.status = StatusReachable
		}
	} else {
		p.consecutiveFailures++
		p.consecutiveSuccesses = 0
		if p.consecutiveFailures >= p.unhealthyThreshold {
			p.status = StatusUnreachable
		}
	}

	if p.status != prev {
		p.logger.Info("backend reachability changed",
			"target", p.target,
			"from", prev.String(),
			"to", p.status.String(),
		)
	}
	if p.metrics != nil {
		if p.status == StatusReachable {
			p.metrics.UpstreamReachable.Set(1)
		} else {
			p.metrics.UpstreamReachable.Set(0)
		}
	}
}
