package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/truetimehq/truetime-proxy/internal/config"
	"github.com/truetimehq/truetime-proxy/internal/health"
	"github.com/truetimehq/truetime-proxy/internal/middleware"
	"github.com/truetimehq/truetime-proxy/internal/observe"
	"github.com/truetimehq/truetime-proxy/internal/proxy"
	"github.com/truetimehq/truetime-proxy/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := observe.NewLogger(observe.ParseLevel(cfg.LogLevel))
	slog.SetDefault(logger)

	metrics := observe.NewMetrics(prometheus.DefaultRegisterer)

	base := proxy.NormalizeBaseURL(cfg.BackendURL, logger)
	if base == nil {
		logger.Warn("backend URL missing or invalid; /api will answer 500 until TRUETIME_BACKEND_URL is set")
	} else {
		logger.Info("forwarding to backend", "base", base.String())
	}

	p := proxy.New(proxy.Config{
		BaseURL:         base,
		UpstreamTimeout: cfg.UpstreamTimeout,
		Logger:          logger,
		Metrics:         metrics,
	})

	var prober *health.Prober
	if base != nil {
		prober = health.NewProber(base.String(), health.Config{
			Interval: cfg.HealthInterval,
		}, logger, metrics)
	}

	chain := middleware.Chain(
		middleware.Tracing(),
		middleware.Logging(logger),
		middleware.Metrics(metrics),
	)

	mux := http.NewServeMux()
	mux.Handle("/api", chain(p))
	mux.Handle("/api/", chain(p))
	mux.Handle("/healthz", health.Handler(prober))
	mux.Handle("/metrics", observe.Handler())

	srv := server.New(server.Config{
		Addr:         cfg.ListenAddr,
		Handler:      mux,
		DrainTimeout: cfg.DrainTimeout,
		Logger:       logger,
	})
	if prober != nil {
		srv.RegisterCloser(prober)
	}

	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
