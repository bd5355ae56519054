// Package metrics counts upstream calls made on behalf of dashboard users
// and exposes them for Prometheus.
//
//	dashboard_upstream_requests_total{service,result}
//	dashboard_upstream_request_seconds{service}
//	go_* and process_* runtime metrics
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sentiment-dashboard/internal/domain"
	"sentiment-dashboard/internal/provider"
	"sentiment-dashboard/internal/service"
)

const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_upstream_requests_total",
				Help: "Calls to the analysis and stats APIs by result",
			},
			[]string{"service", "result"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dashboard_upstream_request_seconds",
				Help:    "Latency of calls to the analysis and stats APIs",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		),
	}
	m.registry.MustRegister(
		m.requests,
		m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observe(svc string, start time.Time, err error) {
	m.latency.WithLabelValues(svc).Observe(time.Since(start).Seconds())
	m.requests.WithLabelValues(svc, resultOf(err)).Inc()
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, provider.ErrNotFound):
		return ResultNotFound
	default:
		return ResultError
	}
}

// Analyzer wraps an analysis client so every call is counted.
func (m *Metrics) Analyzer(next service.Analyzer) service.Analyzer {
	return &analyzer{next: next, m: m}
}

type analyzer struct {
	next service.Analyzer
	m    *Metrics
}

func (a *analyzer) Analyze(ctx context.Context, id string) (*domain.Analysis, error) {
	start := time.Now()
	res, err := a.next.Analyze(ctx, id)
	a.m.observe("analysis", start, err)
	return res, err
}

func (m *Metrics) Stats(next service.StatsFetcher) service.StatsFetcher {
	return &stats{next: next, m: m}
}

type stats struct {
	next service.StatsFetcher
	m    *Metrics
}

func (s *stats) GlobalStats(ctx context.Context) (*domain.MarketSnapshot, error) {
	start := time.Now()
	res, err := s.next.GlobalStats(ctx)
	s.m.observe("stats", start, err)
	return res, err
}
