// Package metrics exposes Prometheus collectors for the HTTP surface and the
// share funnel. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	shareAccess  *prometheus.CounterVec
	tracked      *prometheus.CounterVec
	uploadBytes  prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry: reg,
		httpRequests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "deckshare_http_requests_total",
				Help: "HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deckshare_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		shareAccess: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "deckshare_share_access_total",
				Help: "Share admission decisions by outcome",
			},
			[]string{"outcome"},
		),
		tracked: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "deckshare_tracked_actions_total",
				Help: "Visitor actions recorded by action type",
			},
			[]string{"action"},
		),
		uploadBytes: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "deckshare_upload_bytes_total",
				Help: "Bytes accepted into the blob store",
			},
		),
	}
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ShareAccess counts one admission outcome: granted, not_found, expired,
// password_required, invalid_password or forbidden.
func (m *Metrics) ShareAccess(outcome string) {
	if m == nil {
		return
	}
	m.shareAccess.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Tracked(action string) {
	if m == nil {
		return
	}
	m.tracked.WithLabelValues(action).Inc()
}

func (m *Metrics) Uploaded(bytes int64) {
	if m == nil || bytes <= 0 {
		return
	}
	m.uploadBytes.Add(float64(bytes))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
