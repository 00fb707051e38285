// Package metrics holds the Prometheus collectors for interaction handling and
// outbound Discord API traffic. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "supportdesk"

type Metrics struct {
	registry *prometheus.Registry

	Interactions    *prometheus.CounterVec
	Tasks           *prometheus.CounterVec
	DiscordRequests *prometheus.CounterVec
	DiscordLatency  *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Interactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interactions_total",
				Help:      "Inbound interactions by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		Tasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tasks_total",
				Help:      "Deferred interaction tasks by outcome",
			},
			[]string{"outcome"},
		),
		DiscordRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "discord_requests_total",
				Help:      "Discord REST requests by route and status",
			},
			[]string{"route", "status"},
		),
		DiscordLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "discord_request_duration_seconds",
				Help:      "Discord REST request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Interactions,
		m.Tasks,
		m.DiscordRequests,
		m.DiscordLatency,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveInteraction(kind, outcome string) {
	if m == nil {
		return
	}
	m.Interactions.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveTask(outcome string) {
	if m == nil {
		return
	}
	m.Tasks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDiscordRequest(route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.DiscordRequests.WithLabelValues(route, status).Inc()
	m.DiscordLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}
