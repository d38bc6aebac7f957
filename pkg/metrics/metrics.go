// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package metrics provides Prometheus instrumentation for cuecast.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for cuecast.
type Metrics struct {
	// Connection metrics
	ActiveConnections  prometheus.Gauge
	TotalConnections   *prometheus.CounterVec
	ConnectionDuration prometheus.Histogram

	// Request metrics
	RequestsTotal *prometheus.CounterVec
	RequestSize   prometheus.Histogram
	ResponseSize  prometheus.Histogram

	// Rate limiter metrics
	RateLimitedRequests prometheus.Counter

	// Auth metrics
	AuthAttempts prometheus.Counter
	AuthFailures *prometheus.CounterVec

	// Viewer metrics
	Sessions prometheus.Gauge

	// Store metrics
	StoreEvents  *prometheus.CounterVec
	RenderFaults prometheus.Counter
}

// New creates Metrics registered with reg. A nil reg uses the default
// Prometheus registerer.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "cuecast"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		ActiveConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of currently open viewer connections",
		}),
		TotalConnections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total number of connections by final state",
		}, []string{"state"}),
		ConnectionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "connection_duration_seconds",
			Help:      "Connection duration in seconds",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300, 600},
		}),
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		RequestSize: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_size_bytes",
			Help:      "Write request body size in bytes",
			Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
		}),
		ResponseSize: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "response_size_bytes",
			Help:      "Rendered cue document size in bytes",
			Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
		}),
		RateLimitedRequests: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Total number of rate limited requests",
		}),
		AuthAttempts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Total number of write authorization attempts",
		}),
		AuthFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Total number of write authorization failures",
		}, []string{"reason"}),
		Sessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "client_sessions",
			Help:      "Number of viewer sessions seen since start",
		}),
		StoreEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_events_total",
			Help:      "Total number of state store events",
		}, []string{"event"}),
		RenderFaults: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_faults_total",
			Help:      "Total number of cue documents that failed to encode",
		}),
	}
}

// ObserveRequest counts one served request.
func (m *Metrics) ObserveRequest(method, path string, status int) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}
