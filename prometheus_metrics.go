/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package hackload

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	promRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hackload_requests_total",
		Help: "Executed tasks by label and outcome",
	}, []string{"task", "outcome"})
	promLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hackload_request_duration_seconds",
		Help:    "Task response time",
		Buckets: prometheus.DefBuckets,
	}, []string{"task"})
	promSpawnedUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hackload_spawned_users",
		Help: "Spawned simulated users",
	})

	promTickSuccessRatio = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hackload_tick_success_ratio",
		Help: "Success requests ratio",
	})
	promTickP50 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hackload_tick_p50",
		Help: "Response time 50 Percentile",
	})
	promTickP95 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hackload_tick_p95",
		Help: "Response time 95 Percentile",
	})
	promTickP99 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hackload_tick_p99",
		Help: "Response time 99 Percentile",
	})
	promTickMax = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hackload_tick_max",
		Help: "Response time MAX",
	})
	promRPS = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hackload_tick_rps",
		Help: "Requests per second rate",
	})
)

type PromReporter struct {
	srv *http.Server
	L   *Logger
}

// NewPromReporter serves /metrics on port
func NewPromReporter(port int, l *Logger) *PromReporter {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	m := &PromReporter{
		srv: &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux},
		L:   l,
	}
	go func() {
		if err := m.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.L.Errorf("prometheus endpoint failed: %s", err)
		}
	}()
	return m
}

func (m *PromReporter) reportResult(res TaskResult) {
	outcome := "success"
	if !res.DoResult.Success() {
		outcome = "failure"
	}
	promRequests.WithLabelValues(res.DoResult.RequestLabel, outcome).Inc()
	promLatency.WithLabelValues(res.DoResult.RequestLabel).Observe(res.Elapsed.Seconds())
}

func (m *PromReporter) reportTick(tm *TickMetrics) {
	promTickP50.Set(float64(tm.Metrics.Latencies.P50.Milliseconds()))
	promTickP95.Set(float64(tm.Metrics.Latencies.P95.Milliseconds()))
	promTickP99.Set(float64(tm.Metrics.Latencies.P99.Milliseconds()))
	promTickMax.Set(float64(tm.Metrics.Latencies.Max.Milliseconds()))
	promTickSuccessRatio.Set(tm.Metrics.Success)
	promRPS.Set(tm.Metrics.Rate)
}

func (m *PromReporter) setSpawnedUsers(n int) {
	promSpawnedUsers.Set(float64(n))
}

func (m *PromReporter) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.srv.Shutdown(ctx); err != nil {
		m.L.Error(err)
	}
}
