/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package hackload

import (
	"time"

	"github.com/streadway/quantile"
)

type Metrics struct {
	// Latencies holds computed request latency Metrics.
	Latencies LatencyMetrics `json:"latencies"`
	// Requests is the total number of requests executed.
	Requests uint64 `json:"requests"`
	// Rate is the rate of requests per second, set for ticks.
	Rate float64 `json:"rate"`
	// Failures is the total number of failed requests.
	Failures uint64 `json:"failures"`
	// Success is the percentage of non-error responses.
	Success float64 `json:"success"`

	errorsCount int64
	success     int64
	latencies   *quantile.Estimator
}

// LatencyMetrics holds computed request latency Metrics.
type LatencyMetrics struct {
	// Total is the total latency sum of all requests in an attack.
	Total time.Duration `json:"total"`
	// Mean is the mean request latency.
	Mean time.Duration `json:"mean"`
	// P50 is the 50th percentile request latency.
	P50 time.Duration `json:"50th"`
	// P95 is the 95th percentile request latency.
	P95 time.Duration `json:"95th"`
	// P99 is the 99th percentile request latency.
	P99 time.Duration `json:"99th"`
	// Max is the maximum observed request latency.
	Max time.Duration `json:"max"`
}

func NewMetrics() *Metrics {
	m := &Metrics{}
	m.init()
	return m
}

func (m Metrics) successLogEntry() float64 {
	s := m.Success * 100.0
	if s < 0 {
		return 0
	}
	return s
}

// nolint
func (m Metrics) meanLogEntry() time.Duration {
	lm := m.Latencies.Mean
	if lm < 0 {
		return time.Duration(0)
	}
	return lm
}

func (m *Metrics) add(r TaskResult) {
	m.Requests++
	m.Latencies.Total += r.Elapsed
	m.latencies.Add(float64(r.Elapsed))
	if r.Elapsed > m.Latencies.Max {
		m.Latencies.Max = r.Elapsed
	}
	if r.DoResult.Error != "" {
		m.errorsCount++
	} else {
		m.success++
	}
}

// update computes derived summary Metrics which don't need to be Run on every add call.
func (m *Metrics) update() {
	if m.Requests == 0 {
		return
	}
	fRequests := float64(m.Requests)
	m.Failures = uint64(m.errorsCount)
	m.Success = float64(m.success) / fRequests
	m.Latencies.Mean = time.Duration(float64(m.Latencies.Total) / fRequests)
	m.Latencies.P50 = time.Duration(m.latencies.Get(0.50))
	m.Latencies.P95 = time.Duration(m.latencies.Get(0.95))
	m.Latencies.P99 = time.Duration(m.latencies.Get(0.99))
}

func (m *Metrics) init() {
	if m.latencies == nil {
		m.latencies = quantile.New(
			quantile.Known(0.50, 0.01),
			quantile.Known(0.95, 0.001),
			quantile.Known(0.99, 0.0005),
		)
	}
}
