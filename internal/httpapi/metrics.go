// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service-level collectors exposed on /metrics.
type Metrics struct {
	ScansStarted  prometheus.Counter
	ScansFinished *prometheus.CounterVec
	ScanDuration  prometheus.Histogram
}

// NewMetrics registers the collectors on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ScansStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "skillguard_scans_started_total",
			Help: "Number of scan attempts started.",
		}),
		ScansFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "skillguard_scans_finished_total",
			Help: "Number of scan attempts finished, by terminal status.",
		}, []string{"status"}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "skillguard_scan_duration_seconds",
			Help:    "Wall-clock duration of completed scan attempts.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}
