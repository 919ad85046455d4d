// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NavMetrics instruments synchronization, navigation building and the
// navigation cache. A nil *NavMetrics records nothing.
type NavMetrics struct {
	SyncRuns       *prometheus.CounterVec
	SyncedEntities *prometheus.CounterVec
	BuildDuration  *prometheus.HistogramVec
	CacheLookups   *prometheus.CounterVec
}

func NewNavMetrics(reg prometheus.Registerer) *NavMetrics {
	m := &NavMetrics{
		SyncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Tree synchronization runs by scope and result.",
		}, []string{"scope", "result"}),
		SyncedEntities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synced_entities_total",
			Help:      "Leaf nodes created or updated by synchronization.",
		}, []string{"scope"}),
		BuildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Time spent building navigation data from stored nodes.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"scope"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Navigation cache lookups by result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.SyncRuns, m.SyncedEntities, m.BuildDuration, m.CacheLookups)
	}
	return m
}

func (m *NavMetrics) ObserveSync(scope string, synced int, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SyncRuns.WithLabelValues(scope, result).Inc()
	if synced > 0 {
		m.SyncedEntities.WithLabelValues(scope).Add(float64(synced))
	}
}

func (m *NavMetrics) ObserveBuild(scope string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BuildDuration.WithLabelValues(scope).Observe(elapsed.Seconds())
}

func (m *NavMetrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}
