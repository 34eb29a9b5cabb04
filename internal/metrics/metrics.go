// Package metrics exposes Prometheus counters for patch application, ingestion, reconciliation and history. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "draftpatch"

// Metrics holds the session counters.
type Metrics struct {
	// PatchesApplied counts accepted patches. Labels: kind (replace, insert, delete, move).
	PatchesApplied *prometheus.CounterVec

	// PatchesFailed counts apply attempts that ended in anchor-not-found.
	PatchesFailed prometheus.Counter

	// PatchesSkipped counts patches removed without applying them.
	PatchesSkipped prometheus.Counter

	// PatchesIngested counts patches accepted into the queue.
	PatchesIngested prometheus.Counter

	// PatchesDropped counts patches rejected by validation.
	PatchesDropped prometheus.Counter

	// ReconcileStale counts patches a reconciliation pass could not re-anchor.
	ReconcileStale prometheus.Counter

	// ResolveMatches counts successful resolutions. Labels: strategy (exact, fingerprint, positional, fuzzy).
	ResolveMatches *prometheus.CounterVec

	// HistoryEntries counts recorded history entries. Labels: change_type.
	HistoryEntries *prometheus.CounterVec
}

// New creates the counters and registers them on reg. A nil reg registers on prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		PatchesApplied: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patches_applied_total",
			Help:      "Patches applied to the document, by kind",
		}, []string{"kind"}),
		PatchesFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patches_failed_total",
			Help:      "Patch applications that could not locate their target",
		}),
		PatchesSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patches_skipped_total",
			Help:      "Patches removed from the queue without being applied",
		}),
		PatchesIngested: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patches_ingested_total",
			Help:      "Patches accepted into the pending queue",
		}),
		PatchesDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patches_dropped_total",
			Help:      "Patches rejected at ingestion",
		}),
		ReconcileStale: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_stale_total",
			Help:      "Pending patches that reconciliation could not re-anchor",
		}),
		ResolveMatches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_matches_total",
			Help:      "Successful anchor resolutions, by strategy",
		}, []string{"strategy"}),
		HistoryEntries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_entries_total",
			Help:      "History entries recorded, by change type",
		}, []string{"change_type"}),
	}
}

func (m *Metrics) RecordApplied(kind, strategy string) {
	if m == nil {
		return
	}
	m.PatchesApplied.WithLabelValues(kind).Inc()
	m.ResolveMatches.WithLabelValues(strategy).Inc()
}

func (m *Metrics) RecordFailed() {
	if m == nil {
		return
	}
	m.PatchesFailed.Inc()
}

func (m *Metrics) RecordSkipped() {
	if m == nil {
		return
	}
	m.PatchesSkipped.Inc()
}

// RecordIngest records one ingestion batch.
func (m *Metrics) RecordIngest(accepted, dropped int) {
	if m == nil {
		return
	}
	m.PatchesIngested.Add(float64(accepted))
	m.PatchesDropped.Add(float64(dropped))
}

func (m *Metrics) RecordStale(n int) {
	if m == nil || n == 0 {
		return
	}
	m.ReconcileStale.Add(float64(n))
}

func (m *Metrics) RecordHistory(changeType string) {
	if m == nil {
		return
	}
	m.HistoryEntries.WithLabelValues(changeType).Inc()
}
