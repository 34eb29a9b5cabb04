package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersEverything(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordApplied("replace", "exact")
	m.RecordFailed()
	m.RecordSkipped()
	m.RecordIngest(1, 1)
	m.RecordStale(1)
	m.RecordHistory("ai")

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"draftpatch_patches_applied_total",
		"draftpatch_patches_failed_total",
		"draftpatch_patches_skipped_total",
		"draftpatch_patches_ingested_total",
		"draftpatch_patches_dropped_total",
		"draftpatch_reconcile_stale_total",
		"draftpatch_resolve_matches_total",
		"draftpatch_history_entries_total",
	}, names)
}

func TestRecorders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordApplied("insert", "fuzzy")
	m.RecordApplied("insert", "exact")
	m.RecordIngest(3, 2)
	m.RecordIngest(1, 0)
	m.RecordStale(0)
	m.RecordStale(2)
	m.RecordHistory("manual")
	m.RecordHistory("manual")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PatchesApplied.WithLabelValues("insert")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResolveMatches.WithLabelValues("fuzzy")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.PatchesIngested))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PatchesDropped))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReconcileStale))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HistoryEntries.WithLabelValues("manual")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordApplied("replace", "exact")
		m.RecordFailed()
		m.RecordSkipped()
		m.RecordIngest(1, 1)
		m.RecordStale(3)
		m.RecordHistory("ai")
	})
}
