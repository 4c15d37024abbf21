package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pv-hotspot/internal/domain/entity"
)

func gauge(t *testing.T, r *Recorder, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := r.Registry().Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	next:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			return m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func TestRecorder_ObserveReport(t *testing.T) {
	r := NewRecorder()
	started := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	r.ObserveTile(20 * time.Millisecond)
	r.ObserveReport(&entity.Report{
		StartedAt:      started,
		FinishedAt:     started.Add(90 * time.Second),
		TilesTotal:     10,
		TilesSkipped:   2,
		Detections:     7,
		MergePasses:    2,
		AnnualKWhLoss:  126.9,
		Rejected:       map[entity.RejectReason]int{entity.RejectBorder: 4},
		SeverityCounts: map[entity.Severity]int{entity.SeverityCritical: 1},
	})

	require.Equal(t, 8.0, gauge(t, r, "pvhotspot_tiles", map[string]string{"outcome": "processed"}))
	require.Equal(t, 2.0, gauge(t, r, "pvhotspot_tiles", map[string]string{"outcome": "skipped"}))
	require.Equal(t, 7.0, gauge(t, r, "pvhotspot_detections", nil))
	require.Equal(t, 4.0, gauge(t, r, "pvhotspot_components_rejected", map[string]string{"reason": "border"}))
	require.Equal(t, 1.0, gauge(t, r, "pvhotspot_faults", map[string]string{"severity": "CRITICAL"}))
	require.Equal(t, 0.0, gauge(t, r, "pvhotspot_faults", map[string]string{"severity": "LOW"}))
	require.Equal(t, 90.0, gauge(t, r, "pvhotspot_run_duration_seconds", nil))
	require.Equal(t, 126.9, gauge(t, r, "pvhotspot_annual_kwh_loss", nil))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveTile(time.Second)
	r.ObserveReport(&entity.Report{TilesTotal: 1})

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "pvhotspot_tile_extract_duration_seconds_count 1")
	require.Contains(t, string(data), `pvhotspot_tiles{outcome="processed"} 1`)
}
