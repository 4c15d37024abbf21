package scoring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pv-hotspot/internal/domain/entity"
)

func TestPriority(t *testing.T) {
	f := entity.Fault{Severity: entity.SeverityHigh, Confidence: 50, PixelArea: 100}
	require.Equal(t, 346.13, Priority(f))

	f.Severity = "UNKNOWN"
	require.Equal(t, 230.76, Priority(f))
}

func TestPriority_MonotonicInSeverity(t *testing.T) {
	prev := -1.0
	for _, s := range entity.Severities() {
		p := Priority(entity.Fault{Severity: s, Confidence: 42.5, PixelArea: 310})
		require.Greater(t, p, prev, "severity %s", s)
		prev = p
	}
}

func TestRank_SortsAndClassifies(t *testing.T) {
	faults := []entity.Fault{
		{FaultID: "F-0000", Severity: entity.SeverityLow, Confidence: 30, PixelArea: 150, DeltaTMax: 15},
		{FaultID: "F-0001", Severity: entity.SeverityCritical, Confidence: 80, PixelArea: 700, DeltaTMax: 45},
		{FaultID: "F-0002", Severity: entity.SeverityLow, Confidence: 30, PixelArea: 150, DeltaTMax: 16},
	}
	ranked := Rank(faults)

	require.Equal(t, []string{"F-0001", "F-0000", "F-0002"},
		[]string{ranked[0].FaultID, ranked[1].FaultID, ranked[2].FaultID})
	require.Equal(t, entity.FaultJunctionBoxHotspot, ranked[0].FaultType)
	require.Equal(t, entity.FaultPanelHotspot, ranked[1].FaultType)
	require.Equal(t, ranked[1].Priority, ranked[2].Priority)

	// исходный срез не меняется
	require.Empty(t, faults[0].FaultType)
	require.Zero(t, faults[1].Priority)
}
