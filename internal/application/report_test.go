package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"pv-hotspot/internal/domain/entity"
	"pv-hotspot/internal/domain/port"
	"pv-hotspot/internal/infrastructure/storage"
)

func TestNormalizeFaultID(t *testing.T) {
	tests := map[string]string{
		"F-0007":  "F-0007",
		" f-0012": "F-0012",
		"7":       "F-0007",
		"12345":   "F-12345",
		"abc":     "ABC",
		"":        "",
	}
	for in, want := range tests {
		require.Equal(t, want, NormalizeFaultID(in), in)
	}
}

func TestReportService(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryFaultRepository()
	svc := NewReportService(repo)

	_, err := svc.Latest(ctx)
	require.ErrorIs(t, err, port.ErrNotFound)
	_, err = svc.Top(ctx, TopLimit)
	require.ErrorIs(t, err, port.ErrNotFound)

	faults := make([]entity.Fault, 7)
	for i := range faults {
		faults[i] = entity.Fault{FaultID: entity.FormatFaultID(i + 1), Priority: float64(100 - i)}
	}
	require.NoError(t, repo.SaveRun(ctx, &entity.Report{RunID: "r1", Faults: faults}))

	top, err := svc.Top(ctx, TopLimit)
	require.NoError(t, err)
	require.Len(t, top, 5)
	require.Equal(t, "F-0001", top[0].FaultID)

	f, err := svc.Fault(ctx, "3")
	require.NoError(t, err)
	require.Equal(t, 98.0, f.Priority)

	_, err = svc.Fault(ctx, "F-0099")
	require.ErrorIs(t, err, port.ErrNotFound)
}
