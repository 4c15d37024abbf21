package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pv-hotspot/internal/domain/entity"
	"pv-hotspot/internal/domain/port"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleReport(runID string) *entity.Report {
	started := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	return &entity.Report{
		RunID:         runID,
		StartedAt:     started,
		FinishedAt:    started.Add(42 * time.Second),
		TilesTotal:    12,
		TilesSkipped:  1,
		Detections:    5,
		MergePasses:   2,
		Reported:      1,
		AnnualKWhLoss: 126.9,
		Rejected:      map[entity.RejectReason]int{entity.RejectBorder: 3},
		SkipReasons:   map[string]int{"load": 1},
		SeverityCounts: map[entity.Severity]int{
			entity.SeverityCritical: 1,
			entity.SeverityLow:      1,
		},
		Faults: []entity.Fault{
			{
				FaultID:       "F-0002",
				FaultType:     entity.FaultCellHotspot,
				Severity:      entity.SeverityCritical,
				Confidence:    81.3,
				DeltaTMax:     30.52,
				ZScoreMax:     12,
				PixelArea:     356,
				MergeCount:    2,
				LossPct:       11.27,
				AnnualKWhLoss: 100.4,
				Lon:           12.4951,
				Lat:           41.9022,
				BBox:          entity.BBox{XMin: 10, YMin: 12, XMax: 30, YMax: 31},
				Tiles:         []int{0, 1},
				Priority:      346.13,
			},
			{
				FaultID:    "F-0003",
				FaultType:  entity.FaultPanelHotspot,
				Severity:   entity.SeverityLow,
				PixelArea:  500,
				MergeCount: 1,
				Tiles:      []int{4},
				Priority:   26.5,
			},
		},
	}
}

func TestRepository_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	want := sampleReport("run-1")
	require.NoError(t, repo.SaveRun(ctx, want))

	got, err := repo.LatestRun(ctx)
	require.NoError(t, err)

	assert.Equal(t, want.RunID, got.RunID)
	assert.True(t, want.StartedAt.Equal(got.StartedAt))
	assert.True(t, want.FinishedAt.Equal(got.FinishedAt))
	assert.Equal(t, want.TilesTotal, got.TilesTotal)
	assert.Equal(t, want.TilesSkipped, got.TilesSkipped)
	assert.Equal(t, want.MergePasses, got.MergePasses)
	assert.Equal(t, want.AnnualKWhLoss, got.AnnualKWhLoss)
	assert.Equal(t, want.Rejected, got.Rejected)
	assert.Equal(t, want.SkipReasons, got.SkipReasons)
	assert.Equal(t, want.SeverityCounts, got.SeverityCounts)
	assert.Equal(t, want.Faults, got.Faults)
}

func TestRepository_LatestRunOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.LatestRun(ctx)
	require.ErrorIs(t, err, port.ErrNotFound)

	require.NoError(t, repo.SaveRun(ctx, sampleReport("run-1")))
	require.NoError(t, repo.SaveRun(ctx, sampleReport("run-2")))

	got, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", got.RunID)

	// повторный id отклоняется, транзакция откатывается целиком
	assert.Error(t, repo.SaveRun(ctx, sampleReport("run-1")))
	got, err = repo.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-2", got.RunID)
	assert.Len(t, got.Faults, 2)
}

func TestRepository_GetFault(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.GetFault(ctx, "", "F-0002")
	require.ErrorIs(t, err, port.ErrNotFound)

	require.NoError(t, repo.SaveRun(ctx, sampleReport("run-1")))

	f, err := repo.GetFault(ctx, "", "F-0002")
	require.NoError(t, err)
	assert.Equal(t, entity.SeverityCritical, f.Severity)
	assert.Equal(t, []int{0, 1}, f.Tiles)
	assert.Equal(t, 20, f.BBox.Width())

	f, err = repo.GetFault(ctx, "run-1", "F-0003")
	require.NoError(t, err)
	assert.Equal(t, entity.FaultPanelHotspot, f.FaultType)

	_, err = repo.GetFault(ctx, "run-1", "F-0099")
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestRepository_EmptyInventory(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.SaveRun(ctx, &entity.Report{RunID: "empty"}))

	got, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "empty", got.RunID)
	assert.Empty(t, got.Faults)
}

func TestRepository_FileReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "faults.db")

	repo, err := New(path)
	require.NoError(t, err)
	require.NoError(t, repo.SaveRun(ctx, sampleReport("run-1")))
	require.NoError(t, repo.Close())

	repo, err = New(path)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
}
