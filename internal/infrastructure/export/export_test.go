package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pv-hotspot/internal/domain/entity"
)

func sampleFaults() []entity.Fault {
	return []entity.Fault{
		{
			FaultID:       "F-0002",
			FaultType:     entity.FaultCellHotspot,
			Severity:      entity.SeverityCritical,
			Confidence:    81.3,
			DeltaTMax:     30.52,
			ZScoreMax:     12.4,
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
			FaultID:   "F-0003",
			FaultType: entity.FaultPanelHotspot,
			Severity:  entity.SeverityLow,
			PixelArea: 500,
			Lon:       12.5,
			Lat:       41.9,
			Tiles:     []int{4},
		},
	}
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, sampleFaults()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"F-0002", "CELL_HOTSPOT", "CRITICAL", "81.3",
		"30.52", "12.4", "356", "2",
		"11.27", "100.4", "12.4951", "41.9022",
		"10", "12", "30", "31",
		"0;1", "346.13",
	}, rows[1])
	assert.Equal(t, "4", rows[2][16])
}

func TestWriteCSV_EmptyInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faults.csv")
	require.NoError(t, WriteCSV(path, nil))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faults.csv")
	require.NoError(t, WriteCSV(path, sampleFaults()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "F-0003,PANEL_HOTSPOT,LOW")
}

func TestEncodeGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeGeoJSON(&buf, sampleFaults()))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "FeatureCollection", doc["type"])

	features := doc["features"].([]any)
	require.Len(t, features, 2)

	first := features[0].(map[string]any)
	geom := first["geometry"].(map[string]any)
	assert.Equal(t, "Point", geom["type"])
	assert.Equal(t, []any{12.4951, 41.9022}, geom["coordinates"])

	props := first["properties"].(map[string]any)
	assert.Len(t, props, 8)
	assert.Equal(t, "F-0002", props["fault_id"])
	assert.Equal(t, 12.4, props["zscore_max"])
	assert.Equal(t, 2.0, props["merge_count"])

	second := features[1].(map[string]any)["properties"].(map[string]any)
	assert.Contains(t, second, "zscore_max")
	assert.Nil(t, second["zscore_max"])
	assert.Nil(t, second["merge_count"])
}

func TestWriteGeoJSON_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faults.geojson")
	require.NoError(t, WriteGeoJSON(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var fc FeatureCollection
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Empty(t, fc.Features)
	assert.Contains(t, string(data), `"features": []`)
}
