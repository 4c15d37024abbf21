package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"pv-hotspot/internal/domain/entity"
)

// FeatureCollection корневой объект GeoJSON.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature точка неисправности.
type Feature struct {
	Type       string     `json:"type"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

// Geometry GeoJSON Point, координаты в порядке lon, lat.
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Properties атрибуты точки. Отсутствующие у записи поля пишутся как null.
type Properties struct {
	FaultID    string           `json:"fault_id"`
	FaultType  entity.FaultType `json:"fault_type"`
	Severity   entity.Severity  `json:"severity"`
	Confidence float64          `json:"confidence"`
	DeltaTMax  float64          `json:"delta_t_max"`
	ZScoreMax  *float64         `json:"zscore_max"`
	PixelArea  int              `json:"pixel_area"`
	MergeCount *int             `json:"merge_count"`
}

// NewFeatureCollection строит коллекцию точек в порядке инвентаря.
// Запись без слияния (MergeCount == 0) не несёт zscore_max и merge_count.
func NewFeatureCollection(faults []entity.Fault) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(faults))}
	for _, f := range faults {
		props := Properties{
			FaultID:    f.FaultID,
			FaultType:  f.FaultType,
			Severity:   f.Severity,
			Confidence: f.Confidence,
			DeltaTMax:  f.DeltaTMax,
			PixelArea:  f.PixelArea,
		}
		if f.MergeCount > 0 {
			z, n := f.ZScoreMax, f.MergeCount
			props.ZScoreMax = &z
			props.MergeCount = &n
		}
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			Geometry:   Geometry{Type: "Point", Coordinates: [2]float64{f.Lon, f.Lat}},
			Properties: props,
		})
	}
	return fc
}

// EncodeGeoJSON пишет коллекцию в w.
func EncodeGeoJSON(w io.Writer, faults []entity.Fault) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewFeatureCollection(faults)); err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	return nil
}

// WriteGeoJSON пишет коллекцию в файл, пустой инвентарь даёт пустую коллекцию.
func WriteGeoJSON(path string, faults []entity.Fault) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := EncodeGeoJSON(f, faults); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
