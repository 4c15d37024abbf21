// Package export выгружает инвентарь неисправностей в CSV и GeoJSON.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"pv-hotspot/internal/domain/entity"
)

var csvHeader = []string{
	"fault_id", "fault_type", "severity", "confidence",
	"delta_t_max", "zscore_max", "pixel_area", "merge_count",
	"loss_pct", "annual_kwh_loss", "lon", "lat",
	"bbox_x_min", "bbox_y_min", "bbox_x_max", "bbox_y_max",
	"tiles", "priority",
}

// WriteCSV пишет инвентарь в файл. Для пустого инвентаря файл не создаётся.
func WriteCSV(path string, faults []entity.Fault) error {
	if len(faults) == 0 {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := EncodeCSV(f, faults); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeCSV пишет заголовок и по строке на неисправность.
func EncodeCSV(w io.Writer, faults []entity.Fault) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, f := range faults {
		if err := cw.Write(csvRecord(f)); err != nil {
			return fmt.Errorf("write fault %s: %w", f.FaultID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func csvRecord(f entity.Fault) []string {
	tiles := make([]string, len(f.Tiles))
	for i, id := range f.Tiles {
		tiles[i] = strconv.Itoa(id)
	}
	return []string{
		f.FaultID,
		string(f.FaultType),
		string(f.Severity),
		formatFloat(f.Confidence),
		formatFloat(f.DeltaTMax),
		formatFloat(f.ZScoreMax),
		strconv.Itoa(f.PixelArea),
		strconv.Itoa(f.MergeCount),
		formatFloat(f.LossPct),
		formatFloat(f.AnnualKWhLoss),
		formatFloat(f.Lon),
		formatFloat(f.Lat),
		strconv.Itoa(f.BBox.XMin),
		strconv.Itoa(f.BBox.YMin),
		strconv.Itoa(f.BBox.XMax),
		strconv.Itoa(f.BBox.YMax),
		strings.Join(tiles, ";"),
		formatFloat(f.Priority),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
