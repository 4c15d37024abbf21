package entity

import "fmt"

// FaultType категория неисправности
type FaultType string

const (
	FaultHotspot            FaultType = "HOTSPOT" // до слияния, уточняется позже
	FaultCellHotspot        FaultType = "CELL_HOTSPOT"
	FaultJunctionBoxHotspot FaultType = "JUNCTION_BOX_HOTSPOT"
	FaultPanelHotspot       FaultType = "PANEL_HOTSPOT"
)

// BBox прямоугольник в пикселях тайла, XMax/YMax не включаются.
type BBox struct {
	XMin int `json:"x_min"`
	YMin int `json:"y_min"`
	XMax int `json:"x_max"`
	YMax int `json:"y_max"`
}

// Width возвращает ширину рамки
func (b BBox) Width() int { return b.XMax - b.XMin }

// Height возвращает высоту рамки
func (b BBox) Height() int { return b.YMax - b.YMin }

// Union возвращает наименьшую рамку, содержащую обе.
func (b BBox) Union(o BBox) BBox {
	return BBox{
		XMin: min(b.XMin, o.XMin),
		YMin: min(b.YMin, o.YMin),
		XMax: max(b.XMax, o.XMax),
		YMax: max(b.YMax, o.YMax),
	}
}

// Detection горячая точка, найденная в одном тайле (до слияния).
type Detection struct {
	TileID     int       `json:"tile_id"`
	FaultType  FaultType `json:"fault_type"`
	Severity   Severity  `json:"severity"`
	Confidence float64   `json:"confidence"`
	DeltaTMax  float64   `json:"delta_t_max"` // пиковое сырое ΔT
	ZScoreMax  float64   `json:"zscore_max"`
	PixelArea  int       `json:"pixel_area"`
	Lon        float64   `json:"lon"`
	Lat        float64   `json:"lat"`
	BBox       BBox      `json:"bbox"`
}

// Fault физическая неисправность после слияния детекций из всех тайлов.
type Fault struct {
	FaultID       string    `json:"fault_id"`
	FaultType     FaultType `json:"fault_type"`
	Severity      Severity  `json:"severity"`
	Confidence    float64   `json:"confidence"`
	DeltaTMax     float64   `json:"delta_t_max"`
	ZScoreMax     float64   `json:"zscore_max"`
	PixelArea     int       `json:"pixel_area"`
	MergeCount    int       `json:"merge_count"`
	LossPct       float64   `json:"loss_pct"`
	AnnualKWhLoss float64   `json:"annual_kwh_loss"`
	Lon           float64   `json:"lon"`
	Lat           float64   `json:"lat"`
	BBox          BBox      `json:"bbox"`
	Tiles         []int     `json:"tiles"`
	Priority      float64   `json:"priority"`
}

// AsFault превращает детекцию в неисправность из одного участника.
// Идентификатор, оценка потерь и итоговый тип назначаются при слиянии.
func (d Detection) AsFault() Fault {
	return Fault{
		FaultType:  d.FaultType,
		Severity:   d.Severity,
		Confidence: d.Confidence,
		DeltaTMax:  d.DeltaTMax,
		ZScoreMax:  d.ZScoreMax,
		PixelArea:  d.PixelArea,
		MergeCount: 1,
		Lon:        d.Lon,
		Lat:        d.Lat,
		BBox:       d.BBox,
		Tiles:      []int{d.TileID},
	}
}

// FormatFaultID строит идентификатор вида F-0007.
func FormatFaultID(seq int) string {
	return fmt.Sprintf("F-%04d", seq)
}
