package entity

import "time"

// RejectReason причина отбраковки связной области.
type RejectReason string

const (
	RejectArea    RejectReason = "area"
	RejectBorder  RejectReason = "border"
	RejectSpan    RejectReason = "span"
	RejectAspect  RejectReason = "aspect"
	RejectDiffuse RejectReason = "diffuse"
)

// Extraction результат обработки одного тайла.
type Extraction struct {
	TileID      int
	Detections  []Detection
	Components  int
	Rejected    map[RejectReason]int
	MaskDropped bool // маска панелей отброшена как непригодная
}

// Reject учитывает отбракованную область
func (e *Extraction) Reject(reason RejectReason) {
	if e.Rejected == nil {
		e.Rejected = make(map[RejectReason]int)
	}
	e.Rejected[reason]++
}

// Report итог одного прогона конвейера.
type Report struct {
	RunID          string
	StartedAt      time.Time
	FinishedAt     time.Time
	TilesTotal     int
	TilesSkipped   int
	Detections     int
	MergePasses    int
	Reported       int // неисправности уровня MEDIUM и выше
	Rejected       map[RejectReason]int
	SkipReasons    map[string]int
	SeverityCounts map[Severity]int
	AnnualKWhLoss  float64
	Faults         []Fault
	TileDetections map[int][]Detection
}

// Top возвращает первые n неисправностей по приоритету.
func (r *Report) Top(n int) []Fault {
	if n > len(r.Faults) {
		n = len(r.Faults)
	}
	return r.Faults[:n]
}

// FindFault ищет неисправность по идентификатору
func (r *Report) FindFault(id string) (Fault, bool) {
	for _, f := range r.Faults {
		if f.FaultID == id {
			return f, true
		}
	}
	return Fault{}, false
}
