package scoring

import (
	"math"
	"sort"

	"pv-hotspot/internal/domain/entity"
)

var severityWeights = map[entity.Severity]float64{
	entity.SeverityCritical: 2.0,
	entity.SeverityHigh:     1.5,
	entity.SeverityMedium:   1.0,
	entity.SeverityLow:      0.6,
}

// Priority считает ранг неисправности для итоговой сортировки.
func Priority(f entity.Fault) float64 {
	w, ok := severityWeights[f.Severity]
	if !ok {
		w = 1.0
	}
	return Round(w*f.Confidence*math.Log1p(float64(f.PixelArea)), 2)
}

// Rank классифицирует неисправности, проставляет приоритет и возвращает новый
// срез, отсортированный по убыванию приоритета (равные сохраняют порядок).
func Rank(faults []entity.Fault) []entity.Fault {
	out := make([]entity.Fault, len(faults))
	for i, f := range faults {
		f.FaultType = Classify(f)
		f.Priority = Priority(f)
		out[i] = f
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}
