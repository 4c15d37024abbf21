package scoring

// MaxConfidence потолок достоверности, выше него оценка не поднимается.
const MaxConfidence = 85.0

const (
	severityWeight = 0.45
	spatialWeight  = 0.30
	statWeight     = 0.25

	// statFloor используется, когда z-оценки нет.
	statFloor = 0.25
)

// Confidence оценивает достоверность неисправности по пиковому ΔT, площади
// и z-оценке (0 означает отсутствие статистики). Результат в [0, 85] с шагом 0.1.
func Confidence(deltaT float64, area int, zscore float64) float64 {
	severity := clamp((deltaT-5.0)/35.0, 0, 1)
	spatial := clamp(float64(area)/500.0, 0, 1)

	stat := statFloor
	if zscore != 0 {
		stat = clamp(zscore/5.0, 0, 1)
	}

	score := (severityWeight*severity + spatialWeight*spatial + statWeight*stat) * 100.0
	if score > MaxConfidence {
		score = MaxConfidence
	}
	return Round(score, 1)
}
