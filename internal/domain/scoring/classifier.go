package scoring

import "pv-hotspot/internal/domain/entity"

// TileSeverity уровень по пиковому локальному ΔT внутри тайла (без CRITICAL).
func TileSeverity(peakLocalDT float64) entity.Severity {
	switch {
	case peakLocalDT >= 12.0:
		return entity.SeverityHigh
	case peakLocalDT >= 8.0:
		return entity.SeverityMedium
	default:
		return entity.SeverityLow
	}
}

// SeverityFromPhysics уровень по агрегированной физике неисправности.
func SeverityFromPhysics(deltaT float64, area int) entity.Severity {
	switch {
	case deltaT >= 40 && area >= 400:
		return entity.SeverityCritical
	case deltaT >= 30:
		return entity.SeverityHigh
	case deltaT >= 20:
		return entity.SeverityMedium
	default:
		return entity.SeverityLow
	}
}

// ProvisionalType предварительный тип, вычисляемый при слиянии.
// Всегда перезаписывается Classify и наружу не попадает.
func ProvisionalType(deltaT float64, area, mergeCount int) entity.FaultType {
	switch {
	case mergeCount >= 2 && area >= 400 && deltaT >= 30:
		return entity.FaultJunctionBoxHotspot
	case area < 150 && deltaT >= 35:
		return entity.FaultCellHotspot
	default:
		return entity.FaultPanelHotspot
	}
}

// Classify возвращает итоговый тип неисправности. Правила проверяются по порядку.
func Classify(f entity.Fault) entity.FaultType {
	switch {
	case f.PixelArea < 120 && f.DeltaTMax >= 36:
		return entity.FaultCellHotspot
	case f.PixelArea >= 600 && f.DeltaTMax >= 38:
		return entity.FaultJunctionBoxHotspot
	case f.Severity == entity.SeverityCritical:
		return entity.FaultJunctionBoxHotspot
	default:
		return entity.FaultPanelHotspot
	}
}
