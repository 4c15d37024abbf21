package scoring

import "math"

const (
	DefaultPanelKW     = 0.54
	DefaultAnnualYield = 1650.0 // часов полной мощности в год

	// MaxLossFraction консервативный потолок потерь одной панели.
	MaxLossFraction = 0.35
)

// EnergyModel оценивает потери выработки от неисправности.
type EnergyModel struct {
	PanelKW     float64
	AnnualYield float64
}

// DefaultEnergyModel возвращает модель с паспортными значениями по умолчанию.
func DefaultEnergyModel() EnergyModel {
	return EnergyModel{PanelKW: DefaultPanelKW, AnnualYield: DefaultAnnualYield}
}

// LossFraction возвращает долю потерянной мощности, ограниченную [0, 0.35].
func LossFraction(deltaT float64, area float64) float64 {
	f := 0.002 * deltaT * math.Sqrt(area/100.0)
	if math.IsNaN(f) {
		return 0
	}
	return clamp(f, 0, MaxLossFraction)
}

// Estimate возвращает потери в процентах (2 знака) и годовые потери в кВт·ч (1 знак).
func (m EnergyModel) Estimate(deltaT float64, area float64) (lossPct, annualKWh float64) {
	f := LossFraction(deltaT, area)
	return Round(f*100, 2), Round(m.PanelKW*m.AnnualYield*f, 1)
}
