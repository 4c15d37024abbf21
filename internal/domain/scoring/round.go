// Package scoring содержит чистые функции оценки неисправностей:
// достоверность, потери энергии, классификацию и приоритет.
package scoring

import "math"

// Round округляет до places знаков, половины округляются от нуля.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
