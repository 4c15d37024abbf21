// Package thermal переводит сырой ИК-тайл в карту ΔT относительно фона.
package thermal

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"pv-hotspot/internal/domain/entity"
)

const (
	// DefaultClipSigma выбросы дальше 3σ от медианы фона обрезаются.
	DefaultClipSigma = 3.0

	minValidPixels = 50
)

// Normalize возвращает карту ΔT = clip(ir) − медиана фона и статистику фона.
// Фоном считаются пиксели > 0; если их меньше 50, берётся весь тайл.
// ok == false, если фон не удалось оценить.
func Normalize(ir *mat.Dense, clipSigma float64) (dt *mat.Dense, bg entity.Background, ok bool) {
	if ir == nil || ir.IsEmpty() {
		return nil, bg, false
	}
	raw := mat.DenseCopyOf(ir).RawMatrix().Data

	background := make([]float64, 0, len(raw))
	for _, v := range raw {
		if v > 0 {
			background = append(background, v)
		}
	}
	if len(background) < minValidPixels {
		background = append(background[:0], raw...)
	}
	background = finite(background)
	if len(background) == 0 {
		return nil, bg, false
	}

	median := median(background)
	_, std := stat.PopMeanStdDev(background, nil)
	if std < 1e-6 {
		std = 1.0
	}

	lo, hi := median-clipSigma*std, median+clipSigma*std
	h, w := ir.Dims()
	dt = mat.NewDense(h, w, nil)
	dt.Apply(func(_, _ int, v float64) float64 {
		return math.Max(lo, math.Min(hi, v)) - median
	}, ir)

	data := dt.RawMatrix().Data
	return dt, entity.Background{
		Median: median,
		Std:    std,
		DTMin:  floats.Min(data),
		DTMax:  floats.Max(data),
	}, true
}

func finite(vs []float64) []float64 {
	out := vs[:0]
	for _, v := range vs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// median сортирует срез на месте.
func median(vs []float64) float64 {
	sort.Float64s(vs)
	n := len(vs)
	if n%2 == 1 {
		return vs[n/2]
	}
	return (vs[n/2-1] + vs[n/2]) / 2
}
