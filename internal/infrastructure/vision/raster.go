//go:build !gocv
// +build !gocv

package vision

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// gaussianBlur сглаживает карту раздельным гауссовым ядром ksize×ksize.
// Сигма выводится из размера ядра, края отражаются без повтора крайнего пикселя.
func gaussianBlur(src *mat.Dense, ksize int) *mat.Dense {
	h, w := src.Dims()
	kernel := gaussianKernel(ksize)
	r := ksize / 2

	tmp := mat.NewDense(h, w, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k, kv := range kernel {
				sum += kv * src.At(y, reflect101(x+k-r, w))
			}
			tmp.Set(y, x, sum)
		}
	}

	out := mat.NewDense(h, w, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k, kv := range kernel {
				sum += kv * tmp.At(reflect101(y+k-r, h), x)
			}
			out.Set(y, x, sum)
		}
	}
	return out
}

func gaussianKernel(ksize int) []float64 {
	sigma := 0.3*(float64(ksize-1)*0.5-1) + 0.8
	r := ksize / 2
	kernel := make([]float64, ksize)
	var sum float64
	for i := range kernel {
		d := float64(i - r)
		kernel[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// reflect101 отражает индекс за границей: -1 -> 1, n -> n-2.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*n - 2 - i
		}
	}
	return i
}

// connectedComponents размечает 8-связные области. Метки начинаются с 1
// в порядке обхода по строкам, 0 означает фон.
func connectedComponents(mask []uint8, w, h int) ([]int32, []component) {
	labels := make([]int32, w*h)
	var comps []component
	var queue []int

	for start := range mask {
		if mask[start] == 0 || labels[start] != 0 {
			continue
		}
		label := int32(len(comps) + 1)
		labels[start] = label
		queue = append(queue[:0], start)

		minX, minY := w, h
		maxX, maxY := -1, -1
		var sumX, sumY float64
		area := 0

		for len(queue) > 0 {
			p := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			x, y := p%w, p/w

			area++
			sumX += float64(x)
			sumY += float64(y)
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					q := ny*w + nx
					if mask[q] != 0 && labels[q] == 0 {
						labels[q] = label
						queue = append(queue, q)
					}
				}
			}
		}

		comps = append(comps, component{
			Left:   minX,
			Top:    minY,
			Width:  maxX - minX + 1,
			Height: maxY - minY + 1,
			Area:   area,
			CX:     sumX / float64(area),
			CY:     sumY / float64(area),
		})
	}
	return labels, comps
}
