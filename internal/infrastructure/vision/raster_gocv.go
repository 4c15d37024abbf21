//go:build gocv
// +build gocv

package vision

import (
	"image"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// gaussianBlur сглаживает карту средствами OpenCV.
func gaussianBlur(src *mat.Dense, ksize int) *mat.Dense {
	h, w := src.Dims()
	m := gocv.NewMatWithSize(h, w, gocv.MatTypeCV64F)
	defer m.Close()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.SetDoubleAt(y, x, src.At(y, x))
		}
	}

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(m, &blur, image.Pt(ksize, ksize), 0, 0, gocv.BorderReflect101)

	out := mat.NewDense(h, w, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(y, x, blur.GetDoubleAt(y, x))
		}
	}
	return out
}

// connectedComponents размечает 8-связные области через connectedComponentsWithStats.
func connectedComponents(mask []uint8, w, h int) ([]int32, []component) {
	src, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, mask)
	if err != nil {
		return make([]int32, w*h), nil
	}
	defer src.Close()

	labelsMat := gocv.NewMat()
	defer labelsMat.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	n := gocv.ConnectedComponentsWithStats(src, &labelsMat, &stats, &centroids)

	labels := make([]int32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			labels[y*w+x] = labelsMat.GetIntAt(y, x)
		}
	}

	comps := make([]component, 0, max(n-1, 0))
	for label := 1; label < n; label++ {
		comps = append(comps, component{
			Left:   int(stats.GetIntAt(label, int(gocv.CCStatLeft))),
			Top:    int(stats.GetIntAt(label, int(gocv.CCStatTop))),
			Width:  int(stats.GetIntAt(label, int(gocv.CCStatWidth))),
			Height: int(stats.GetIntAt(label, int(gocv.CCStatHeight))),
			Area:   int(stats.GetIntAt(label, int(gocv.CCStatArea))),
			CX:     centroids.GetDoubleAt(label, 0),
			CY:     centroids.GetDoubleAt(label, 1),
		})
	}
	return labels, comps
}
