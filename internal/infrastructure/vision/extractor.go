package vision

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"pv-hotspot/internal/domain/entity"
	"pv-hotspot/internal/domain/port"
	"pv-hotspot/internal/domain/scoring"
)

// component связная область бинарной маски со статистикой.
type component struct {
	Left, Top     int
	Width, Height int
	Area          int
	CX, CY        float64 // центр масс в пикселях
}

// HotspotExtractor ищет горячие точки на карте ΔT одного тайла.
type HotspotExtractor struct {
	BlurKernel     int     // размер ядра сглаживания локального фона
	LocalThreshold float64 // порог локального ΔT
	MinArea        int
	MaxArea        int
	BorderPad      int
	MaxSpanRatio   float64 // доля размера тайла, выше которой область считается артефактом
	MinAspectRatio float64
	MaxAspectRatio float64
	MinMeanToPeak  float64 // отсекает диффузный нагрев
	MinPanelPixels int     // при меньшем числе маска панелей игнорируется
}

// NewHotspotExtractor создаёт экстрактор с порогами по умолчанию.
func NewHotspotExtractor() *HotspotExtractor {
	return &HotspotExtractor{
		BlurKernel:     51,
		LocalThreshold: 7.5,
		MinArea:        120,
		MaxArea:        2000,
		BorderPad:      8,
		MaxSpanRatio:   0.85,
		MinAspectRatio: 0.15,
		MaxAspectRatio: 6.0,
		MinMeanToPeak:  0.6,
		MinPanelPixels: 50,
	}
}

// Extract находит горячие точки тайла. Некорректный вход даёт пустой результат.
func (e *HotspotExtractor) Extract(tile entity.Tile) entity.Extraction {
	res := entity.Extraction{TileID: tile.ID}
	if tile.DeltaT == nil || tile.DeltaT.IsEmpty() {
		return res
	}
	dt := tile.DeltaT
	h, w := dt.Dims()

	mask := tile.PanelMask
	if mask != nil && !e.usableMask(mask, w, h) {
		mask = nil
		res.MaskDropped = true
	}

	// Вычитаем сглаженный фон, чтобы убрать крупные градиенты (угол солнца и т.п.).
	baseline := gaussianBlur(dt, e.BlurKernel)
	local := mat.NewDense(h, w, nil)
	local.Sub(dt, baseline)

	hot := make([]uint8, w*h)
	empty := true
	for y := e.BorderPad; y < h-e.BorderPad; y++ {
		for x := e.BorderPad; x < w-e.BorderPad; x++ {
			if !e.hot(local.At(y, x)) {
				continue
			}
			if mask != nil && !mask.At(x, y) {
				continue
			}
			hot[y*w+x] = 1
			empty = false
		}
	}
	if empty {
		return res
	}

	labels, comps := connectedComponents(hot, w, h)
	res.Components = len(comps)

	candidates := make(map[int32]component)
	for i, c := range comps {
		if reason, ok := e.geometryReject(c, w, h); ok {
			res.Reject(reason)
			continue
		}
		candidates[int32(i+1)] = c
	}
	if len(candidates) == 0 {
		return res
	}

	localVals := make(map[int32][]float64, len(candidates))
	rawVals := make(map[int32][]float64, len(candidates))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			l := labels[y*w+x]
			if _, ok := candidates[l]; !ok {
				continue
			}
			localVals[l] = append(localVals[l], local.At(y, x))
			rawVals[l] = append(rawVals[l], dt.At(y, x))
		}
	}

	for label := int32(1); label <= int32(len(comps)); label++ {
		c, ok := candidates[label]
		if !ok {
			continue
		}
		peakLocal := floats.Max(localVals[label])
		meanLocal := stat.Mean(localVals[label], nil)
		peakRaw := floats.Max(rawVals[label])

		if e.diffuse(meanLocal, peakLocal) {
			res.Reject(entity.RejectDiffuse)
			continue
		}

		lon, lat := tile.Transform.Apply(float64(int(c.CX)), float64(int(c.CY)))
		res.Detections = append(res.Detections, entity.Detection{
			TileID:     tile.ID,
			FaultType:  entity.FaultHotspot,
			Severity:   scoring.TileSeverity(peakLocal),
			Confidence: scoring.Confidence(peakLocal, c.Area, 0),
			DeltaTMax:  scoring.Round(peakRaw, 2),
			ZScoreMax:  0,
			PixelArea:  c.Area,
			Lon:        lon,
			Lat:        lat,
			BBox: entity.BBox{
				XMin: c.Left,
				YMin: c.Top,
				XMax: c.Left + c.Width,
				YMax: c.Top + c.Height,
			},
		})
	}
	return res
}

// hot требует превышения порога строго сверху. NaN горячим не считается.
func (e *HotspotExtractor) hot(local float64) bool {
	return local > e.LocalThreshold
}

// diffuse отбрасывает области, чьё среднее не выше доли MinMeanToPeak от пика.
func (e *HotspotExtractor) diffuse(mean, peak float64) bool {
	return !(mean > e.MinMeanToPeak*peak)
}

func (e *HotspotExtractor) usableMask(m *entity.Mask, w, h int) bool {
	if m.Width != w || m.Height != h || len(m.Bits) != w*h {
		return false
	}
	return m.Count() >= e.MinPanelPixels
}

// geometryReject проверяет площадь, касание края, размах и пропорции области.
func (e *HotspotExtractor) geometryReject(c component, w, h int) (entity.RejectReason, bool) {
	if c.Area < e.MinArea || c.Area > e.MaxArea {
		return entity.RejectArea, true
	}

	pad := e.BorderPad
	if c.Left <= pad || c.Top <= pad || c.Left+c.Width >= w-pad || c.Top+c.Height >= h-pad {
		return entity.RejectBorder, true
	}

	if float64(c.Width) > e.MaxSpanRatio*float64(w) || float64(c.Height) > e.MaxSpanRatio*float64(h) {
		return entity.RejectSpan, true
	}

	aspect := float64(c.Width) / float64(max(c.Height, 1))
	if aspect < e.MinAspectRatio || aspect > e.MaxAspectRatio {
		return entity.RejectAspect, true
	}
	return "", false
}

// Проверка реализации интерфейса
var _ port.HotspotExtractor = (*HotspotExtractor)(nil)
