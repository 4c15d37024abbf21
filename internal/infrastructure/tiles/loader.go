package tiles

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"

	_ "golang.org/x/image/tiff"
	"gonum.org/v1/gonum/mat"

	"pv-hotspot/internal/domain/entity"
	"pv-hotspot/internal/domain/port"
	"pv-hotspot/internal/infrastructure/thermal"
)

// Маски беднее этого порога не передаются дальше.
const minMaskPixels = 100

// Loader загружает тайлы манифеста и нормализует их в ΔT.
// Безопасен для параллельного вызова Load с разными индексами.
type Loader struct {
	manifest  *Manifest
	clipSigma float64
}

// NewLoader создаёт загрузчик для манифеста
func NewLoader(m *Manifest, clipSigma float64) *Loader {
	return &Loader{manifest: m, clipSigma: clipSigma}
}

var _ port.TileSource = (*Loader)(nil)

// Len возвращает число тайлов
func (l *Loader) Len() int {
	return len(l.manifest.Tiles)
}

// Load читает i-й тайл: ИК-растр, карту ΔT и маску панелей, если она есть.
func (l *Loader) Load(i int) (entity.Tile, error) {
	e := l.manifest.Tiles[i]
	tile := entity.Tile{
		ID:        e.ID,
		Transform: entity.NewGeoTransform([6]float64(e.Transform)),
	}

	ir, err := decodeRaster(e.IR)
	if err != nil {
		return tile, fmt.Errorf("tile %d: %w", e.ID, err)
	}
	tile.IR = ir

	dt, bg, ok := thermal.Normalize(ir, l.clipSigma)
	if !ok {
		return tile, fmt.Errorf("tile %d: %w", e.ID, port.ErrNoThermalSignal)
	}
	tile.DeltaT = dt
	tile.Background = bg

	if e.Mask != "" {
		mask, err := decodeMask(e.Mask)
		if err != nil {
			return tile, fmt.Errorf("tile %d: %w", e.ID, err)
		}
		h, w := ir.Dims()
		if resized := ResizeMask(mask, w, h); resized.Count() >= minMaskPixels {
			tile.PanelMask = resized
		}
	}
	return tile, nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// decodeRaster читает одноканальный растр (8 или 16 бит) в матрицу.
func decodeRaster(path string) (*mat.Dense, error) {
	img, err := decodeImage(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("decode %s: empty image", path)
	}

	m := mat.NewDense(b.Dy(), b.Dx(), nil)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var v float64
			switch px := img.(type) {
			case *image.Gray16:
				v = float64(px.Gray16At(x, y).Y)
			case *image.Gray:
				v = float64(px.GrayAt(x, y).Y)
			default:
				v = float64(color.Gray16Model.Convert(img.At(x, y)).(color.Gray16).Y)
			}
			m.Set(y-b.Min.Y, x-b.Min.X, v)
		}
	}
	return m, nil
}

// decodeMask читает маску панелей, ненулевой пиксель означает панель.
func decodeMask(path string) (*entity.Mask, error) {
	img, err := decodeImage(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	mask := entity.NewMask(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			mask.Set(x-b.Min.X, y-b.Min.Y, r|g|bl != 0)
		}
	}
	return mask, nil
}

// ResizeMask масштабирует маску методом ближайшего соседа.
func ResizeMask(m *entity.Mask, w, h int) *entity.Mask {
	if m.Width == w && m.Height == h {
		return m
	}
	out := entity.NewMask(w, h)
	if m.Width == 0 || m.Height == 0 {
		return out
	}
	for y := 0; y < h; y++ {
		sy := y * m.Height / h
		for x := 0; x < w; x++ {
			sx := x * m.Width / w
			out.Set(x, y, m.At(sx, sy))
		}
	}
	return out
}
