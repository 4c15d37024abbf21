package vision

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"pv-hotspot/internal/domain/entity"
	"pv-hotspot/internal/domain/port"
)

var severityColors = map[entity.Severity]color.RGBA{
	entity.SeverityCritical: {R: 255, A: 255},
	entity.SeverityHigh:     {R: 255, G: 165, A: 255},
	entity.SeverityMedium:   {R: 255, G: 255, A: 255},
	entity.SeverityLow:      {G: 255, A: 255},
}

// Annotator сохраняет ИК-тайлы с подсвеченными детекциями в каталог.
type Annotator struct {
	Dir      string
	MaxTiles int // тайлы с ID >= MaxTiles не рисуются
}

// NewAnnotator создаёт аннотатор для каталога dir.
func NewAnnotator(dir string, maxTiles int) *Annotator {
	return &Annotator{Dir: dir, MaxTiles: maxTiles}
}

// Annotate рисует рамки детекций и пишет tile_NNNN.png.
func (a *Annotator) Annotate(tile entity.Tile, detections []entity.Detection) error {
	if a.MaxTiles > 0 && tile.ID >= a.MaxTiles {
		return nil
	}
	img := HighlightDetections(tile, detections)
	if img == nil {
		return nil
	}

	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return fmt.Errorf("create annotation dir: %w", err)
	}
	path := filepath.Join(a.Dir, fmt.Sprintf("tile_%04d.png", tile.ID))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

// HighlightDetections рисует рамки вокруг детекций тайла и возвращает новую картинку.
// Фоном служит сырой ИК, если он есть, иначе карта ΔT, растянутая в 8 бит.
func HighlightDetections(tile entity.Tile, detections []entity.Detection) *image.RGBA {
	src := tile.IR
	if src == nil {
		src = tile.DeltaT
	}
	if src == nil || src.IsEmpty() {
		return nil
	}

	img := grayToRGBA(src)
	for _, d := range detections {
		if d.TileID != tile.ID {
			continue
		}
		c, ok := severityColors[d.Severity]
		if !ok {
			c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
		}
		drawRect(img, d.BBox, c, 2)
		drawLabel(img, fmt.Sprintf("%s | dT=%.1f", d.Severity, d.DeltaTMax), d.BBox.XMin, max(d.BBox.YMin-5, 10), c)
	}
	return img
}

// grayToRGBA нормирует значения min-max в диапазон 0..255.
func grayToRGBA(m *mat.Dense) *image.RGBA {
	h, w := m.Dims()
	raw := m.RawMatrix()
	lo, hi := floats.Min(raw.Data), floats.Max(raw.Data)
	scale := 0.0
	if hi > lo {
		scale = 255 / (hi - lo)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((m.At(y, x) - lo) * scale)
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func drawRect(img *image.RGBA, b entity.BBox, c color.RGBA, thickness int) {
	u := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(b.XMin, b.YMin, b.XMax+1, b.YMin+thickness),
		image.Rect(b.XMin, b.YMax-thickness+1, b.XMax+1, b.YMax+1),
		image.Rect(b.XMin, b.YMin, b.XMin+thickness, b.YMax+1),
		image.Rect(b.XMax-thickness+1, b.YMin, b.XMax+1, b.YMax+1),
	}
	for _, r := range edges {
		draw.Draw(img, r.Intersect(img.Bounds()), u, image.Point{}, draw.Src)
	}
}

func drawLabel(img *image.RGBA, text string, x, y int, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// Проверка реализации интерфейса
var _ port.TileAnnotator = (*Annotator)(nil)
