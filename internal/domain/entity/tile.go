package entity

import "gonum.org/v1/gonum/mat"

// GeoTransform аффинное преобразование пикселя (x, y) в координаты:
// lon = A*x + B*y + C, lat = D*x + E*y + F.
type GeoTransform struct {
	A, B, C float64
	D, E, F float64
}

// NewGeoTransform собирает преобразование из шести коэффициентов в порядке a, b, c, d, e, f.
func NewGeoTransform(coeffs [6]float64) GeoTransform {
	return GeoTransform{
		A: coeffs[0], B: coeffs[1], C: coeffs[2],
		D: coeffs[3], E: coeffs[4], F: coeffs[5],
	}
}

// Apply переводит пиксель в географические координаты
func (g GeoTransform) Apply(x, y float64) (lon, lat float64) {
	return g.A*x + g.B*y + g.C, g.D*x + g.E*y + g.F
}

// Mask булев растр панелей в разрешении ИК-тайла.
type Mask struct {
	Width  int
	Height int
	Bits   []bool // построчно, len == Width*Height
}

// NewMask создаёт пустую маску заданного размера
func NewMask(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Bits: make([]bool, width*height)}
}

// At возвращает значение в точке (x, y)
func (m *Mask) At(x, y int) bool {
	return m.Bits[y*m.Width+x]
}

// Set устанавливает значение в точке (x, y)
func (m *Mask) Set(x, y int, v bool) {
	m.Bits[y*m.Width+x] = v
}

// Count возвращает число истинных пикселей.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Background статистика фона, посчитанная нормализацией.
type Background struct {
	Median float64 `json:"bg_median"`
	Std    float64 `json:"bg_std"`
	DTMin  float64 `json:"dt_min"`
	DTMax  float64 `json:"dt_max"`
}

// Tile один ИК-тайл, готовый к поиску горячих точек.
type Tile struct {
	ID         int
	DeltaT     *mat.Dense // строки = y, столбцы = x
	IR         *mat.Dense // сырой ИК для оверлеев, может отсутствовать
	Transform  GeoTransform
	PanelMask  *Mask
	Background Background
}
