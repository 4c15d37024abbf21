package merge

import (
	"fmt"
	"math"
	"strings"

	"pv-hotspot/internal/domain/entity"
)

// EarthRadius средний радиус Земли в метрах.
const EarthRadius = 6371008.8

// Metric измеряет расстояние между двумя точками (lon, lat) в метрах.
type Metric interface {
	Distance(lon1, lat1, lon2, lat2 float64) float64
}

// projector переводит набор координат в локальную плоскость в метрах.
// Нужен только пространственному индексу. ok == false, если набор нельзя
// разложить по сетке без потери соседей.
type projector interface {
	project(records []entity.Fault) (xy [][2]float64, ok bool)
}

// Planar евклидово расстояние для проекционных систем координат (UTM и т.п.),
// где координаты уже в метрах.
type Planar struct{}

// Distance возвращает евклидово расстояние
func (Planar) Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

func (Planar) project(records []entity.Fault) ([][2]float64, bool) {
	xy := make([][2]float64, len(records))
	for i, r := range records {
		xy[i] = [2]float64{r.Lon, r.Lat}
	}
	return xy, true
}

// Haversine расстояние по большому кругу для координат в градусах.
type Haversine struct{}

// Distance возвращает расстояние по большому кругу в метрах
func (Haversine) Distance(lon1, lat1, lon2, lat2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) + math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * EarthRadius * math.Asin(math.Min(1, math.Sqrt(h)))
}

// project строит равнопромежуточную проекцию. Долгота отсчитывается от
// первой записи со сворачиванием в [-180, 180], так что точки по разные
// стороны антимеридиана остаются соседями. Масштаб по долготе берётся по
// самой высокой широте набора и не превышает истинного. Набор, занимающий
// больше половины окружности по долготе, не индексируется.
func (Haversine) project(records []entity.Fault) ([][2]float64, bool) {
	if len(records) == 0 {
		return nil, true
	}
	refLon := records[0].Lon
	maxAbsLat := 0.0
	minDLon, maxDLon := 0.0, 0.0
	dLon := make([]float64, len(records))
	for i, r := range records {
		d := math.Remainder(r.Lon-refLon, 360)
		dLon[i] = d
		minDLon = math.Min(minDLon, d)
		maxDLon = math.Max(maxDLon, d)
		maxAbsLat = math.Max(maxAbsLat, math.Abs(r.Lat))
	}
	if maxDLon-minDLon > 180 {
		return nil, false
	}

	k := EarthRadius * math.Pi / 180
	kx := k * math.Cos(math.Min(maxAbsLat, 90)*math.Pi/180)
	xy := make([][2]float64, len(records))
	for i, r := range records {
		xy[i] = [2]float64{dLon[i] * kx, r.Lat * k}
	}
	return xy, true
}

// MetricByName возвращает метрику по имени из конфигурации.
func MetricByName(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "haversine", "geographic":
		return Haversine{}, nil
	case "planar", "projected":
		return Planar{}, nil
	default:
		return nil, fmt.Errorf("unknown distance metric %q", name)
	}
}
