// Package merge объединяет детекции из перекрывающихся тайлов в физические неисправности.
//
// Слияние ищет неподвижную точку: проходы одиночной связи повторяются, пока
// очередной проход не перестанет объединять записи. Каждый проход строит
// новый срез, записи предыдущего прохода не изменяются. Сложность прохода
// O(n²) без индекса, число проходов ограничено глубиной самой длинной цепочки.
package merge

import (
	"sort"

	"pv-hotspot/internal/domain/entity"
	"pv-hotspot/internal/domain/scoring"
)

// DefaultRadius радиус слияния в метрах.
const DefaultRadius = 6.0

// Merger выполняет пространственное слияние.
type Merger struct {
	Radius float64
	Metric Metric
	Energy scoring.EnergyModel
	// Index включает сеточный индекс, результат совпадает с полным перебором.
	Index bool
}

// Result итог слияния.
type Result struct {
	Faults []entity.Fault
	Passes int
}

// New создаёт Merger с заданным радиусом и метрикой.
func New(radius float64, metric Metric, energy scoring.EnergyModel) *Merger {
	if metric == nil {
		metric = Haversine{}
	}
	return &Merger{Radius: radius, Metric: metric, Energy: energy}
}

// MergeDetections объединяет детекции всех тайлов.
func (m *Merger) MergeDetections(dets []entity.Detection) Result {
	faults := make([]entity.Fault, len(dets))
	for i, d := range dets {
		faults[i] = d.AsFault()
	}
	return m.Merge(faults)
}

// Merge доводит набор неисправностей до неподвижной точки. Повторный вызов
// на результате возвращает те же записи с новыми идентификаторами.
func (m *Merger) Merge(records []entity.Fault) Result {
	if len(records) == 0 {
		return Result{}
	}

	nextID := 0
	passes := 0
	working := records
	for {
		passes++
		var merged bool
		working, merged = m.pass(working, &nextID)
		if !merged {
			return Result{Faults: working, Passes: passes}
		}
	}
}

func (m *Merger) pass(records []entity.Fault, nextID *int) ([]entity.Fault, bool) {
	clusters := m.clusters(records)

	out := make([]entity.Fault, 0, len(clusters))
	merged := false
	for _, idx := range clusters {
		if len(idx) > 1 {
			merged = true
		}
		members := make([]entity.Fault, len(idx))
		for k, i := range idx {
			members[k] = records[i]
		}
		agg, ok := m.aggregate(members, entity.FormatFaultID(*nextID))
		if !ok {
			continue
		}
		out = append(out, agg)
		*nextID++
	}
	return out, merged
}

// clusters разбивает записи на группы одиночной связи в порядке списка.
func (m *Merger) clusters(records []entity.Fault) [][]int {
	var g *grid
	if p, ok := m.Metric.(projector); ok && m.Index {
		g = newGrid(records, p, m.Radius)
	}

	used := make([]bool, len(records))
	var clusters [][]int
	for i := range records {
		if used[i] {
			continue
		}
		used[i] = true
		cluster := []int{i}

		for k := 0; k < len(cluster); k++ {
			c := records[cluster[k]]
			for _, j := range m.candidates(g, cluster[k], len(records)) {
				if used[j] {
					continue
				}
				o := records[j]
				if m.Metric.Distance(c.Lon, c.Lat, o.Lon, o.Lat) <= m.Radius {
					used[j] = true
					cluster = append(cluster, j)
				}
			}
		}

		sort.Ints(cluster)
		clusters = append(clusters, cluster)
	}
	return clusters
}

func (m *Merger) candidates(g *grid, i, n int) []int {
	if g != nil {
		return g.neighbours(i)
	}
	all := make([]int, n)
	for j := range all {
		all[j] = j
	}
	return all
}

// aggregate сворачивает кластер в одну неисправность. Площадь равна сумме
// площадей участников, а не площади геометрического объединения.
func (m *Merger) aggregate(members []entity.Fault, id string) (entity.Fault, bool) {
	total := 0
	for _, f := range members {
		total += f.PixelArea
	}
	if total <= 0 {
		return entity.Fault{}, false
	}

	first := members[0]
	lon, lat := first.Lon, first.Lat
	if len(members) > 1 {
		var sumLon, sumLat float64
		for _, f := range members {
			a := float64(f.PixelArea)
			sumLon += f.Lon * a
			sumLat += f.Lat * a
		}
		lon = sumLon / float64(total)
		lat = sumLat / float64(total)
	}

	deltaT := first.DeltaTMax
	zscore := first.ZScoreMax
	mergeCount := 0
	bbox := first.BBox
	tiles := make(map[int]struct{})
	for _, f := range members {
		deltaT = max(deltaT, f.DeltaTMax)
		zscore = max(zscore, f.ZScoreMax)
		mergeCount += max(f.MergeCount, 1)
		bbox = bbox.Union(f.BBox)
		for _, t := range f.Tiles {
			tiles[t] = struct{}{}
		}
	}

	tileIDs := make([]int, 0, len(tiles))
	for t := range tiles {
		tileIDs = append(tileIDs, t)
	}
	sort.Ints(tileIDs)

	deltaT = scoring.Round(deltaT, 2)
	lossPct, annual := m.Energy.Estimate(deltaT, float64(total))

	return entity.Fault{
		FaultID:       id,
		FaultType:     scoring.ProvisionalType(deltaT, total, mergeCount),
		Severity:      scoring.SeverityFromPhysics(deltaT, total),
		Confidence:    scoring.Confidence(deltaT, total, zscore),
		DeltaTMax:     deltaT,
		ZScoreMax:     zscore,
		PixelArea:     total,
		MergeCount:    mergeCount,
		LossPct:       lossPct,
		AnnualKWhLoss: annual,
		Lon:           lon,
		Lat:           lat,
		BBox:          bbox,
		Tiles:         tileIDs,
	}, true
}
