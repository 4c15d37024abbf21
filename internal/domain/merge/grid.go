package merge

import (
	"math"
	"sort"

	"pv-hotspot/internal/domain/entity"
)

type cellKey struct{ x, y int }

// grid равномерная сетка с ячейкой в два радиуса слияния. Кандидаты
// берутся из соседних 3x3 ячеек, точное расстояние проверяет Metric.
type grid struct {
	cell  float64
	keys  []cellKey
	cells map[cellKey][]int
}

// newGrid раскладывает записи по ячейкам. nil, если проекция не гарантирует
// полноту соседей; тогда слияние перебирает все пары.
func newGrid(records []entity.Fault, p projector, radius float64) *grid {
	xy, ok := p.project(records)
	if !ok {
		return nil
	}

	g := &grid{
		cell:  2 * radius,
		keys:  make([]cellKey, len(records)),
		cells: make(map[cellKey][]int),
	}
	for i, c := range xy {
		k := cellKey{int(math.Floor(c[0] / g.cell)), int(math.Floor(c[1] / g.cell))}
		g.keys[i] = k
		g.cells[k] = append(g.cells[k], i)
	}
	return g
}

// neighbours возвращает индексы записей из окрестности i по возрастанию.
func (g *grid) neighbours(i int) []int {
	k := g.keys[i]
	var out []int
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			out = append(out, g.cells[cellKey{k.x + dx, k.y + dy}]...)
		}
	}
	sort.Ints(out)
	return out
}
