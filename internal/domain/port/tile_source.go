package port

import (
	"errors"

	"pv-hotspot/internal/domain/entity"
)

// ErrNoThermalSignal у тайла нет пригодных ИК-значений.
var ErrNoThermalSignal = errors.New("no thermal signal")

// TileSource интерфейс источника тайлов
type TileSource interface {
	// Len возвращает число тайлов
	Len() int

	// Load загружает i-й тайл. Может вызываться параллельно.
	Load(i int) (entity.Tile, error)
}
