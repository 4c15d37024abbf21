package port

import "pv-hotspot/internal/domain/entity"

// HotspotExtractor интерфейс поиска горячих точек в тайле
type HotspotExtractor interface {
	// Extract находит горячие точки одного тайла. Вырожденный вход даёт пустой результат.
	Extract(tile entity.Tile) entity.Extraction
}

// TileAnnotator интерфейс отрисовки детекций поверх тайла
type TileAnnotator interface {
	// Annotate сохраняет изображение тайла с рамками детекций
	Annotate(tile entity.Tile, detections []entity.Detection) error
}
