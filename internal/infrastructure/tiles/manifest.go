// Package tiles читает набор ИК-тайлов, описанный YAML-манифестом.
//
// Пример манифеста:
//
//	crs: geographic
//	tiles:
//	  - id: 0
//	    ir: ir/tile_0000.tif
//	    mask: mask/tile_0000.png
//	    transform: [1.0e-6, 0, 12.4951, 0, -1.0e-6, 41.9022]
package tiles

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest описывает тайлы одного облёта.
type Manifest struct {
	CRS   string  `yaml:"crs"`
	Tiles []Entry `yaml:"tiles"`
}

// Entry один тайл манифеста. Пути относительны каталогу манифеста.
type Entry struct {
	ID        int       `yaml:"id"`
	IR        string    `yaml:"ir"`
	Mask      string    `yaml:"mask,omitempty"`
	Transform []float64 `yaml:"transform"`
}

// LoadManifest читает и проверяет манифест
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data, filepath.Dir(path))
}

// ParseManifest разбирает манифест и приводит пути к baseDir.
func ParseManifest(data []byte, baseDir string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	seen := make(map[int]bool, len(m.Tiles))
	for i := range m.Tiles {
		e := &m.Tiles[i]
		if e.IR == "" {
			return nil, fmt.Errorf("tile %d: ir path is required", e.ID)
		}
		if len(e.Transform) != 6 {
			return nil, fmt.Errorf("tile %d: transform needs 6 coefficients, got %d", e.ID, len(e.Transform))
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("tile %d: duplicate id", e.ID)
		}
		seen[e.ID] = true

		e.IR = resolve(baseDir, e.IR)
		if e.Mask != "" {
			e.Mask = resolve(baseDir, e.Mask)
		}
	}
	return &m, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
