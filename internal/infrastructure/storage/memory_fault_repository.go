package storage

import (
	"context"
	"sync"

	"pv-hotspot/internal/domain/entity"
	"pv-hotspot/internal/domain/port"
)

// MemoryFaultRepository in-memory хранилище прогонов
type MemoryFaultRepository struct {
	mu   sync.RWMutex
	runs []*entity.Report
}

// NewMemoryFaultRepository создаёт новое in-memory хранилище прогонов
func NewMemoryFaultRepository() *MemoryFaultRepository {
	return &MemoryFaultRepository{}
}

// SaveRun сохраняет отчёт прогона
func (r *MemoryFaultRepository) SaveRun(ctx context.Context, report *entity.Report) error {
	r.mu.Lock()
	r.runs = append(r.runs, report)
	r.mu.Unlock()

	return nil
}

// LatestRun возвращает последний сохранённый прогон
func (r *MemoryFaultRepository) LatestRun(ctx context.Context) (*entity.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.runs) == 0 {
		return nil, port.ErrNotFound
	}
	return r.runs[len(r.runs)-1], nil
}

// GetFault ищет неисправность в прогоне runID, пустой runID означает последний прогон
func (r *MemoryFaultRepository) GetFault(ctx context.Context, runID, faultID string) (*entity.Fault, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.runs) - 1; i >= 0; i-- {
		run := r.runs[i]
		if runID != "" && run.RunID != runID {
			continue
		}
		if f, ok := run.FindFault(faultID); ok {
			return &f, nil
		}
		break
	}
	return nil, port.ErrNotFound
}

// Проверка реализации интерфейса
var _ port.FaultRepository = (*MemoryFaultRepository)(nil)
