package port

import (
	"context"
	"errors"

	"pv-hotspot/internal/domain/entity"
)

// ErrNotFound возвращается, когда прогон или неисправность не найдены.
var ErrNotFound = errors.New("not found")

// FaultRepository интерфейс хранилища результатов прогонов
type FaultRepository interface {
	// SaveRun сохраняет отчёт прогона вместе с неисправностями
	SaveRun(ctx context.Context, report *entity.Report) error

	// LatestRun возвращает последний сохранённый прогон
	LatestRun(ctx context.Context) (*entity.Report, error)

	// GetFault возвращает неисправность прогона по идентификатору
	GetFault(ctx context.Context, runID, faultID string) (*entity.Fault, error)
}
