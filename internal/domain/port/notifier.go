package port

import (
	"context"

	"pv-hotspot/internal/domain/entity"
)

// ReportNotifier интерфейс доставки итогов прогона
type ReportNotifier interface {
	// Notify отправляет сводку по прогону
	Notify(ctx context.Context, report *entity.Report) error
}
