package app

import (
	"context"
	"strings"

	"pv-hotspot/internal/domain/entity"
	"pv-hotspot/internal/domain/port"
)

// TopLimit сколько неисправностей показывает /top.
const TopLimit = 5

// ReportService отвечает на запросы о сохранённых прогонах.
type ReportService struct {
	repo port.FaultRepository
}

// NewReportService создаёт сервис запросов к инвентарю
func NewReportService(repo port.FaultRepository) *ReportService {
	return &ReportService{repo: repo}
}

// Latest возвращает последний прогон
func (s *ReportService) Latest(ctx context.Context) (*entity.Report, error) {
	return s.repo.LatestRun(ctx)
}

// Top возвращает до n неисправностей последнего прогона по убыванию приоритета
func (s *ReportService) Top(ctx context.Context, n int) ([]entity.Fault, error) {
	report, err := s.repo.LatestRun(ctx)
	if err != nil {
		return nil, err
	}
	return report.Top(n), nil
}

// Fault ищет неисправность последнего прогона. Принимает "F-0007", "f-0007" и "7".
func (s *ReportService) Fault(ctx context.Context, id string) (*entity.Fault, error) {
	return s.repo.GetFault(ctx, "", NormalizeFaultID(id))
}

// NormalizeFaultID приводит пользовательский ввод к виду F-NNNN.
func NormalizeFaultID(id string) string {
	id = strings.ToUpper(strings.TrimSpace(id))
	if strings.HasPrefix(id, "F-") {
		return id
	}
	n := 0
	for _, r := range id {
		if r < '0' || r > '9' {
			return id
		}
		n = n*10 + int(r-'0')
	}
	if id == "" {
		return id
	}
	return entity.FormatFaultID(n)
}
