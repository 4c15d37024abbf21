package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"pv-hotspot/internal/domain/entity"
	"pv-hotspot/internal/domain/merge"
	"pv-hotspot/internal/domain/port"
	"pv-hotspot/internal/domain/scoring"
)

// Причины пропуска тайла в Report.SkipReasons.
const (
	SkipLoad       = "load"
	SkipNoSignal   = "no_thermal_signal"
	SkipAnnotation = "annotation" // оверлей не записан, детекции тайла учтены
)

// RunObserver получает метрики прогона
type RunObserver interface {
	ObserveTile(d time.Duration)
	ObserveReport(report *entity.Report)
}

// PipelineDeps зависимости конвейера. Extractor и Merger обязательны.
type PipelineDeps struct {
	Extractor port.HotspotExtractor
	Merger    *merge.Merger
	Annotator port.TileAnnotator
	Repo      port.FaultRepository
	Notifier  port.ReportNotifier
	Observer  RunObserver
	Workers   int
	Logger    *slog.Logger
}

// PipelineService прогоняет набор тайлов через поиск, слияние и ранжирование.
type PipelineService struct {
	deps PipelineDeps
	now  func() time.Time
}

// tileOutcome результат воркера. Перед сборкой сортируется по id тайла.
type tileOutcome struct {
	tileID      int
	extraction  entity.Extraction
	skip        string
	annotateErr bool
}

// NewPipelineService создаёт конвейер
func NewPipelineService(deps PipelineDeps) *PipelineService {
	if deps.Workers <= 0 {
		deps.Workers = runtime.NumCPU()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &PipelineService{deps: deps, now: time.Now}
}

// Run обрабатывает все тайлы источника и возвращает отчёт.
// Ошибки отдельных тайлов не прерывают прогон, отмена ctx прерывает.
func (s *PipelineService) Run(ctx context.Context, src port.TileSource) (*entity.Report, error) {
	report := &entity.Report{
		RunID:          uuid.NewString(),
		StartedAt:      s.now(),
		TilesTotal:     src.Len(),
		Rejected:       make(map[entity.RejectReason]int),
		SkipReasons:    make(map[string]int),
		SeverityCounts: make(map[entity.Severity]int),
		TileDetections: make(map[int][]entity.Detection),
	}
	log := s.deps.Logger.With("run_id", report.RunID)
	log.Info("run started", "tiles", report.TilesTotal, "workers", s.deps.Workers)

	outcomes, err := s.extractAll(ctx, src, log)
	if err != nil {
		return nil, err
	}

	// Порядок детекций задаёт id итоговых дефектов, манифест может быть не отсортирован.
	sort.SliceStable(outcomes, func(a, b int) bool { return outcomes[a].tileID < outcomes[b].tileID })

	var detections []entity.Detection
	for _, o := range outcomes {
		if o.skip != "" {
			report.TilesSkipped++
			report.SkipReasons[o.skip]++
			continue
		}
		if o.annotateErr {
			report.SkipReasons[SkipAnnotation]++
		}
		ext := o.extraction
		for reason, n := range ext.Rejected {
			report.Rejected[reason] += n
		}
		if len(ext.Detections) > 0 {
			report.TileDetections[ext.TileID] = ext.Detections
			detections = append(detections, ext.Detections...)
		}
	}
	report.Detections = len(detections)

	merged := s.deps.Merger.MergeDetections(detections)
	report.MergePasses = merged.Passes
	report.Faults = scoring.Rank(merged.Faults)

	var kwh float64
	for _, f := range report.Faults {
		report.SeverityCounts[f.Severity]++
		if f.Severity.Reported() {
			report.Reported++
		}
		kwh += f.AnnualKWhLoss
	}
	report.AnnualKWhLoss = scoring.Round(kwh, 1)
	report.FinishedAt = s.now()

	log.Info("run finished",
		"detections", report.Detections,
		"faults", len(report.Faults),
		"reported", report.Reported,
		"merge_passes", report.MergePasses,
		"tiles_skipped", report.TilesSkipped,
		"annual_kwh_loss", report.AnnualKWhLoss,
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)
	for _, sev := range entity.Severities() {
		log.Info("severity histogram", "severity", sev, "faults", report.SeverityCounts[sev])
	}

	if s.deps.Observer != nil {
		s.deps.Observer.ObserveReport(report)
	}

	if s.deps.Repo != nil {
		if err := s.deps.Repo.SaveRun(ctx, report); err != nil {
			return report, fmt.Errorf("save run: %w", err)
		}
	}

	if s.deps.Notifier != nil {
		if err := s.deps.Notifier.Notify(ctx, report); err != nil {
			log.Warn("report notification failed", "err", err)
		}
	}

	return report, nil
}

// extractAll раздаёт тайлы воркерам; каждый пишет только в свою ячейку среза.
func (s *PipelineService) extractAll(ctx context.Context, src port.TileSource, log *slog.Logger) ([]tileOutcome, error) {
	outcomes := make([]tileOutcome, src.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.deps.Workers)
	for i := range outcomes {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.processTile(src, i, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract tiles: %w", err)
	}
	return outcomes, nil
}

func (s *PipelineService) processTile(src port.TileSource, i int, log *slog.Logger) tileOutcome {
	tile, err := src.Load(i)
	if err != nil {
		reason := SkipLoad
		if errors.Is(err, port.ErrNoThermalSignal) {
			reason = SkipNoSignal
		}
		log.Warn("tile skipped", "tile", tile.ID, "reason", reason, "err", err)
		return tileOutcome{tileID: tile.ID, skip: reason}
	}

	start := time.Now()
	ext := s.deps.Extractor.Extract(tile)
	if s.deps.Observer != nil {
		s.deps.Observer.ObserveTile(time.Since(start))
	}
	if ext.MaskDropped {
		log.Debug("panel mask ignored", "tile", tile.ID)
	}
	log.Debug("tile processed",
		"tile", tile.ID,
		"components", ext.Components,
		"detections", len(ext.Detections),
	)

	out := tileOutcome{tileID: tile.ID, extraction: ext}
	if s.deps.Annotator != nil {
		if err := s.deps.Annotator.Annotate(tile, ext.Detections); err != nil {
			log.Warn("tile overlay failed", "tile", tile.ID, "err", err)
			out.annotateErr = true
		}
	}
	return out
}
