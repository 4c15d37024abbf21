// Package metrics собирает метрики прогона в собственный реестр Prometheus
// и выгружает их файлом для textfile-коллектора node_exporter.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"pv-hotspot/internal/domain/entity"
)

// Recorder метрики одного прогона.
type Recorder struct {
	registry *prometheus.Registry

	tileDuration prometheus.Histogram
	tiles        *prometheus.GaugeVec
	detections   prometheus.Gauge
	rejected     *prometheus.GaugeVec
	faults       *prometheus.GaugeVec
	mergePasses  prometheus.Gauge
	kwhLoss      prometheus.Gauge
	runDuration  prometheus.Gauge
	lastRun      prometheus.Gauge
}

// NewRecorder регистрирует метрики в новом реестре.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		tileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pvhotspot_tile_extract_duration_seconds",
			Help:    "Duration of hotspot extraction for a single tile.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}),
		tiles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pvhotspot_tiles",
			Help: "Tiles seen by the last run, by outcome.",
		}, []string{"outcome"}),
		detections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pvhotspot_detections",
			Help: "Per-tile detections before merging.",
		}),
		rejected: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pvhotspot_components_rejected",
			Help: "Connected components rejected by geometry filters, by reason.",
		}, []string{"reason"}),
		faults: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pvhotspot_faults",
			Help: "Merged faults of the last run, by severity.",
		}, []string{"severity"}),
		mergePasses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pvhotspot_merge_passes",
			Help: "Merge passes until the inventory converged.",
		}),
		kwhLoss: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pvhotspot_annual_kwh_loss",
			Help: "Estimated annual energy loss of all faults, kWh.",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pvhotspot_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pvhotspot_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}
	r.registry.MustRegister(
		r.tileDuration, r.tiles, r.detections, r.rejected,
		r.faults, r.mergePasses, r.kwhLoss, r.runDuration, r.lastRun,
	)
	return r
}

// Registry возвращает реестр метрик
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveTile учитывает длительность обработки тайла. Безопасен для горутин.
func (r *Recorder) ObserveTile(d time.Duration) {
	r.tileDuration.Observe(d.Seconds())
}

// ObserveReport переносит итоги прогона в метрики.
func (r *Recorder) ObserveReport(report *entity.Report) {
	r.tiles.WithLabelValues("processed").Set(float64(report.TilesTotal - report.TilesSkipped))
	r.tiles.WithLabelValues("skipped").Set(float64(report.TilesSkipped))
	r.detections.Set(float64(report.Detections))
	for reason, n := range report.Rejected {
		r.rejected.WithLabelValues(string(reason)).Set(float64(n))
	}
	for _, s := range entity.Severities() {
		r.faults.WithLabelValues(string(s)).Set(float64(report.SeverityCounts[s]))
	}
	r.mergePasses.Set(float64(report.MergePasses))
	r.kwhLoss.Set(report.AnnualKWhLoss)
	r.runDuration.Set(report.FinishedAt.Sub(report.StartedAt).Seconds())
	r.lastRun.Set(float64(report.FinishedAt.Unix()))
}

// WriteTextfile атомарно пишет метрики в файл формата Prometheus.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
