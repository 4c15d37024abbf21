// Package sqlite хранит прогоны и инвентарь неисправностей в SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"pv-hotspot/internal/domain/entity"
	"pv-hotspot/internal/domain/port"
)

// Repository реализует port.FaultRepository поверх SQLite.
// Детекции по тайлам не сохраняются.
type Repository struct {
	db *sql.DB
}

// runStats счётчики прогона, хранимые одной JSON-колонкой.
type runStats struct {
	Rejected       map[entity.RejectReason]int `json:"rejected,omitempty"`
	SkipReasons    map[string]int              `json:"skip_reasons,omitempty"`
	SeverityCounts map[entity.Severity]int     `json:"severity_counts,omitempty"`
}

// New открывает базу и применяет схему
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// у каждого соединения с :memory: своя база
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return repo, nil
}

// Close закрывает базу
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate() error {
	schema := `
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS runs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		tiles_total INTEGER NOT NULL,
		tiles_skipped INTEGER NOT NULL,
		detections INTEGER NOT NULL,
		merge_passes INTEGER NOT NULL,
		reported INTEGER NOT NULL,
		annual_kwh_loss REAL NOT NULL,
		stats JSON NOT NULL
	);

	CREATE TABLE IF NOT EXISTS faults (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		fault_id TEXT NOT NULL,
		fault_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		confidence REAL NOT NULL,
		delta_t_max REAL NOT NULL,
		zscore_max REAL NOT NULL,
		pixel_area INTEGER NOT NULL,
		merge_count INTEGER NOT NULL,
		loss_pct REAL NOT NULL,
		annual_kwh_loss REAL NOT NULL,
		lon REAL NOT NULL,
		lat REAL NOT NULL,
		bbox JSON NOT NULL,
		tiles JSON NOT NULL,
		priority REAL NOT NULL,
		PRIMARY KEY (run_id, fault_id),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_faults_severity ON faults(run_id, severity);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveRun сохраняет отчёт и его неисправности одной транзакцией
func (r *Repository) SaveRun(ctx context.Context, report *entity.Report) error {
	stats, err := json.Marshal(runStats{
		Rejected:       report.Rejected,
		SkipReasons:    report.SkipReasons,
		SeverityCounts: report.SeverityCounts,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal run stats: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, tiles_total, tiles_skipped,
			detections, merge_passes, reported, annual_kwh_loss, stats)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, report.RunID,
		report.StartedAt.UTC().Format(time.RFC3339Nano),
		report.FinishedAt.UTC().Format(time.RFC3339Nano),
		report.TilesTotal, report.TilesSkipped, report.Detections,
		report.MergePasses, report.Reported, report.AnnualKWhLoss, stats)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", report.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO faults (run_id, position, fault_id, fault_type, severity, confidence,
			delta_t_max, zscore_max, pixel_area, merge_count, loss_pct, annual_kwh_loss,
			lon, lat, bbox, tiles, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare fault insert: %w", err)
	}
	defer stmt.Close()

	for i, f := range report.Faults {
		bbox, err := json.Marshal(f.BBox)
		if err != nil {
			return fmt.Errorf("failed to marshal bbox of %s: %w", f.FaultID, err)
		}
		tiles, err := json.Marshal(f.Tiles)
		if err != nil {
			return fmt.Errorf("failed to marshal tiles of %s: %w", f.FaultID, err)
		}

		_, err = stmt.ExecContext(ctx, report.RunID, i, f.FaultID, string(f.FaultType),
			string(f.Severity), f.Confidence, f.DeltaTMax, f.ZScoreMax, f.PixelArea,
			f.MergeCount, f.LossPct, f.AnnualKWhLoss, f.Lon, f.Lat, bbox, tiles, f.Priority)
		if err != nil {
			return fmt.Errorf("failed to insert fault %s: %w", f.FaultID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", report.RunID, err)
	}
	return nil
}

// LatestRun возвращает последний сохранённый прогон с неисправностями
func (r *Repository) LatestRun(ctx context.Context) (*entity.Report, error) {
	var (
		report                entity.Report
		startedAt, finishedAt string
		stats                 []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, tiles_total, tiles_skipped, detections,
			merge_passes, reported, annual_kwh_loss, stats
		FROM runs ORDER BY seq DESC LIMIT 1
	`).Scan(&report.RunID, &startedAt, &finishedAt, &report.TilesTotal, &report.TilesSkipped,
		&report.Detections, &report.MergePasses, &report.Reported, &report.AnnualKWhLoss, &stats)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}

	if report.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	if report.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
		return nil, fmt.Errorf("failed to parse finished_at: %w", err)
	}

	var s runStats
	if err := json.Unmarshal(stats, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run stats: %w", err)
	}
	report.Rejected = s.Rejected
	report.SkipReasons = s.SkipReasons
	report.SeverityCounts = s.SeverityCounts

	report.Faults, err = r.faults(ctx, report.RunID)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// GetFault возвращает неисправность прогона, пустой runID означает последний прогон
func (r *Repository) GetFault(ctx context.Context, runID, faultID string) (*entity.Fault, error) {
	if runID == "" {
		err := r.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY seq DESC LIMIT 1`).Scan(&runID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, port.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query latest run id: %w", err)
		}
	}

	rows, err := r.db.QueryContext(ctx, selectFaults+` WHERE run_id = ? AND fault_id = ?`, runID, faultID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fault %s: %w", faultID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read fault %s: %w", faultID, err)
		}
		return nil, port.ErrNotFound
	}
	f, err := scanFault(rows)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

const selectFaults = `
	SELECT fault_id, fault_type, severity, confidence, delta_t_max, zscore_max,
		pixel_area, merge_count, loss_pct, annual_kwh_loss, lon, lat, bbox, tiles, priority
	FROM faults`

func (r *Repository) faults(ctx context.Context, runID string) ([]entity.Fault, error) {
	rows, err := r.db.QueryContext(ctx, selectFaults+` WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query faults: %w", err)
	}
	defer rows.Close()

	var faults []entity.Fault
	for rows.Next() {
		f, err := scanFault(rows)
		if err != nil {
			return nil, err
		}
		faults = append(faults, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate faults: %w", err)
	}
	return faults, nil
}

func scanFault(rows *sql.Rows) (entity.Fault, error) {
	var (
		f                   entity.Fault
		faultType, severity string
		bbox, tiles         []byte
	)
	err := rows.Scan(&f.FaultID, &faultType, &severity, &f.Confidence, &f.DeltaTMax,
		&f.ZScoreMax, &f.PixelArea, &f.MergeCount, &f.LossPct, &f.AnnualKWhLoss,
		&f.Lon, &f.Lat, &bbox, &tiles, &f.Priority)
	if err != nil {
		return f, fmt.Errorf("failed to scan fault: %w", err)
	}
	f.FaultType = entity.FaultType(faultType)
	f.Severity = entity.Severity(severity)

	if err := json.Unmarshal(bbox, &f.BBox); err != nil {
		return f, fmt.Errorf("failed to unmarshal bbox of %s: %w", f.FaultID, err)
	}
	if err := json.Unmarshal(tiles, &f.Tiles); err != nil {
		return f, fmt.Errorf("failed to unmarshal tiles of %s: %w", f.FaultID, err)
	}
	return f, nil
}

var _ port.FaultRepository = (*Repository)(nil)
