package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"pv-hotspot/config"
	telegram "pv-hotspot/internal/api"
	app "pv-hotspot/internal/application"
	"pv-hotspot/internal/container"
	"pv-hotspot/internal/domain/merge"
	"pv-hotspot/internal/domain/scoring"
	"pv-hotspot/internal/infrastructure/export"
	"pv-hotspot/internal/infrastructure/logging"
	"pv-hotspot/internal/infrastructure/metrics"
	"pv-hotspot/internal/infrastructure/storage"
	"pv-hotspot/internal/infrastructure/storage/sqlite"
	"pv-hotspot/internal/infrastructure/thermal"
	"pv-hotspot/internal/infrastructure/tiles"
	"pv-hotspot/internal/infrastructure/vision"
)

const usage = `usage:
  pv-hotspot analyze -manifest tiles.yaml   find, merge and rank hotspots
  pv-hotspot serve                          run the Telegram query bot`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, closer, err := logging.New(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "analyze":
		err = analyze(ctx, cfg, logger, os.Args[2:])
	case "serve":
		err = serve(ctx, cfg, logger)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "command", os.Args[1], "err", err)
		stop()
		closer.Close()
		os.Exit(1)
	}
}

func analyze(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	manifestPath := fs.String("manifest", "tiles.yaml", "tile manifest (YAML)")
	outDir := fs.String("out", cfg.OutputDir, "directory for CSV, GeoJSON and overlays")
	workers := fs.Int("workers", cfg.Workers, "parallel tile workers")
	noNotify := fs.Bool("no-notify", false, "do not push the summary to Telegram")
	if err := fs.Parse(args); err != nil {
		return err
	}

	manifest, err := tiles.LoadManifest(*manifestPath)
	if err != nil {
		return err
	}
	metric, err := merge.MetricByName(cfg.DistanceMetric)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	repo, err := openRepository(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	merger := merge.New(cfg.MergeRadiusM, metric, scoring.EnergyModel{
		PanelKW:     cfg.PanelKW,
		AnnualYield: cfg.AnnualYieldH,
	})
	merger.Index = true

	recorder := metrics.NewRecorder()
	deps := app.PipelineDeps{
		Extractor: vision.NewHotspotExtractor(),
		Merger:    merger,
		Annotator: vision.NewAnnotator(filepath.Join(*outDir, "overlays"), cfg.MaxAnnotatedTiles),
		Observer:  recorder,
		Workers:   *workers,
		Logger:    logger,
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 && !*noNotify {
		api, err := telegram.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			return err
		}
		deps.Notifier = telegram.NewTelegramNotifier(api, cfg.TelegramChatID, app.TopLimit)
	}

	services := container.New(storage.NewMemoryUserRepository(), repo, deps)

	logger.Info("manifest loaded", "path", *manifestPath, "crs", manifest.CRS, "tiles", len(manifest.Tiles))
	report, err := services.PipelineService.Run(ctx, tiles.NewLoader(manifest, thermal.DefaultClipSigma))
	if err != nil {
		return err
	}

	csvPath := filepath.Join(*outDir, "faults.csv")
	if err := export.WriteCSV(csvPath, report.Faults); err != nil {
		return err
	}
	geoPath := filepath.Join(*outDir, "faults.geojson")
	if err := export.WriteGeoJSON(geoPath, report.Faults); err != nil {
		return err
	}
	if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Warn("metrics not written", "err", err)
	}

	logger.Info("inventory exported", "csv", csvPath, "geojson", geoPath, "faults", len(report.Faults))
	return nil
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}

	repo, err := openRepository(cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	// Собираем сервисы приложения
	services := container.New(storage.NewMemoryUserRepository(), repo, app.PipelineDeps{Logger: logger})

	bot, err := telegram.NewBot(cfg.TelegramToken, services, logger)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	logger.Info("bot is running", "db", cfg.DBPath)
	return bot.Run(ctx)
}

func openRepository(path string) (*sqlite.Repository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	return sqlite.New(path)
}
