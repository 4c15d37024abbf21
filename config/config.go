package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramToken  string
	TelegramChatID int64 // при 0 сводка в чат не отправляется

	DBPath      string
	OutputDir   string
	LogDir      string
	LogLevel    string
	MetricsFile string

	Workers           int
	MergeRadiusM      float64
	DistanceMetric    string
	PanelKW           float64
	AnnualYieldH      float64
	MaxAnnotatedTiles int
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		DBPath:         getEnv("DB_PATH", "./outputs/faults.db"),
		OutputDir:      getEnv("OUTPUT_DIR", "./outputs"),
		LogDir:         getEnv("LOG_DIR", "./outputs/logs"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		MetricsFile:    getEnv("METRICS_FILE", "./outputs/metrics.prom"),
		DistanceMetric: getEnv("DISTANCE_METRIC", "haversine"),
	}

	var err error
	if cfg.TelegramChatID, err = getEnvInt64("TELEGRAM_CHAT_ID", 0); err != nil {
		return nil, err
	}
	if cfg.Workers, err = getEnvInt("WORKERS", runtime.NumCPU()); err != nil {
		return nil, err
	}
	if cfg.MaxAnnotatedTiles, err = getEnvInt("MAX_ANNOTATED_TILES", 200); err != nil {
		return nil, err
	}
	if cfg.MergeRadiusM, err = getEnvFloat("MERGE_RADIUS_M", 6.0); err != nil {
		return nil, err
	}
	if cfg.PanelKW, err = getEnvFloat("PANEL_KW", 0.54); err != nil {
		return nil, err
	}
	if cfg.AnnualYieldH, err = getEnvFloat("ANNUAL_YIELD_H", 1650); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет параметры конвейера
func (c *Config) Validate() error {
	var errs []error
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("WORKERS must be positive, got %d", c.Workers))
	}
	if c.MergeRadiusM <= 0 {
		errs = append(errs, fmt.Errorf("MERGE_RADIUS_M must be positive, got %g", c.MergeRadiusM))
	}
	if c.PanelKW <= 0 {
		errs = append(errs, fmt.Errorf("PANEL_KW must be positive, got %g", c.PanelKW))
	}
	if c.AnnualYieldH <= 0 {
		errs = append(errs, fmt.Errorf("ANNUAL_YIELD_H must be positive, got %g", c.AnnualYieldH))
	}
	if c.MaxAnnotatedTiles < 0 {
		errs = append(errs, fmt.Errorf("MAX_ANNOTATED_TILES must not be negative, got %d", c.MaxAnnotatedTiles))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
