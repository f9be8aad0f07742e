package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jsphweid/accompanist/constants"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Environment string `yaml:"environment"`
	Port        string `yaml:"port"`

	// External tools
	OMRCommand      string   `yaml:"omr_command"`
	OMRArgs         []string `yaml:"omr_args"`
	PdftoppmCommand string   `yaml:"pdftoppm_command"`
	RasterDPI       int      `yaml:"raster_dpi"`
	WorkDir         string   `yaml:"work_dir"` // root for isolated runs

	// Observability
	SentryDSN      string `yaml:"sentry_dsn"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`

	// Catalog of runs, disabled when CatalogTable is empty
	CatalogTable    string `yaml:"catalog_table"`
	CatalogEndpoint string `yaml:"catalog_endpoint"` // e.g. dynamodb-local
	AWSRegion       string `yaml:"aws_region"`
}

func Load() *Config {
	return &Config{
		Environment:     getEnv("ACCOMPANIST_ENV", "development"),
		Port:            getEnv("PORT", "8080"),
		OMRCommand:      getEnv("OMR_COMMAND", "oemer"),
		OMRArgs:         strings.Fields(getEnv("OMR_ARGS", "")),
		PdftoppmCommand: getEnv("PDFTOPPM_COMMAND", "pdftoppm"),
		RasterDPI:       getEnvInt("RASTER_DPI", constants.DefaultRasterDPI),
		WorkDir:         getEnv("WORK_DIR", os.TempDir()),
		SentryDSN:       getEnv("SENTRY_DSN", ""),
		MetricsEnabled:  getEnv("METRICS_ENABLED", "false") == "true",
		CatalogTable:    getEnv("CATALOG_TABLE", ""),
		CatalogEndpoint: getEnv("CATALOG_ENDPOINT", ""),
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
	}
}

// LoadFile loads the environment config and overlays the keys present in
// the YAML file at path. An empty path is the same as Load.
func LoadFile(path string) (*Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.RasterDPI <= 0 {
		return nil, fmt.Errorf("parse config %s: raster_dpi must be positive", path)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
