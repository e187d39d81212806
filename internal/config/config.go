// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/debtfolio/internal/modules/rates"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	DataDir         string  `validate:"required"` // Base directory for the databases (always absolute)
	WarehouseDBPath string  `validate:"required"`
	CacheDBPath     string  `validate:"required"`
	Port            int     `validate:"min=1,max=65535"`
	LogLevel        string  `validate:"oneof=trace debug info warn error"`
	DevMode         bool
	// InflationAnnual is the default annual inflation for real-rate carry,
	// read like any other rate ("3.5", "3.5%" and "0.035" are all 3.5%).
	// Nil when INFLATION_ANNUAL is set to an empty or unparseable value.
	InflationAnnual      *float64
	DefaultAlias         string        `validate:"required"`
	SnapshotCacheTTL     time.Duration `validate:"min=0"`
	CacheCleanupSchedule string        `validate:"required,cronspec"`
	WarmupSchedule       string        `validate:"omitempty,cronspec"` // Empty disables the warm-up job
	HistoryMonths        int           `validate:"min=1,max=60"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("cronspec", validateCronSpec); err != nil {
		panic(fmt.Sprintf("config: failed to register cronspec validation: %v", err))
	}
	return v
}

func validateCronSpec(fl validator.FieldLevel) bool {
	_, err := cronParser.Parse(fl.Field().String())
	return err == nil
}

// cronParser accepts the six-field (seconds first) specs the scheduler runs.
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DEBTFOLIO_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:              absDataDir,
		WarehouseDBPath:      getEnv("WAREHOUSE_DB_PATH", filepath.Join(absDataDir, "warehouse.db")),
		CacheDBPath:          getEnv("CACHE_DB_PATH", filepath.Join(absDataDir, "cache.db")),
		Port:                 getEnvAsInt("GO_PORT", 8001),
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", "info")),
		DevMode:              getEnvAsBool("DEV_MODE", false),
		InflationAnnual:      getEnvAsRate("INFLATION_ANNUAL", 0.035),
		DefaultAlias:         strings.TrimSpace(getEnv("DEFAULT_ALIAS", "UNIB")),
		SnapshotCacheTTL:     getEnvAsDuration("SNAPSHOT_CACHE_TTL", 15*time.Minute),
		CacheCleanupSchedule: getEnv("CACHE_CLEANUP_SCHEDULE", "0 */30 * * * *"),
		WarmupSchedule:       getEnv("WARMUP_SCHEDULE", "0 0 6 * * *"),
		HistoryMonths:        getEnvAsInt("HISTORY_MONTHS", 12),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsRate parses the variable with rates.ParseRate. It returns nil when
// the variable is set but blank or invalid, so an operator can switch the
// default off.
func getEnvAsRate(key string, defaultValue float64) *float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return &defaultValue
	}
	return rates.ParseRate(value)
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
