package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	cryptoutil "schoolhr/internal/platform/crypto"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Addr        string `envconfig:"APP_ADDR" default:":8080"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"text"`

	StoreDriver   string `envconfig:"STORE_DRIVER" default:"postgres"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RunMigrations bool   `envconfig:"RUN_MIGRATIONS" default:"true"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR" default:"migrations"`

	RunSeed           bool   `envconfig:"RUN_SEED" default:"true"`
	SchoolName        string `envconfig:"SCHOOL_NAME" default:"Demo School"`
	SchoolTimezone    string `envconfig:"SCHOOL_TIMEZONE" default:"UTC"`
	SeedAdminEmail    string `envconfig:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword string `envconfig:"SEED_ADMIN_PASSWORD"`

	JWTSecret   string        `envconfig:"JWT_SECRET"`
	TokenTTL    time.Duration `envconfig:"TOKEN_TTL" default:"12h"`
	BankDataKey string        `envconfig:"BANK_DATA_KEY"`

	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`

	MaxBodyBytes       int64 `envconfig:"MAX_BODY_BYTES" default:"1048576"`
	RateLimitPerMinute int   `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
	MetricsEnabled     bool  `envconfig:"METRICS_ENABLED" default:"true"`

	PayrollWorkers int    `envconfig:"PAYROLL_WORKERS" default:"4"`
	BankFileTitle  string `envconfig:"BANK_FILE_TITLE" default:"Salary Bank Transfer"`
	Currency       string `envconfig:"CURRENCY" default:"INR"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	if path := envFile(); path != "" {
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envFile picks ENV_FILE when set, else .env when present.
func envFile() string {
	if path := strings.TrimSpace(os.Getenv("ENV_FILE")); path != "" {
		return path
	}
	if _, err := os.Stat(".env"); err == nil {
		return ".env"
	}
	return ""
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.SchoolTimezone)
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is required")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %s or %s", StoreDriverPostgres, StoreDriverMemory)
	}
	if c.IsProduction() {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return errors.New("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.BankDataKey) == "" {
			return errors.New("BANK_DATA_KEY must be set in production for encryption at rest")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return errors.New("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.BankDataKey != "" {
		if _, err := cryptoutil.New(c.BankDataKey); err != nil {
			return fmt.Errorf("BANK_DATA_KEY: %w", err)
		}
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("SCHOOL_TIMEZONE: %w", err)
	}
	if c.MaxBodyBytes < 1024 {
		return errors.New("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.PayrollWorkers <= 0 {
		return errors.New("PAYROLL_WORKERS must be positive")
	}
	return nil
}
