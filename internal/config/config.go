package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/Simplici0/laffle/internal/breakeven"
	"github.com/Simplici0/laffle/internal/costing"
)

const (
	defaultDBPath      = "./dev.db"
	defaultPort        = "8080"
	defaultTemplateDir = "web/templates"
	defaultEnv         = "dev"
	defaultSessionTTL  = 12 * time.Hour
)

// Config holds application configuration sourced from environment variables
// and an optional TOML calculation file.
type Config struct {
	Env           string
	SessionSecret string
	DBPath        string
	Port          string
	TemplateDir   string
	LogLevel      string
	ScenarioFile  string
	SessionTTL    time.Duration
	Calculation   Calculation
}

// Calculation holds the caller-supplied defaults of the recipe calculator
// and the break-even simulator.
type Calculation struct {
	BatchSize     int     `toml:"batch_size"`
	SweepStep     int     `toml:"sweep_step"`
	SweepMax      int     `toml:"sweep_max"`
	SweepLimit    int     `toml:"sweep_limit"`
	OperatingDays int     `toml:"operating_days"`
	SalesPrice    float64 `toml:"sales_price"`
	UnitCost      float64 `toml:"unit_cost"`
	FixedCost     float64 `toml:"fixed_cost"`
}

// DefaultCalculation returns the shop's usual assumptions.
func DefaultCalculation() Calculation {
	return Calculation{
		BatchSize:     costing.DefaultBatchSize,
		SweepStep:     breakeven.DefaultSweepStep,
		SweepMax:      breakeven.DefaultSweepMax,
		SweepLimit:    3000,
		OperatingDays: breakeven.DefaultOperatingDays,
		SalesPrice:    300,
		UnitCost:      80,
		FixedCost:     150000,
	}
}

// Validate checks the calculation defaults.
func (c Calculation) Validate() error {
	switch {
	case c.BatchSize <= 0:
		return errors.New("batch_size must be greater than 0")
	case c.SweepStep <= 0:
		return errors.New("sweep_step must be greater than 0")
	case c.SweepLimit < 0:
		return errors.New("sweep_limit must not be negative")
	case c.SweepMax < 0 || c.SweepMax > c.SweepLimit:
		return fmt.Errorf("sweep_max must be between 0 and %d", c.SweepLimit)
	case c.OperatingDays <= 0:
		return errors.New("operating_days must be greater than 0")
	}
	return nil
}

// IsDev reports whether the app runs in local development mode.
func (c Config) IsDev() bool {
	return c.Env == "dev"
}

// Load reads .env (if present), environment variables and the TOML
// calculation file named by SCENARIO_FILE, and returns a validated Config.
func Load(log *zap.Logger) (Config, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Env:           getenvWithDefault("APP_ENV", defaultEnv),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		DBPath:        getenvWithDefault("DB_PATH", defaultDBPath),
		Port:          getenvWithDefault("PORT", defaultPort),
		TemplateDir:   getenvWithDefault("TEMPLATE_DIR", defaultTemplateDir),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		ScenarioFile:  os.Getenv("SCENARIO_FILE"),
		SessionTTL:    defaultSessionTTL,
		Calculation:   DefaultCalculation(),
	}

	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("SESSION_TTL must be a positive duration, got %q", raw)
		}
		cfg.SessionTTL = ttl
	}

	if cfg.ScenarioFile != "" {
		calc, err := LoadCalculation(cfg.ScenarioFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Calculation = calc
	}

	if strings.TrimSpace(cfg.SessionSecret) == "" {
		log.Warn("SESSION_SECRET is not set; session cookies use an insecure development key")
		cfg.SessionSecret = "laffle-dev-secret"
	}

	return cfg, nil
}

// LoadCalculation decodes a TOML file over the defaults. Keys missing from
// the file keep their default values.
func LoadCalculation(path string) (Calculation, error) {
	calc := DefaultCalculation()
	if _, err := toml.DecodeFile(path, &calc); err != nil {
		return Calculation{}, fmt.Errorf("parse calculation file %s: %w", path, err)
	}
	if err := calc.Validate(); err != nil {
		return Calculation{}, fmt.Errorf("validate calculation file %s: %w", path, err)
	}
	return calc, nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
