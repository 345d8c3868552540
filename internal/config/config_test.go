package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadCalculation_OverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calc.toml")
	content := []byte(`
batch_size = 24
sales_price = 350.5
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write toml: %v", err)
	}

	calc, err := LoadCalculation(path)
	if err != nil {
		t.Fatalf("LoadCalculation: %v", err)
	}

	want := DefaultCalculation()
	want.BatchSize = 24
	want.SalesPrice = 350.5
	if calc != want {
		t.Fatalf("calc = %+v, want %+v", calc, want)
	}
}

func TestLoadCalculation_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calc.toml")
	if err := os.WriteFile(path, []byte("sweep_step = 0\n"), 0o600); err != nil {
		t.Fatalf("write toml: %v", err)
	}

	_, err := LoadCalculation(path)
	if err == nil || !strings.Contains(err.Error(), "sweep_step") {
		t.Fatalf("err = %v, want sweep_step validation error", err)
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())

	calcPath := filepath.Join(t.TempDir(), "calc.toml")
	if err := os.WriteFile(calcPath, []byte("sweep_max = 2000\n"), 0o600); err != nil {
		t.Fatalf("write toml: %v", err)
	}

	t.Setenv("PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/laffle.db")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("SCENARIO_FILE", calcPath)
	t.Setenv("APP_ENV", "prod")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "9090" || cfg.DBPath != "/tmp/laffle.db" || cfg.SessionSecret != "s3cret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}
	if cfg.Calculation.SweepMax != 2000 {
		t.Fatalf("SweepMax = %d, want 2000", cfg.Calculation.SweepMax)
	}
	if cfg.IsDev() {
		t.Fatalf("APP_ENV=prod must not be dev")
	}
}

func TestLoad_DefaultsAndDevSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "DB_PATH", "SESSION_SECRET", "SESSION_TTL", "SCENARIO_FILE", "APP_ENV", "TEMPLATE_DIR"} {
		unsetenv(t, key)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != defaultPort || cfg.DBPath != defaultDBPath || cfg.TemplateDir != defaultTemplateDir {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionSecret == "" {
		t.Fatalf("expected development session secret")
	}
	if cfg.Calculation != DefaultCalculation() {
		t.Fatalf("Calculation = %+v", cfg.Calculation)
	}
	if !cfg.IsDev() {
		t.Fatalf("default env must be dev")
	}
}

func TestLoad_InvalidSessionTTL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SESSION_TTL", "soon")

	if _, err := Load(nil); err == nil {
		t.Fatalf("expected SESSION_TTL error")
	}
}
