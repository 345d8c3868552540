package config

import (
	"os"
	"path/filepath"
	"testing"
)

// unsetenv clears key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
}

func writeDotEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}
	return path
}

func TestLoadDotEnv_ShopSettings(t *testing.T) {
	for _, key := range []string{"PORT", "DB_PATH", "SESSION_SECRET", "SCENARIO_FILE"} {
		unsetenv(t, key)
	}

	path := writeDotEnv(t, `
# laffle local settings
PORT=9090
export DB_PATH=./laffle.db
SESSION_SECRET="waffle secret"
SCENARIO_FILE='calc.toml'
`)
	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}

	want := map[string]string{
		"PORT":           "9090",
		"DB_PATH":        "./laffle.db",
		"SESSION_SECRET": "waffle secret",
		"SCENARIO_FILE":  "calc.toml",
	}
	for key, value := range want {
		if got := os.Getenv(key); got != value {
			t.Fatalf("%s=%q, want %q", key, got, value)
		}
	}
}

func TestLoadDotEnv_ProcessEnvWins(t *testing.T) {
	t.Setenv("PORT", "7000")

	if err := loadDotEnv(writeDotEnv(t, "PORT=9090\n")); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if got := os.Getenv("PORT"); got != "7000" {
		t.Fatalf("PORT=%q, want 7000", got)
	}
}

func TestLoadDotEnv_MissingFileIsIgnored(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
}

func TestLoadDotEnv_MalformedFile(t *testing.T) {
	if err := loadDotEnv(writeDotEnv(t, "PORT=\"9090\n")); err == nil {
		t.Fatalf("expected error for unterminated quote")
	}
}
