package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"DASH_HOST", "DASH_PORT", "DASH_DATA_DIR", "DASH_DEFAULT_DRIVER", "DASH_DEFAULT_VEHICLE", "MAPBOX_TOKEN"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr() != "0.0.0.0:8050" {
		t.Fatalf("addr %s", cfg.Addr())
	}
	if cfg.DefaultPair.Driver != "Ridwan" || cfg.DefaultPair.Vehicle != "SBS6289D" {
		t.Fatalf("default pair %+v", cfg.DefaultPair)
	}
	if cfg.DataDir != "./data" {
		t.Fatalf("data dir %s", cfg.DataDir)
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("DASH_PORT", "")
	t.Setenv("MAPBOX_TOKEN", "")
	t.Setenv("DASH_DEFAULT_VEHICLE", "")
	t.Setenv("DASH_HOST", "127.0.0.1")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "MAPBOX_TOKEN=pk.test\nDASH_PORT=9000\nDASH_HOST=10.0.0.1\nDASH_DEFAULT_VEHICLE=SBS0001A\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set
	t.Cleanup(func() {
		os.Unsetenv("MAPBOX_TOKEN")
		os.Unsetenv("DASH_PORT")
		os.Unsetenv("DASH_DEFAULT_VEHICLE")
	})
	os.Unsetenv("MAPBOX_TOKEN")
	os.Unsetenv("DASH_PORT")
	os.Unsetenv("DASH_DEFAULT_VEHICLE")

	cfg, err := LoadFile(envFile)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MapToken != "pk.test" || cfg.Port != 9000 || cfg.DefaultPair.Vehicle != "SBS0001A" {
		t.Fatalf("env file not applied: %+v", cfg)
	}
	if cfg.Host != "127.0.0.1" {
		t.Fatalf("environment should win over .env, got host %s", cfg.Host)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("DASH_PORT", "eighty")
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for non-numeric port")
	}

	t.Setenv("DASH_PORT", "70000")
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for out of range port")
	}
}
