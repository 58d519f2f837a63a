package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != "serve" {
		t.Fatalf("mode = %q", cfg.Mode)
	}
	if cfg.Scan.FetchWidth != 5 {
		t.Fatalf("fetch width = %d", cfg.Scan.FetchWidth)
	}
	if cfg.Analytics.MarginThreshold != 0.005 {
		t.Fatalf("margin = %v", cfg.Analytics.MarginThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadTOMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edgescan.toml")
	body := `
mode = "monitor"
log_level = "debug"

[scan]
interval = "15s"
fetch_width = 3

[analytics]
margin_threshold = 0.01
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != "monitor" || cfg.LogLevel != "debug" {
		t.Fatalf("mode/log = %q/%q", cfg.Mode, cfg.LogLevel)
	}
	if cfg.Scan.Interval.Duration != 15*time.Second {
		t.Fatalf("interval = %v", cfg.Scan.Interval.Duration)
	}
	if cfg.Scan.FetchWidth != 3 {
		t.Fatalf("fetch width = %d", cfg.Scan.FetchWidth)
	}
	if cfg.Analytics.MarginThreshold != 0.01 {
		t.Fatalf("margin = %v", cfg.Analytics.MarginThreshold)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("EDGESCAN_MODE", "monitor")
	t.Setenv("EDGESCAN_SERVER_PORT", "9090")
	t.Setenv("EDGESCAN_ANALYTICS_MARGIN_THRESHOLD", "0.02")
	t.Setenv("EDGESCAN_ODDSAPI_REGIONS", "us, eu")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != "monitor" {
		t.Fatalf("mode = %q", cfg.Mode)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Analytics.MarginThreshold != 0.02 {
		t.Fatalf("margin = %v", cfg.Analytics.MarginThreshold)
	}
	if len(cfg.OddsAPI.Regions) != 2 || cfg.OddsAPI.Regions[0] != "us" {
		t.Fatalf("regions = %v", cfg.OddsAPI.Regions)
	}
}

func TestValidateRejectsBadMode(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "yolo"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidateRequiresPostgresForScan(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "scan"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("scan mode without postgres must fail validation")
	}
	cfg.Postgres.DSN = "postgres://u:p@localhost:5432/edgescan"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
}
