// Package config defines the top-level configuration for edgescan and
// provides loading and validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by EDGESCAN_* environment
// variables.
type Config struct {
	Polymarket PolymarketConfig `toml:"polymarket"`
	OddsAPI    OddsAPIConfig    `toml:"oddsapi"`
	Postgres   PostgresConfig   `toml:"postgres"`
	Redis      RedisConfig      `toml:"redis"`
	S3         S3Config         `toml:"s3"`
	Analytics  AnalyticsConfig  `toml:"analytics"`
	Scan       ScanConfig       `toml:"scan"`
	Server     ServerConfig     `toml:"server"`
	Mode       string           `toml:"mode"`
	LogLevel   string           `toml:"log_level"`
}

// PolymarketConfig holds prediction-market API endpoints.
type PolymarketConfig struct {
	ClobHost  string `toml:"clob_host"`
	GammaHost string `toml:"gamma_host"`
	WsHost    string `toml:"ws_host"`
	// RateLimit is the per-window request budget against the CLOB API.
	RateLimit       int      `toml:"rate_limit"`
	RateLimitWindow duration `toml:"rate_limit_window"`
}

// OddsAPIConfig holds the bookmaker odds provider parameters.
type OddsAPIConfig struct {
	BaseURL         string   `toml:"base_url"`
	APIKey          string   `toml:"api_key"`
	Regions         []string `toml:"regions"`
	RateLimit       int      `toml:"rate_limit"`
	RateLimitWindow duration `toml:"rate_limit_window"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters for report archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Prefix         string `toml:"prefix"`
}

// AnalyticsConfig tunes the engine's heuristic cutoffs. Zero values fall
// back to the engine defaults.
type AnalyticsConfig struct {
	MarginThreshold  float64 `toml:"margin_threshold"`
	MinEdgePercent   float64 `toml:"min_edge_percent"`
	ProbeNotionalUSD float64 `toml:"probe_notional_usd"`
}

// ScanConfig controls the periodic scan loop.
type ScanConfig struct {
	Interval duration `toml:"interval"`
	// FetchWidth bounds concurrent in-flight source fetches per scan.
	FetchWidth int `toml:"fetch_width"`
	// MaxMarkets caps how many active markets one scan covers.
	MaxMarkets int `toml:"max_markets"`
	// Sports lists bookmaker sport keys to scan; empty means prediction
	// markets only.
	Sports  []string `toml:"sports"`
	Archive bool     `toml:"archive"`
	// QuoteTTL is how long cached quotes stay fresh enough to reuse.
	QuoteTTL duration `toml:"quote_ttl"`
}

// ServerConfig holds the HTTP API parameters.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
	// RateLimitPerMin is the per-client request budget; 0 disables it.
	RateLimitPerMin int `toml:"rate_limit_per_min"`
}

// duration wraps time.Duration for TOML decoding of strings like "30s".
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Defaults returns the baseline configuration that a TOML file is decoded
// over.
func Defaults() Config {
	return Config{
		Polymarket: PolymarketConfig{
			ClobHost:        "https://clob.polymarket.com",
			GammaHost:       "https://gamma-api.polymarket.com",
			WsHost:          "wss://ws-subscriptions-clob.polymarket.com/ws",
			RateLimit:       60,
			RateLimitWindow: duration{10 * time.Second},
		},
		OddsAPI: OddsAPIConfig{
			BaseURL:         "https://api.the-odds-api.com",
			Regions:         []string{"eu", "uk"},
			RateLimit:       30,
			RateLimitWindow: duration{time.Minute},
		},
		Postgres: PostgresConfig{
			Port:         5432,
			SSLMode:      "disable",
			PoolMaxConns: 10,
			PoolMinConns: 2,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
		},
		Analytics: AnalyticsConfig{
			MarginThreshold:  0.005,
			MinEdgePercent:   1.0,
			ProbeNotionalUSD: 5000,
		},
		Scan: ScanConfig{
			Interval:   duration{time.Minute},
			FetchWidth: 5,
			MaxMarkets: 50,
			QuoteTTL:   duration{30 * time.Second},
		},
		Server: ServerConfig{
			Port:            8080,
			RateLimitPerMin: 120,
		},
		Mode:     "serve",
		LogLevel: "info",
	}
}

// Validate checks the configuration for structural problems and returns an
// error describing every violation found.
func (c *Config) Validate() error {
	var problems []string

	switch strings.ToLower(c.Mode) {
	case "serve", "scan", "monitor", "full":
	default:
		problems = append(problems, fmt.Sprintf("mode %q is not one of serve, scan, monitor, full", c.Mode))
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Scan.FetchWidth <= 0 {
		problems = append(problems, "scan.fetch_width must be positive")
	}
	if c.Scan.Interval.Duration <= 0 {
		problems = append(problems, "scan.interval must be positive")
	}
	if c.Analytics.MarginThreshold < 0 || c.Analytics.MarginThreshold >= 1 {
		problems = append(problems, fmt.Sprintf("analytics.margin_threshold %v outside [0,1)", c.Analytics.MarginThreshold))
	}
	if c.Analytics.ProbeNotionalUSD <= 0 {
		problems = append(problems, "analytics.probe_notional_usd must be positive")
	}

	if needsPostgres(c.Mode) && c.Postgres.DSN == "" && c.Postgres.Host == "" {
		problems = append(problems, "postgres.dsn or postgres.host required for mode "+c.Mode)
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// needsPostgres reports whether a mode persists history.
func needsPostgres(mode string) bool {
	switch strings.ToLower(mode) {
	case "scan", "full":
		return true
	default:
		return false
	}
}
