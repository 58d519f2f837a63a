package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies EDGESCAN_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env if present; missing files are fine.
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known EDGESCAN_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Mode, "EDGESCAN_MODE")
	setStr(&cfg.LogLevel, "EDGESCAN_LOG_LEVEL")

	setStr(&cfg.Polymarket.ClobHost, "EDGESCAN_POLYMARKET_CLOB_HOST")
	setStr(&cfg.Polymarket.GammaHost, "EDGESCAN_POLYMARKET_GAMMA_HOST")
	setStr(&cfg.Polymarket.WsHost, "EDGESCAN_POLYMARKET_WS_HOST")
	setInt(&cfg.Polymarket.RateLimit, "EDGESCAN_POLYMARKET_RATE_LIMIT")

	setStr(&cfg.OddsAPI.BaseURL, "EDGESCAN_ODDSAPI_BASE_URL")
	setStr(&cfg.OddsAPI.APIKey, "EDGESCAN_ODDSAPI_API_KEY")
	setStringSlice(&cfg.OddsAPI.Regions, "EDGESCAN_ODDSAPI_REGIONS")
	setInt(&cfg.OddsAPI.RateLimit, "EDGESCAN_ODDSAPI_RATE_LIMIT")

	setStr(&cfg.Postgres.DSN, "EDGESCAN_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "EDGESCAN_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "EDGESCAN_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "EDGESCAN_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "EDGESCAN_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "EDGESCAN_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "EDGESCAN_POSTGRES_SSLMODE")
	setBool(&cfg.Postgres.RunMigrations, "EDGESCAN_POSTGRES_RUN_MIGRATIONS")

	setStr(&cfg.Redis.Addr, "EDGESCAN_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "EDGESCAN_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "EDGESCAN_REDIS_DB")
	setBool(&cfg.Redis.TLSEnabled, "EDGESCAN_REDIS_TLS_ENABLED")

	setStr(&cfg.S3.Endpoint, "EDGESCAN_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "EDGESCAN_S3_REGION")
	setStr(&cfg.S3.Bucket, "EDGESCAN_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "EDGESCAN_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "EDGESCAN_S3_SECRET_KEY")

	setFloat64(&cfg.Analytics.MarginThreshold, "EDGESCAN_ANALYTICS_MARGIN_THRESHOLD")
	setFloat64(&cfg.Analytics.MinEdgePercent, "EDGESCAN_ANALYTICS_MIN_EDGE_PERCENT")

	setDuration(&cfg.Scan.Interval, "EDGESCAN_SCAN_INTERVAL")
	setInt(&cfg.Scan.FetchWidth, "EDGESCAN_SCAN_FETCH_WIDTH")
	setInt(&cfg.Scan.MaxMarkets, "EDGESCAN_SCAN_MAX_MARKETS")
	setStringSlice(&cfg.Scan.Sports, "EDGESCAN_SCAN_SPORTS")
	setBool(&cfg.Scan.Archive, "EDGESCAN_SCAN_ARCHIVE")

	setInt(&cfg.Server.Port, "EDGESCAN_SERVER_PORT")
	setStr(&cfg.Server.APIKey, "EDGESCAN_SERVER_API_KEY")
	setStringSlice(&cfg.Server.CORSOrigins, "EDGESCAN_SERVER_CORS_ORIGINS")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
