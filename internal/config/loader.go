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
// built-in defaults, applies COPYVIEW_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known COPYVIEW_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Server ──
	setInt(&cfg.Server.Port, "COPYVIEW_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "COPYVIEW_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "COPYVIEW_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "COPYVIEW_SERVER_RATE_LIMIT")
	setDuration(&cfg.Server.RateWindow, "COPYVIEW_SERVER_RATE_WINDOW")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "COPYVIEW_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "COPYVIEW_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "COPYVIEW_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "COPYVIEW_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "COPYVIEW_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "COPYVIEW_REDIS_TLS_ENABLED")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "COPYVIEW_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "COPYVIEW_DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "COPYVIEW_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "COPYVIEW_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "COPYVIEW_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "COPYVIEW_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "COPYVIEW_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "COPYVIEW_POSTGRES_SSLMODE")
	setStr(&cfg.Postgres.SSLMode, "COPYVIEW_POSTGRES_SSL_MODE") // compatibility alias
	setInt(&cfg.Postgres.PoolMaxConns, "COPYVIEW_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "COPYVIEW_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "COPYVIEW_POSTGRES_RUN_MIGRATIONS")

	// ── Polymarket ──
	setStr(&cfg.Polymarket.ClobHost, "COPYVIEW_POLYMARKET_CLOB_HOST")
	setStr(&cfg.Polymarket.DataHost, "COPYVIEW_POLYMARKET_DATA_HOST")

	// ── Chain ──
	setStr(&cfg.Chain.RPCURL, "COPYVIEW_CHAIN_RPC_URL")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "COPYVIEW_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "COPYVIEW_S3_REGION")
	setStr(&cfg.S3.Bucket, "COPYVIEW_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "COPYVIEW_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "COPYVIEW_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "COPYVIEW_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "COPYVIEW_S3_FORCE_PATH_STYLE")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "COPYVIEW_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "COPYVIEW_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "COPYVIEW_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "COPYVIEW_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "COPYVIEW_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

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
