package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	APIBase    string
	APIRPS     int
	APITimeout time.Duration

	RedisAddr  string
	RedisDB    int
	RedisPass  string
	CacheTTL   time.Duration
	SessionTTL time.Duration

	CookieSecure bool
	MySQLDSN     string

	Compensation string // none|delete
	BatchLimit   int

	ImportWorkers     int
	ImportSessionFile string
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:            env("APP_ENV", "prod"),
		HTTPAddr:          env("HTTP_ADDR", ":8080"),
		MetricsAddr:       env("METRICS_ADDR", ""),
		APIBase:           strings.TrimRight(env("API_BASE_URL", "http://127.0.0.1:5000/api"), "/"),
		APIRPS:            atoi("API_RPS", 20),
		APITimeout:        time.Duration(atoi("API_TIMEOUT_SECONDS", 20)) * time.Second,
		RedisAddr:         env("REDIS_ADDR", "localhost:6379"),
		RedisPass:         env("REDIS_PASSWORD", ""),
		RedisDB:           atoi("REDIS_DB", 0),
		CacheTTL:          time.Duration(atoi("CACHE_TTL_SECONDS", 30)) * time.Second,
		SessionTTL:        time.Duration(atoi("SESSION_TTL_HOURS", 24)) * time.Hour,
		CookieSecure:      env("COOKIE_SECURE", "false") == "true",
		MySQLDSN:          env("MYSQL_DSN", ""),
		Compensation:      strings.ToLower(env("WORKFLOW_COMPENSATION", "none")),
		BatchLimit:        atoi("WORKFLOW_BATCH_LIMIT", 8),
		ImportWorkers:     atoi("IMPORT_WORKERS", 4),
		ImportSessionFile: env("IMPORT_SESSION_FILE", ".hbnb-session.json"),
	}
	if c.Compensation != "none" && c.Compensation != "delete" {
		log.Warn().Str("value", c.Compensation).Msg("unknown WORKFLOW_COMPENSATION, using none")
		c.Compensation = "none"
	}
	if c.MySQLDSN == "" {
		log.Warn().Msg("MYSQL_DSN is empty, workflow journal disabled")
	}
	return c
}

func (c Config) IsDev() bool { return c.AppEnv == "dev" || c.AppEnv == "development" }

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
