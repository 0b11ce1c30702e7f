package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	// Privileged access. OWNER_STEAM_IDS is a comma separated list.
	AdminAPIKey   string   `env:"ADMIN_API_KEY"`
	OwnerSteamIDs []string `env:"OWNER_STEAM_IDS" envSeparator:","`
	ConfigSecret  string   `env:"CONFIG_SECRET"`
	SessionSecret string   `env:"SESSION_SECRET,required,notEmpty"`
	SessionCookie string   `env:"SESSION_COOKIE" envDefault:"ghost_session"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	WelcomeBonus    int64  `env:"WELCOME_BONUS" envDefault:"100"`
	CaseCatalogPath string `env:"CASE_CATALOG_PATH"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	DropWebhookURL      string `env:"DROP_WEBHOOK_URL"`
	DropWebhookWorkers  int    `env:"DROP_WEBHOOK_WORKERS" envDefault:"2"`
	DropWebhookRetryMax int    `env:"DROP_WEBHOOK_RETRY_MAX" envDefault:"3"`

	ServerStaleAfter time.Duration `env:"SERVER_STALE_AFTER" envDefault:"3m"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}

// IsOwner reports whether steamID is listed in OWNER_STEAM_IDS.
func (c ServerConfig) IsOwner(steamID string) bool {
	for _, id := range c.OwnerSteamIDs {
		if id != "" && id == steamID {
			return true
		}
	}
	return false
}
