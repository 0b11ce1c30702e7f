package config

import (
	"errors"
	"fmt"
)

type AppConfig struct {
	Server ServerConfig
	Log    LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, fmt.Errorf("log config: %w", err)
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, fmt.Errorf("server config: %w", err)
	}
	cfg := AppConfig{
		Server: serverCfg,
		Log:    logCfg,
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c AppConfig) Validate() error {
	if c.Server.WelcomeBonus < 0 {
		return errors.New("WELCOME_BONUS must not be negative")
	}
	if c.Server.ServerStaleAfter <= 0 {
		return errors.New("SERVER_STALE_AFTER must be positive")
	}
	if c.Log.MaxMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		return errors.New("LOG_MAX_MB, LOG_MAX_BACKUPS and LOG_MAX_AGE_DAYS must not be negative")
	}
	return nil
}
