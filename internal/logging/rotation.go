package logging

import (
	"ghostserver/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

// newRotatingFile rotates cfg.File once it would grow past LOG_MAX_MB.
// Backups are named <name>-<timestamp>.<ext> next to it.
func newRotatingFile(cfg config.LogConfig) *lumberjack.Logger {
	maxMB := cfg.MaxMB
	if maxMB <= 0 {
		maxMB = 10
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
}
