package droppush

import (
	"strings"
	"time"

	"ghostserver/internal/config"
)

func ConfigFromServer(cfg config.ServerConfig) Config {
	out := Config{
		Workers:             cfg.DropWebhookWorkers,
		RetryMax:            cfg.DropWebhookRetryMax,
		RetryBase:           500 * time.Millisecond,
		FailureThreshold:    3,
		CircuitOpenDuration: 30 * time.Second,
		RequestTimeout:      5 * time.Second,
		DispatchBuffer:      256,
	}
	if len(cfg.CORSOrigins) > 0 {
		out.SiteURL = strings.TrimRight(cfg.CORSOrigins[0], "/")
	}
	endpoint := strings.TrimSpace(cfg.DropWebhookURL)
	if endpoint == "" {
		return out
	}
	out.Enabled = true
	out.Targets = []Target{{Platform: "discord", Endpoint: endpoint}}
	if out.Workers <= 0 {
		out.Workers = 2
	}
	if out.RetryMax < 0 {
		out.RetryMax = 0
	}
	return out
}
