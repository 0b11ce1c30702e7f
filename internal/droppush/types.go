package droppush

import (
	"time"

	"ghostserver/internal/droppush/platforms"
	"ghostserver/internal/feed"
)

type Target struct {
	Platform string
	Endpoint string
}

type Config struct {
	Enabled             bool
	Targets             []Target
	Workers             int
	RetryMax            int
	RetryBase           time.Duration
	FailureThreshold    int
	CircuitOpenDuration time.Duration
	RequestTimeout      time.Duration
	DispatchBuffer      int
	SiteURL             string
}

type pushJob struct {
	Target  Target
	Drop    feed.Drop
	Message platforms.Message
	Attempt int
}

func (j pushJob) key() string {
	return targetKey(j.Target)
}

func targetKey(t Target) string {
	return t.Platform + "|" + t.Endpoint
}
