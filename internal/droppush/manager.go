package droppush

import (
	"context"
	"sync"
	"time"

	"ghostserver/internal/droppush/platforms"
	"ghostserver/internal/feed"
	"ghostserver/internal/store"

	"github.com/rs/zerolog/log"
)

type breakerState struct {
	consecutiveFailures int
	openUntil           time.Time
}

// Manager pushes rare drops to chat webhooks from a small worker pool.
// OnDrop never blocks the caller; a full queue drops the message.
type Manager struct {
	cfg      Config
	adapters map[string]platforms.Adapter

	dispatchCh chan pushJob
	retryQ     *retryQueue
	done       chan struct{}

	mu           sync.Mutex
	started      bool
	breakerByKey map[string]breakerState
}

func NewManager(cfg Config) *Manager {
	client := platforms.NewHTTPClient(cfg.RequestTimeout)
	if cfg.DispatchBuffer <= 0 {
		cfg.DispatchBuffer = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 500 * time.Millisecond
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.CircuitOpenDuration <= 0 {
		cfg.CircuitOpenDuration = 30 * time.Second
	}
	m := &Manager{
		cfg: cfg,
		adapters: map[string]platforms.Adapter{
			"discord": platforms.NewDiscordAdapter(client),
		},
		dispatchCh:   make(chan pushJob, cfg.DispatchBuffer),
		done:         make(chan struct{}),
		breakerByKey: map[string]breakerState{},
	}
	m.retryQ = newRetryQueue(m.dispatchCh, m.done)
	return m
}

func (m *Manager) Start(ctx context.Context) error {
	if !m.cfg.Enabled {
		return nil
	}
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	for i := 0; i < m.cfg.Workers; i++ {
		go m.worker(ctx)
	}
	go func() {
		<-ctx.Done()
		close(m.done)
	}()
	log.Info().Int("workers", m.cfg.Workers).Int("targets", len(m.cfg.Targets)).Msg("drop push started")
	return nil
}

// OnDrop queues a push for rare drops only.
func (m *Manager) OnDrop(_ context.Context, open store.CaseOpen, _ int64) {
	if !m.cfg.Enabled {
		return
	}
	d := feed.ToDrop(open)
	if !d.Rare {
		return
	}
	msg := FormatDrop(d, m.cfg.SiteURL)
	for _, target := range m.cfg.Targets {
		if !m.enqueue(pushJob{Target: target, Drop: d, Message: msg}) {
			countPush("dropped")
		}
	}
}

func (m *Manager) enqueue(job pushJob) bool {
	select {
	case <-m.done:
		return false
	case m.dispatchCh <- job:
		countPush("queued")
		pushQueueLen.Set(float64(len(m.dispatchCh)))
		return true
	default:
		return false
	}
}
