package droppush

import (
	"context"
	"errors"
	"time"

	"ghostserver/internal/droppush/platforms"

	"github.com/rs/zerolog/log"
)

var errCircuitOpen = errors.New("circuit_open")

func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case job := <-m.dispatchCh:
			pushQueueLen.Set(float64(len(m.dispatchCh)))
			m.processJob(ctx, job)
		}
	}
}

func (m *Manager) processJob(ctx context.Context, job pushJob) {
	adapter := m.adapters[job.Target.Platform]
	if adapter == nil {
		countPush("dropped")
		return
	}

	if err := m.beforeSend(job.key(), time.Now()); err != nil {
		countPush("circuit_open")
		m.retryOrDrop(job, err)
		return
	}

	err := adapter.Send(ctx, job.Target.Endpoint, job.Message)
	if err != nil {
		countPush("failed")
		m.afterFailure(job.key(), time.Now())
		m.retryOrDrop(job, err)
		return
	}
	countPush("sent")
	m.afterSuccess(job.key())
}

// retryOrDrop schedules another attempt with exponential backoff unless the
// error is permanent or attempts are used up.
func (m *Manager) retryOrDrop(job pushJob, err error) bool {
	var se *platforms.StatusError
	if errors.As(err, &se) && !se.Retryable() {
		log.Warn().Err(err).Str("drop_id", job.Drop.ID).Str("platform", job.Target.Platform).Msg("drop push rejected")
		countPush("rejected")
		return false
	}
	if job.Attempt >= m.cfg.RetryMax {
		log.Warn().Err(err).Str("drop_id", job.Drop.ID).Int("attempts", job.Attempt+1).Msg("drop push gave up")
		countPush("retry_dropped")
		return false
	}
	job.Attempt++
	countPush("retry")
	delay := m.cfg.RetryBase * time.Duration(1<<(job.Attempt-1))
	m.retryQ.Enqueue(job, delay)
	return true
}

func (m *Manager) beforeSend(key string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.breakerByKey[key]
	if !state.openUntil.IsZero() && now.Before(state.openUntil) {
		return errCircuitOpen
	}
	return nil
}

func (m *Manager) afterFailure(key string, now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state := m.breakerByKey[key]
	state.consecutiveFailures++
	if state.consecutiveFailures >= m.cfg.FailureThreshold {
		state.openUntil = now.Add(m.cfg.CircuitOpenDuration)
		state.consecutiveFailures = 0
	}
	m.breakerByKey[key] = state
}

func (m *Manager) afterSuccess(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breakerByKey[key] = breakerState{}
}
