package jobs

import (
	"context"
	"time"

	"ghostserver/internal/store"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	SweepSpec   = "@every 1m"
	RebuildSpec = "@every 5m"

	// leaderboardSize bounds the ZSET; the public board never pages past it.
	leaderboardSize = 1000
	jobTimeout      = 30 * time.Second
)

type Store interface {
	MarkStaleServersOffline(ctx context.Context, cutoff time.Time) (int64, error)
	ListLeaderboard(ctx context.Context, by string, limit int) ([]store.LeaderboardEntry, error)
}

type LeaderboardWriter interface {
	Rebuild(ctx context.Context, entries []store.LeaderboardEntry) error
}

// Scheduler runs periodic maintenance. Runs never overlap; a job still
// running when its next tick fires skips that tick.
type Scheduler struct {
	cron       *cron.Cron
	st         Store
	board      LeaderboardWriter
	staleAfter time.Duration
	now        func() time.Time
}

// New accepts a nil board when Redis is not configured; the rebuild job is
// then not scheduled.
func New(st Store, board LeaderboardWriter, staleAfter time.Duration) *Scheduler {
	if staleAfter <= 0 {
		staleAfter = 3 * time.Minute
	}
	logger := cronLogger{}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		), cron.WithLogger(logger)),
		st:         st,
		board:      board,
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Start registers the jobs, warms the leaderboard once and starts the
// scheduler. It stops when ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(SweepSpec, func() { s.run(ctx, "sweep_stale_servers", s.sweep) }); err != nil {
		return err
	}
	if s.board != nil {
		if _, err := s.cron.AddFunc(RebuildSpec, func() { s.run(ctx, "rebuild_leaderboard", s.RebuildLeaderboard) }); err != nil {
			return err
		}
		go s.run(ctx, "rebuild_leaderboard", s.RebuildLeaderboard)
	}
	s.cron.Start()
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
	return nil
}

func (s *Scheduler) run(parent context.Context, name string, fn func(context.Context) error) {
	if parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithTimeout(parent, jobTimeout)
	defer cancel()
	start := s.now()
	err := fn(ctx)
	result := "ok"
	if err != nil {
		result = "error"
		log.Error().Err(err).Str("job", name).Msg("job failed")
	}
	jobRuns.WithLabelValues(name, result).Inc()
	jobDuration.WithLabelValues(name).Observe(s.now().Sub(start).Seconds())
}

func (s *Scheduler) sweep(ctx context.Context) error {
	_, err := s.SweepStaleServers(ctx)
	return err
}

// SweepStaleServers marks servers offline whose last heartbeat is older than
// the configured stale window.
func (s *Scheduler) SweepStaleServers(ctx context.Context) (int64, error) {
	n, err := s.st.MarkStaleServersOffline(ctx, s.now().Add(-s.staleAfter))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("servers", n).Msg("stale servers marked offline")
	}
	return n, nil
}

func (s *Scheduler) RebuildLeaderboard(ctx context.Context) error {
	if s.board == nil {
		return nil
	}
	entries, err := s.st.ListLeaderboard(ctx, "souls", leaderboardSize)
	if err != nil {
		return err
	}
	if err := s.board.Rebuild(ctx, entries); err != nil {
		return err
	}
	log.Debug().Int("entries", len(entries)).Msg("leaderboard rebuilt")
	return nil
}

// cronLogger routes cron's own messages into zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
