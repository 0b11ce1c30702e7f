package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"ghostserver/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	outMu  sync.RWMutex
	outRaw io.Writer = os.Stdout
)

// Writer is the raw (non-console-formatted) destination used by the global
// logger. The HTTP access log writes JSON lines here too.
func Writer() io.Writer {
	outMu.RLock()
	defer outMu.RUnlock()
	return outRaw
}

// Init configures the global zerolog logger. The returned closer releases the
// log file when LOG_FILE is set and is a no-op otherwise.
func Init(cfg config.LogConfig) (io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var console io.Writer = os.Stdout
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	output := console
	var raw io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		fw := newRotatingFile(cfg)
		output = zerolog.MultiLevelWriter(console, fw)
		raw = io.MultiWriter(os.Stdout, fw)
		closer = fw
	}
	outMu.Lock()
	outRaw = raw
	outMu.Unlock()

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Str("service", "ghostserver").Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
