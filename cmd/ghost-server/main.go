package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appadmin "ghostserver/internal/app/admin"
	appgameserver "ghostserver/internal/app/gameserver"
	appplayer "ghostserver/internal/app/player"
	apppublic "ghostserver/internal/app/public"
	"ghostserver/internal/auth"
	"ghostserver/internal/cache"
	"ghostserver/internal/cases"
	"ghostserver/internal/config"
	"ghostserver/internal/droppush"
	"ghostserver/internal/feed"
	"ghostserver/internal/jobs"
	"ghostserver/internal/ledger"
	"ghostserver/internal/logging"
	"ghostserver/internal/store"
	httptransport "ghostserver/internal/transport/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const streamBufferSize = 500

func main() {
	appCfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logCloser, err := logging.Init(appCfg.Log)
	if err != nil {
		panic(err)
	}
	defer logCloser.Close()
	cfg := appCfg.Server

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()
	if err := st.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}

	catalog, err := cases.LoadCatalog(cfg.CaseCatalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.CaseCatalogPath).Msg("load case catalog failed")
	}

	rdb := connectRedis(ctx, cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	buf := feed.NewEventBuffer(streamBufferSize)
	defer buf.Close()

	var (
		bus       feed.Bus
		lbCache   apppublic.LeaderboardCache
		lbWriter  jobs.LeaderboardWriter
		sinks     []cases.DropSink
		balances  []ledger.BalanceSink
		redisPing httptransport.HealthCheck
	)
	var dropBus *cache.DropBus
	if rdb != nil {
		dropBus = cache.NewDropBus(rdb)
		board := cache.NewLeaderboard(rdb)
		bus, lbCache, lbWriter = dropBus, board, board
		sinks = append(sinks, board)
		balances = append(balances, board)
		redisPing = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	hub := feed.NewHub(buf, bus)
	sinks = append(sinks, hub)
	if dropBus != nil {
		go func() {
			if err := dropBus.Listen(ctx, hub.Ingest); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("drop bus listener stopped")
			}
		}()
	}

	pusher := droppush.NewManager(droppush.ConfigFromServer(cfg))
	if err := pusher.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("drop push start failed")
	}
	sinks = append(sinks, pusher)

	opener := cases.NewService(st, catalog, nil, sinks...)
	led := ledger.New(st, cfg.WelcomeBonus, balances...)
	players := appplayer.NewService(st, opener)

	sessions, err := auth.NewSessions(cfg.SessionSecret, cfg.SessionCookie)
	if err != nil {
		log.Fatal().Err(err).Msg("session init failed")
	}

	gameServer := appgameserver.NewService(led, st, players, opener, appgameserver.Options{
		WelcomeBonus: cfg.WelcomeBonus,
		StaleAfter:   cfg.ServerStaleAfter,
		Catalog:      catalog,
	})

	r := httptransport.NewRouter(httptransport.Deps{
		Config:      cfg,
		Policy:      auth.NewPolicy(sessions, cfg.AdminAPIKey, cfg.OwnerSteamIDs),
		Servers:     st,
		GameServer:  gameServer,
		Player:      players,
		Public:      apppublic.NewService(feed.NewService(st), st, lbCache, catalog),
		Admin:       appadmin.NewService(st, led),
		Stream:      buf,
		DBCheck:     st.Ping,
		ExtraChecks: map[string]httptransport.HealthCheck{"redis": redisPing},
	})
	httptransport.LogRoutes(r)

	scheduler := jobs.New(st, lbWriter, cfg.ServerStaleAfter)
	if err := scheduler.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("job scheduler start failed")
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Bool("redis", rdb != nil).Msg("http listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

// connectRedis returns nil when REDIS_ADDR is unset or unreachable; the
// server then runs single-instance with the leaderboard served from Postgres.
func connectRedis(ctx context.Context, cfg config.ServerConfig) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb, err := cache.Connect(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, continuing without it")
		return nil
	}
	return rdb
}
