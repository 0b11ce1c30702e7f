package httptransport

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	appadmin "ghostserver/internal/app/admin"
	appgameserver "ghostserver/internal/app/gameserver"
	appplayer "ghostserver/internal/app/player"
	apppublic "ghostserver/internal/app/public"
	"ghostserver/internal/auth"
	"ghostserver/internal/config"
	"ghostserver/internal/feed"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Deps struct {
	Config     config.ServerConfig
	Policy     *auth.Policy
	Servers    ServerLookup
	GameServer *appgameserver.Service
	Player     *appplayer.Service
	Public     *apppublic.Service
	Admin      *appadmin.Service
	Stream     *feed.EventBuffer

	DBCheck     HealthCheck
	ExtraChecks map[string]HealthCheck
}

func NewRouter(d Deps) *chi.Mux {
	gameHandlers := NewGameServerHandlers(d.GameServer)
	playerHandlers := NewPlayerHandlers(d.Player)
	publicHandlers := NewPublicHandlers(d.Public)
	adminHandlers := NewAdminHandlers(d.Admin)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(MetricsMiddleware)
	r.Use(PrincipalMiddleware(d.Policy))

	r.With(APILogMiddleware()).Get("/healthz", Health(d.DBCheck, d.ExtraChecks))
	r.With(APILogMiddleware(), RequireAdmin).Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.Config.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", "Last-Event-ID", "X-Admin-Key"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		r.Get("/feed", publicHandlers.Feed())
		r.Get("/feed/stream", StreamHandler(d.Stream))
		r.Get("/stats", publicHandlers.Stats())
		r.Get("/leaderboard", publicHandlers.Leaderboard())
		r.Get("/players/search", publicHandlers.SearchPlayers())
		r.Get("/cases", publicHandlers.Cases())
		r.Get("/auth/session", playerHandlers.Session())

		r.With(ConfigSecretMiddleware(d.Config.ConfigSecret)).Get("/server/config", gameHandlers.Config())

		r.Group(func(r chi.Router) {
			r.Use(ServerKeyMiddleware(d.Servers))
			r.Use(BodyCaptureMiddleware(4096))
			r.Post("/player/register", gameHandlers.Register())
			r.Post("/player/connect", gameHandlers.Connect())
			r.Post("/player/sync", gameHandlers.Sync())
			r.Post("/player/cases/open", gameHandlers.OpenCase())
			r.Post("/souls/add", gameHandlers.AddSouls())
			r.Post("/souls/spend", gameHandlers.SpendSouls())
			r.Post("/server/heartbeat", gameHandlers.Heartbeat())
		})

		r.Route("/me", func(r chi.Router) {
			r.Use(RequirePlayer)
			r.Get("/", playerHandlers.Me())
			r.Post("/cases/{case_id}/open", playerHandlers.OpenCase())
			r.Post("/inventory/{item_id}/equip", playerHandlers.Equip())
			r.Post("/inventory/{item_id}/favorite", playerHandlers.Favorite())
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Get("/players", adminHandlers.Players())
			r.Put("/players/{steam_id}/souls", adminHandlers.SetSouls())
			r.Put("/players/{steam_id}/premium", adminHandlers.SetPremium())
			r.Get("/players/{steam_id}/audit", adminHandlers.Audit())
			r.Get("/transactions", adminHandlers.Transactions())
			r.MethodFunc(http.MethodGet, "/servers", adminHandlers.Servers())
			r.MethodFunc(http.MethodPost, "/servers", adminHandlers.Servers())
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
