package http

import (
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"streamboard/internal/app/adapters/http/handlers"
	"streamboard/internal/app/adapters/http/middlewares"
	"streamboard/internal/app/infrastructure/config"
	"streamboard/internal/app/ports"
	"streamboard/pkg/logger"
)

type Router struct {
	router      *gin.Engine
	handlers    *handlers.Handlers
	middlewares *middlewares.Middlewares

	log     logger.Logger
	manager *config.Manager
}

func NewRouter(log logger.Logger, manager *config.Manager, store ports.StreamStorePort, twitch ports.APIPort, hub ports.PushHubPort) *Router {
	cfg := manager.Get()

	r := &Router{
		router:      gin.Default(),
		handlers:    handlers.New(log, manager, store, twitch, hub),
		middlewares: middlewares.New(cfg.Limiter.RPS, cfg.Limiter.Burst),
		log:         log,
		manager:     manager,
	}

	if cfg.App.AuthToken != "" {
		accounts := gin.Accounts{"admin": cfg.App.AuthToken}

		pprofGroup := r.router.Group("/", gin.BasicAuth(accounts))
		pprof.Register(pprofGroup)

		r.router.GET("/metrics", gin.BasicAuth(accounts), gin.WrapH(promhttp.Handler()))
	}

	r.router.GET("/", r.handlers.IndexHandler)

	api := r.router.Group("/api", r.middlewares.RateLimit(), r.middlewares.CountRequests())
	api.GET("/streams", r.handlers.StreamsHandler)
	api.GET("/search_games", r.handlers.SearchGamesHandler)
	api.POST("/touch_tracked", r.handlers.TouchTrackedHandler)
	api.GET("/sse", r.handlers.SSEHandler)
	api.GET("/ws", r.handlers.WSHandler)
	api.GET("/health", r.handlers.HealthHandler)

	return r
}

func (r *Router) Run() error {
	return r.router.Run(r.manager.Get().App.ListenAddr)
}
