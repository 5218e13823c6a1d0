package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	router "streamboard/internal/app/adapters/http"
	"streamboard/internal/app/adapters/metrics"
	"streamboard/internal/app/adapters/platform/twitch/api"
	"streamboard/internal/app/adapters/sse"
	"streamboard/internal/app/domain/fetcher"
	"streamboard/internal/app/infrastructure/config"
	"streamboard/internal/app/infrastructure/storage"
	"streamboard/pkg/logger"
)

const configPath = "config.json"

func New() error {
	client := &http.Client{
		Timeout:   30 * time.Second,
		Transport: http.DefaultTransport,
	}
	log := logger.New("logs/streamboard.log")

	manager, err := config.New(configPath)
	if err != nil {
		log.Fatal("Error loading config", err)
	}

	cfg := manager.Get()
	log.SetLogLevel(cfg.App.LogLevel)
	gin.SetMode(cfg.App.GinMode)

	prometheus.MustRegister(metrics.FetchDuration)

	db, err := storage.NewDB(cfg.App.DatabasePath)
	if err != nil {
		log.Fatal("Error opening stream cache", err)
	}
	defer db.Close()

	twitch := api.NewTwitch(logger.NewPrefixedLogger(log, "twitch"), manager, client)
	hub := sse.NewHub(logger.NewPrefixedLogger(log, "push"))

	f := fetcher.New(
		logger.NewPrefixedLogger(log, "fetcher"),
		db, twitch, hub,
		time.Duration(cfg.Fetcher.IntervalSeconds)*time.Second,
		cfg.Fetcher.MaxStreamsPerGame,
		cfg.Fetcher.Languages,
	)
	f.Start()
	defer f.Stop()

	r := router.NewRouter(log, manager, db, twitch, hub)
	log.Info("Streamboard server started")
	return r.Run()
}
