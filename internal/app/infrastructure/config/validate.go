package config

import (
	"errors"
	"fmt"
)

func (m *Manager) validate(cfg *Config) error {
	// app
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true}
	if cfg.App.LogLevel != "" && !validLevels[cfg.App.LogLevel] {
		return fmt.Errorf("app.log_level must be one of trace, debug, info, warn, error, fatal; got %s", cfg.App.LogLevel)
	}
	if cfg.App.ListenAddr == "" {
		cfg.App.ListenAddr = ":5000"
	}
	if cfg.App.DatabasePath == "" {
		cfg.App.DatabasePath = "data/streamboard.sqlite3"
	}

	// twitch
	if cfg.Twitch.ClientID == "" {
		return errors.New("twitch.client_id is required")
	}
	if cfg.Twitch.ClientSecret == "" {
		return errors.New("twitch.client_secret is required")
	}

	// fetcher
	if cfg.Fetcher.IntervalSeconds < 30 {
		cfg.Fetcher.IntervalSeconds = 30
	}
	if cfg.Fetcher.MaxStreamsPerGame <= 0 {
		cfg.Fetcher.MaxStreamsPerGame = 200
	}
	if cfg.Fetcher.Languages == nil {
		cfg.Fetcher.Languages = []string{}
	}

	// limiter
	if (cfg.Limiter.RPS != 0 && cfg.Limiter.Burst == 0) || (cfg.Limiter.RPS == 0 && cfg.Limiter.Burst != 0) {
		return errors.New("limiter.rps and limiter.burst must both be set or both be zero")
	}

	return nil
}
