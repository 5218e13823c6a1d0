package handlers

import (
	"math"
	"strconv"
	"strings"
	"time"

	"streamboard/internal/app/infrastructure/config"
	"streamboard/internal/app/infrastructure/storage"
	"streamboard/internal/app/ports"
	"streamboard/pkg/logger"
)

const searchCacheTTL = 5 * time.Minute

type Handlers struct {
	log     logger.Logger
	manager *config.Manager
	store   ports.StreamStorePort
	twitch  ports.APIPort
	hub     ports.PushHubPort

	searchCache *storage.Cache[[]ports.Game]
}

func New(log logger.Logger, manager *config.Manager, store ports.StreamStorePort, twitch ports.APIPort, hub ports.PushHubPort) *Handlers {
	return &Handlers{
		log:         log,
		manager:     manager,
		store:       store,
		twitch:      twitch,
		hub:         hub,
		searchCache: storage.NewCache[[]ports.Game](256, searchCacheTTL, false, false, "", 0),
	}
}

func parseCSV(value string) []string {
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// parseIntPtr maps empty or malformed input to "unset", never to zero.
func parseIntPtr(value string) *int {
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(f)
	return &n
}
