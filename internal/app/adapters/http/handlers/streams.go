package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"streamboard/internal/app/ports"
)

func (h *Handlers) IndexHandler(c *gin.Context) {
	cfg := h.manager.Get()
	c.JSON(http.StatusOK, gin.H{
		"server_time":            time.Now().Unix(),
		"fetch_interval_seconds": cfg.Fetcher.IntervalSeconds,
	})
}

func (h *Handlers) StreamsHandler(c *gin.Context) {
	gameIDs := dedupe(parseCSV(c.Query("game_ids")))

	status := strings.ToLower(strings.TrimSpace(c.Query("status")))
	broadcasterType := ""
	switch status {
	case "partner", "affiliate", "verified":
		broadcasterType = status
	}

	q := ports.StreamQuery{
		GameIDs:         gameIDs,
		BroadcasterType: broadcasterType,
		MinViewers:      parseIntPtr(c.Query("min_viewers")),
		MaxViewers:      parseIntPtr(c.Query("max_viewers")),
		MinFollowers:    parseIntPtr(c.Query("min_followers")),
		MaxFollowers:    parseIntPtr(c.Query("max_followers")),
		IgnoredUserIDs:  dedupe(parseCSV(c.Query("ignored"))),
	}

	if len(gameIDs) > 0 {
		if err := h.store.TouchTrackedGames(gameIDs); err != nil {
			h.log.Error("Failed to touch tracked games", err)
		}
	}

	payload, err := h.store.QueryStreams(q)
	if err != nil {
		h.log.Error("Failed to query streams", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handlers) SearchGamesHandler(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, gin.H{"games": []ports.Game{}})
		return
	}

	cacheKey := strings.ToLower(q)
	if games, ok := h.searchCache.Get(cacheKey); ok {
		c.JSON(http.StatusOK, gin.H{"games": games})
		return
	}

	games, err := h.twitch.SearchCategories(q, 20)
	if err != nil {
		h.log.Error("Failed to search categories", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "search failed"})
		return
	}
	if games == nil {
		games = []ports.Game{}
	}

	if len(games) > 0 {
		if err := h.store.UpsertGames(games); err != nil {
			h.log.Error("Failed to upsert searched games", err)
		}
	}
	h.searchCache.Set(cacheKey, games)
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (h *Handlers) TouchTrackedHandler(c *gin.Context) {
	var body struct {
		GameIDs []string `json:"game_ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	gameIDs := make([]string, 0, len(body.GameIDs))
	for _, id := range body.GameIDs {
		if id = strings.TrimSpace(id); id != "" {
			gameIDs = append(gameIDs, id)
		}
	}
	gameIDs = dedupe(gameIDs)
	if len(gameIDs) == 0 {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	// Make sure game rows exist before tracking them.
	games, err := h.twitch.GetGames(gameIDs)
	if err != nil {
		h.log.Error("Failed to fetch game metadata", err)
	} else if err := h.store.UpsertGames(games); err != nil {
		h.log.Error("Failed to upsert games", err)
	}

	if err := h.store.TouchTrackedGames(gameIDs); err != nil {
		h.log.Error("Failed to touch tracked games", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "touch failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
