package fetcher

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"streamboard/internal/app/adapters/metrics"
	"streamboard/internal/app/ports"
	"streamboard/pkg/logger"
)

const (
	followerBatch      = 25
	followerRetrySlot  = 6 * time.Hour
	followerRefreshTTL = 7 * 24 * time.Hour
)

// Fetcher keeps the stream cache warm for every tracked game and
// publishes a push notification per refreshed game.
type Fetcher struct {
	log    logger.Logger
	store  ports.StreamStorePort
	twitch ports.APIPort
	hub    ports.PushHubPort

	interval   time.Duration
	maxStreams int
	languages  []string

	stop chan struct{}
}

func New(log logger.Logger, store ports.StreamStorePort, twitch ports.APIPort, hub ports.PushHubPort,
	interval time.Duration, maxStreams int, languages []string) *Fetcher {
	if interval < 30*time.Second {
		interval = 30 * time.Second
	}
	return &Fetcher{
		log:        log,
		store:      store,
		twitch:     twitch,
		hub:        hub,
		interval:   interval,
		maxStreams: maxStreams,
		languages:  languages,
		stop:       make(chan struct{}),
	}
}

func (f *Fetcher) Start() {
	go f.run()
}

func (f *Fetcher) Stop() {
	close(f.stop)
}

func (f *Fetcher) run() {
	// Small initial delay so the server boots first.
	select {
	case <-time.After(time.Second):
	case <-f.stop:
		return
	}

	for {
		started := time.Now()
		if err := f.Tick(); err != nil {
			f.log.Error("Fetcher tick failed", err)
		}
		metrics.FetchTicks.Inc()
		metrics.FetchDuration.Observe(time.Since(started).Seconds())

		sleepFor := max(f.interval-time.Since(started), time.Second)
		select {
		case <-time.After(sleepFor):
		case <-f.stop:
			return
		}
	}
}

func (f *Fetcher) Tick() error {
	gameIDs, err := f.store.TrackedGames()
	if err != nil {
		return err
	}
	metrics.TrackedGames.Set(float64(len(gameIDs)))
	if len(gameIDs) == 0 {
		return nil
	}

	f.log.Debug("Fetching streams", slog.Int("tracked_games", len(gameIDs)))
	games, err := f.twitch.GetGames(gameIDs)
	if err != nil {
		f.log.Error("Failed to refresh game metadata", err)
	} else if err := f.store.UpsertGames(games); err != nil {
		f.log.Error("Failed to upsert games", err)
	}

	for _, gid := range gameIDs {
		if err := f.refreshGame(gid); err != nil {
			f.log.Error("Failed to refresh game", err, slog.String("game_id", gid))
			continue
		}
		f.hub.PublishGameUpdated(gid)
		metrics.PushEvents.With(prometheus.Labels{"game_id": gid}).Inc()
	}

	f.refreshFollowerCounts()

	purged, err := f.store.PurgeExpired()
	if err != nil {
		return err
	}
	if purged > 0 {
		f.log.Debug("Purged expired streams", slog.Int("deleted", purged))
	}
	return nil
}

func (f *Fetcher) refreshGame(gameID string) error {
	streams, err := f.twitch.GetStreams(gameID, f.maxStreams, f.languages)
	if err != nil {
		return err
	}
	f.log.Debug("Fetched streams", slog.String("game_id", gameID), slog.Int("streams", len(streams)))

	if err := f.store.UpsertStreams(gameID, streams); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(streams))
	userIDs := make([]string, 0, len(streams))
	for _, s := range streams {
		if s.UserID == "" {
			continue
		}
		if _, ok := seen[s.UserID]; ok {
			continue
		}
		seen[s.UserID] = struct{}{}
		userIDs = append(userIDs, s.UserID)
	}
	if len(userIDs) == 0 {
		return nil
	}

	users, err := f.twitch.GetUsers(userIDs)
	if err != nil {
		return err
	}

	profiles := make([]ports.Profile, 0, len(users))
	for _, u := range users {
		name, btype := u.DisplayName, u.BroadcasterType
		profiles = append(profiles, ports.Profile{
			UserID:          u.ID,
			DisplayName:     &name,
			BroadcasterType: &btype,
		})
	}
	return f.store.UpsertProfiles(profiles)
}

// refreshFollowerCounts updates a bounded batch of stale follower
// counts each tick; failures get a shorter retry slot so one blocked
// endpoint cannot starve the rest.
func (f *Fetcher) refreshFollowerCounts() {
	userIDs, err := f.store.ProfilesNeedingFollowers(followerBatch)
	if err != nil {
		f.log.Error("Failed to select profiles for follower refresh", err)
		return
	}
	if len(userIDs) == 0 {
		return
	}

	now := time.Now()
	profiles := make([]ports.Profile, 0, len(userIDs))
	okCount, deferredCount := 0, 0
	for _, uid := range userIDs {
		count, err := f.twitch.GetFollowerCount(uid)
		if err != nil {
			f.log.Error("Failed to fetch follower count", err, slog.String("user_id", uid))
			continue
		}

		expiresAt := now.Add(followerRefreshTTL).Unix()
		if count == nil {
			deferredCount++
			expiresAt = now.Add(followerRetrySlot).Unix()
		} else {
			okCount++
		}
		profiles = append(profiles, ports.Profile{
			UserID:            uid,
			FollowerCount:     count,
			FollowerExpiresAt: &expiresAt,
		})
	}

	if len(profiles) > 0 {
		if err := f.store.UpsertProfiles(profiles); err != nil {
			f.log.Error("Failed to upsert follower counts", err)
			return
		}
	}
	f.log.Debug("Follower counts updated", slog.Int("ok", okCount), slog.Int("deferred", deferredCount))
}
