package ports

// Profile is a broadcaster row in the stream cache. Nil pointers mean
// "keep whatever the store already has" on upsert.
type Profile struct {
	UserID            string
	DisplayName       *string
	BroadcasterType   *string
	FollowerCount     *int
	FollowerExpiresAt *int64
}

// StreamQuery carries the filter set of GET /api/streams. Nil numeric
// bounds are unset, never zero.
type StreamQuery struct {
	GameIDs         []string
	BroadcasterType string // "partner", "affiliate", "verified" or ""
	MinViewers      *int
	MaxViewers      *int
	MinFollowers    *int
	MaxFollowers    *int
	IgnoredUserIDs  []string
}

type StreamStorePort interface {
	UpsertGames(games []Game) error
	TouchTrackedGames(gameIDs []string) error
	TrackedGames() ([]string, error)
	UpsertStreams(gameID string, streams []Stream) error
	UpsertProfiles(profiles []Profile) error
	ProfilesNeedingFollowers(limit int) ([]string, error)
	PurgeExpired() (int, error)
	QueryStreams(q StreamQuery) (StreamsPayload, error)
}
