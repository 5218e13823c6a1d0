package ports

// PushEvent is what the hub fans out; it names the changed game and
// carries no payload, consumers re-fetch.
type PushEvent struct {
	Type   string `json:"type"`
	GameID string `json:"game_id"`
	Ts     int64  `json:"ts"`
}

type PushClient interface {
	ID() string
	Events() <-chan PushEvent
}

type PushHubPort interface {
	Subscribe(gameIDs []string) PushClient
	Unsubscribe(clientID string)
	PublishGameUpdated(gameID string)
}
