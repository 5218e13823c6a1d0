package ports

// Game is a Twitch category. BoxArtURL is a template with
// {width}x{height} placeholders resolved by the renderer.
type Game struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	BoxArtURL string `json:"box_art_url"`
}

type Stream struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	UserName        string `json:"user_name"`
	Title           string `json:"title"`
	ViewerCount     int    `json:"viewer_count"`
	StartedAt       string `json:"started_at"`
	Language        string `json:"language"`
	ThumbnailURL    string `json:"thumbnail_url"`
	BroadcasterType string `json:"broadcaster_type"`
	FollowerCount   *int   `json:"follower_count"`
}

type GameGroup struct {
	Game    Game     `json:"game"`
	Streams []Stream `json:"streams"`
}

type StreamsPayload struct {
	Games []GameGroup `json:"games"`
}

// User is the subset of a Helix user relevant to stream filtering.
type User struct {
	ID              string
	DisplayName     string
	BroadcasterType string // "partner", "affiliate", or ""
}
