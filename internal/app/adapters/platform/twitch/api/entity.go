package api

type categoryResponse struct {
	Data []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		BoxArtURL string `json:"box_art_url"`
	} `json:"data"`
}

type streamResponse struct {
	Data []struct {
		ID           string `json:"id"`
		UserID       string `json:"user_id"`
		UserName     string `json:"user_name"`
		Title        string `json:"title"`
		ViewerCount  int    `json:"viewer_count"`
		StartedAt    string `json:"started_at"`
		Language     string `json:"language"`
		ThumbnailURL string `json:"thumbnail_url"`
	} `json:"data"`
	Pagination struct {
		Cursor string `json:"cursor"`
	} `json:"pagination"`
}

type userResponse struct {
	Data []struct {
		ID              string `json:"id"`
		DisplayName     string `json:"display_name"`
		BroadcasterType string `json:"broadcaster_type"`
	} `json:"data"`
}

type followerResponse struct {
	Total int `json:"total"`
}
