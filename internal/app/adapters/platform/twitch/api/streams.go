package api

import (
	"net/url"

	"streamboard/internal/app/ports"
)

// GetStreams pages through live streams of a game, optionally once per
// language, capped at maxStreams. Overlapping language passes are
// deduplicated by stream id.
func (t *Twitch) GetStreams(gameID string, maxStreams int, languages []string) ([]ports.Stream, error) {
	if maxStreams <= 0 {
		maxStreams = 200
	}

	passes := languages
	if len(passes) == 0 {
		passes = []string{""}
	}

	var collected []ports.Stream
	for _, lang := range passes {
		after := ""
		for len(collected) < maxStreams {
			params := url.Values{}
			params.Set("game_id", gameID)
			params.Set("first", "100")
			if after != "" {
				params.Set("after", after)
			}
			if lang != "" {
				params.Set("language", lang)
			}

			var resp streamResponse
			if err := t.doHelixRequest("GET", t.helixBase+"/streams?"+params.Encode(), &resp); err != nil {
				return nil, err
			}

			for _, s := range resp.Data {
				collected = append(collected, ports.Stream{
					ID:           s.ID,
					UserID:       s.UserID,
					UserName:     s.UserName,
					Title:        s.Title,
					ViewerCount:  s.ViewerCount,
					StartedAt:    s.StartedAt,
					Language:     s.Language,
					ThumbnailURL: s.ThumbnailURL,
				})
				if len(collected) >= maxStreams {
					break
				}
			}

			after = resp.Pagination.Cursor
			if after == "" || len(resp.Data) == 0 {
				break
			}
		}
	}

	seen := make(map[string]struct{}, len(collected))
	unique := collected[:0]
	for _, s := range collected {
		if _, ok := seen[s.ID]; ok {
			continue
		}
		seen[s.ID] = struct{}{}
		unique = append(unique, s)
	}
	return unique, nil
}
