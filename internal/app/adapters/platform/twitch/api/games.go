package api

import (
	"net/url"

	"streamboard/internal/app/ports"
)

func (t *Twitch) GetGames(ids []string) ([]ports.Game, error) {
	filtered := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == 0 {
		return nil, nil
	}

	var games []ports.Game
	for start := 0; start < len(filtered); start += 100 {
		end := min(start+100, len(filtered))

		params := url.Values{}
		for _, id := range filtered[start:end] {
			params.Add("id", id)
		}

		var resp categoryResponse
		if err := t.doHelixRequest("GET", t.helixBase+"/games?"+params.Encode(), &resp); err != nil {
			return nil, err
		}
		for _, g := range resp.Data {
			games = append(games, ports.Game{ID: g.ID, Name: g.Name, BoxArtURL: g.BoxArtURL})
		}
	}
	return games, nil
}
