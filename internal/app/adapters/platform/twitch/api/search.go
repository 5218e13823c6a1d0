package api

import (
	"net/url"
	"strconv"

	"streamboard/internal/app/ports"
)

func (t *Twitch) SearchCategories(query string, first int) ([]ports.Game, error) {
	if first < 1 {
		first = 1
	} else if first > 100 {
		first = 100
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("first", strconv.Itoa(first))

	var resp categoryResponse
	if err := t.doHelixRequest("GET", t.helixBase+"/search/categories?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	games := make([]ports.Game, 0, len(resp.Data))
	for _, g := range resp.Data {
		games = append(games, ports.Game{ID: g.ID, Name: g.Name, BoxArtURL: g.BoxArtURL})
	}
	return games, nil
}
