package api

import (
	"errors"
	"net/http"
	"net/url"

	"streamboard/internal/app/ports"
)

func (t *Twitch) GetUsers(userIDs []string) ([]ports.User, error) {
	filtered := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != "" {
			filtered = append(filtered, id)
		}
	}
	if len(filtered) == 0 {
		return nil, nil
	}

	var users []ports.User
	for start := 0; start < len(filtered); start += 100 {
		end := min(start+100, len(filtered))

		params := url.Values{}
		for _, id := range filtered[start:end] {
			params.Add("id", id)
		}

		var resp userResponse
		if err := t.doHelixRequest("GET", t.helixBase+"/users?"+params.Encode(), &resp); err != nil {
			return nil, err
		}
		for _, u := range resp.Data {
			users = append(users, ports.User{
				ID:              u.ID,
				DisplayName:     u.DisplayName,
				BroadcasterType: u.BroadcasterType,
			})
		}
	}
	return users, nil
}

// GetFollowerCount returns nil without error when Twitch denies access
// to the followers endpoint; the caller retries later.
func (t *Twitch) GetFollowerCount(broadcasterID string) (*int, error) {
	params := url.Values{}
	params.Set("broadcaster_id", broadcasterID)
	params.Set("first", "1")

	var resp followerResponse
	if err := t.doHelixRequest("GET", t.helixBase+"/channels/followers?"+params.Encode(), &resp); err != nil {
		var se *statusError
		if errors.As(err, &se) {
			switch se.status {
			case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
				return nil, nil
			}
		}
		return nil, err
	}
	total := resp.Total
	return &total, nil
}
