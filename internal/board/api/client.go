package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"streamboard/internal/app/ports"
	"streamboard/internal/board/prefs"
)

// StreamsQuery is the snapshot of session state a single fetch runs
// with; it is captured at the moment the request starts.
type StreamsQuery struct {
	GameIDs    []string
	Filters    prefs.Filters
	IgnoredIDs []string
}

type Client struct {
	base   *url.URL
	client *http.Client
}

func NewClient(base string) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	return &Client{
		base:   u,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawQuery = params.Encode()
	return u.String()
}

func (c *Client) getJSON(rawURL string, target any) error {
	resp, err := c.client.Get(rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: status %d", rawURL, resp.StatusCode)
	}
	return json.Unmarshal(raw, target)
}

func (c *Client) FetchStreams(q StreamsQuery) (ports.StreamsPayload, error) {
	params := url.Values{}
	params.Set("game_ids", strings.Join(q.GameIDs, ","))

	status := "any"
	if q.Filters.VerifiedOnly {
		status = "verified"
	}
	params.Set("status", status)

	setIntParam(params, "min_viewers", q.Filters.MinViewers)
	setIntParam(params, "max_viewers", q.Filters.MaxViewers)
	setIntParam(params, "min_followers", q.Filters.MinFollowers)
	setIntParam(params, "max_followers", q.Filters.MaxFollowers)

	if len(q.IgnoredIDs) > 0 {
		params.Set("ignored", strings.Join(q.IgnoredIDs, ","))
	}

	var payload ports.StreamsPayload
	err := c.getJSON(c.endpoint("/api/streams", params), &payload)
	return payload, err
}

func (c *Client) SearchGames(query string) ([]ports.Game, error) {
	params := url.Values{}
	params.Set("q", query)

	var body struct {
		Games []ports.Game `json:"games"`
	}
	if err := c.getJSON(c.endpoint("/api/search_games", params), &body); err != nil {
		return nil, err
	}
	return body.Games, nil
}

func (c *Client) TouchTracked(gameIDs []string) error {
	if len(gameIDs) == 0 {
		return nil
	}

	body, err := json.Marshal(map[string][]string{"game_ids": gameIDs})
	if err != nil {
		return err
	}

	resp, err := c.client.Post(c.endpoint("/api/touch_tracked", url.Values{}), "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("touch_tracked: status %d", resp.StatusCode)
	}
	return nil
}

// PushURL is the SSE endpoint for the given followed set.
func (c *Client) PushURL(gameIDs []string) string {
	params := url.Values{}
	params.Set("game_ids", strings.Join(gameIDs, ","))
	return c.endpoint("/api/sse", params)
}

func setIntParam(params url.Values, key string, v *int) {
	if v != nil {
		params.Set(key, strconv.Itoa(*v))
	}
}
