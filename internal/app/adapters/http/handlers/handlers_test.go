package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamboard/internal/app/ports"
	"streamboard/pkg/logger"
)

type stubStore struct {
	lastQuery   ports.StreamQuery
	touched     [][]string
	upserted    [][]ports.Game
	queryResult ports.StreamsPayload
}

func (s *stubStore) UpsertGames(games []ports.Game) error {
	s.upserted = append(s.upserted, games)
	return nil
}

func (s *stubStore) TouchTrackedGames(ids []string) error {
	s.touched = append(s.touched, ids)
	return nil
}

func (s *stubStore) TrackedGames() ([]string, error) { return nil, nil }

func (s *stubStore) UpsertStreams(string, []ports.Stream) error { return nil }

func (s *stubStore) UpsertProfiles([]ports.Profile) error { return nil }

func (s *stubStore) ProfilesNeedingFollowers(int) ([]string, error) { return nil, nil }

func (s *stubStore) PurgeExpired() (int, error) { return 0, nil }

func (s *stubStore) QueryStreams(q ports.StreamQuery) (ports.StreamsPayload, error) {
	s.lastQuery = q
	return s.queryResult, nil
}

type stubTwitch struct {
	searches int
	results  []ports.Game
}

func (s *stubTwitch) SearchCategories(string, int) ([]ports.Game, error) {
	s.searches++
	return s.results, nil
}

func (s *stubTwitch) GetGames(ids []string) ([]ports.Game, error) {
	games := make([]ports.Game, 0, len(ids))
	for _, id := range ids {
		games = append(games, ports.Game{ID: id, Name: "game " + id})
	}
	return games, nil
}

func (s *stubTwitch) GetStreams(string, int, []string) ([]ports.Stream, error) { return nil, nil }

func (s *stubTwitch) GetUsers([]string) ([]ports.User, error) { return nil, nil }

func (s *stubTwitch) GetFollowerCount(string) (*int, error) { return nil, nil }

func newTestHandlers(store *stubStore, twitch *stubTwitch) *Handlers {
	gin.SetMode(gin.TestMode)
	return New(logger.New(""), nil, store, twitch, nil)
}

func doGET(h gin.HandlerFunc, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	h(c)
	return w
}

func TestStreamsHandlerQueryParsing(t *testing.T) {
	store := &stubStore{}
	h := newTestHandlers(store, &stubTwitch{})

	w := doGET(h.StreamsHandler,
		"/api/streams?game_ids=1,2,1,%20&status=VERIFIED&min_viewers=10&max_viewers=abc&min_followers=12.7&ignored=u1,u2,u1")

	require.Equal(t, http.StatusOK, w.Code)

	q := store.lastQuery
	assert.Equal(t, []string{"1", "2"}, q.GameIDs)
	assert.Equal(t, "verified", q.BroadcasterType)
	require.NotNil(t, q.MinViewers)
	assert.Equal(t, 10, *q.MinViewers)
	assert.Nil(t, q.MaxViewers)
	require.NotNil(t, q.MinFollowers)
	assert.Equal(t, 12, *q.MinFollowers)
	assert.Equal(t, []string{"u1", "u2"}, q.IgnoredUserIDs)

	// requesting streams refreshes the tracked set
	require.Len(t, store.touched, 1)
	assert.Equal(t, []string{"1", "2"}, store.touched[0])
}

func TestStreamsHandlerUnknownStatusMeansAny(t *testing.T) {
	store := &stubStore{}
	h := newTestHandlers(store, &stubTwitch{})

	w := doGET(h.StreamsHandler, "/api/streams?game_ids=1&status=sideways")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.lastQuery.BroadcasterType)
}

func TestStreamsHandlerNoGamesSkipsTouch(t *testing.T) {
	store := &stubStore{}
	h := newTestHandlers(store, &stubTwitch{})

	w := doGET(h.StreamsHandler, "/api/streams")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.touched)
}

func TestSearchGamesEmptyQuery(t *testing.T) {
	twitch := &stubTwitch{}
	h := newTestHandlers(&stubStore{}, twitch)

	w := doGET(h.SearchGamesHandler, "/api/search_games?q=")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"games":[]}`, w.Body.String())
	assert.Zero(t, twitch.searches)
}

func TestSearchGamesCachesCaseInsensitive(t *testing.T) {
	twitch := &stubTwitch{results: []ports.Game{{ID: "1", Name: "Ember"}}}
	store := &stubStore{}
	h := newTestHandlers(store, twitch)

	w1 := doGET(h.SearchGamesHandler, "/api/search_games?q=Ember")
	w2 := doGET(h.SearchGamesHandler, "/api/search_games?q=ember")

	require.Equal(t, http.StatusOK, w1.Code)
	require.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, 1, twitch.searches)
	assert.JSONEq(t, w1.Body.String(), w2.Body.String())

	// search results land in the games table
	require.Len(t, store.upserted, 1)
	assert.Equal(t, "1", store.upserted[0][0].ID)
}

func TestTouchTrackedHandler(t *testing.T) {
	store := &stubStore{}
	h := newTestHandlers(store, &stubTwitch{})

	body, _ := json.Marshal(map[string][]string{"game_ids": {" 1", "", "1", "2"}})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/touch_tracked", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.TouchTrackedHandler(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.touched, 1)
	assert.Equal(t, []string{"1", "2"}, store.touched[0])

	// game rows are ensured before tracking
	require.Len(t, store.upserted, 1)
	assert.Len(t, store.upserted[0], 2)
}

func TestParseIntPtr(t *testing.T) {
	tests := []struct {
		raw  string
		want *int
	}{
		{"", nil},
		{"42", func() *int { n := 42; return &n }()},
		{"12.9", func() *int { n := 12; return &n }()},
		{"abc", nil},
		{"NaN", nil},
		{"-Inf", nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := parseIntPtr(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}
