package prefs

import (
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"streamboard/internal/app/infrastructure/storage"
)

const (
	keyFollowedGames = "followed_games"
	keyIgnoredUsers  = "ignored_users"
	keyFilters       = "filters"

	// entries behave like long-lived cookies
	entryTTL = 365 * 24 * time.Hour
)

type IgnoredUser struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
}

// Filters: nil numeric bounds are unset; invalid input must normalize
// to unset, never to zero.
type Filters struct {
	VerifiedOnly bool `json:"verified_only"`
	MinViewers   *int `json:"min_viewers"`
	MaxViewers   *int `json:"max_viewers"`
	MinFollowers *int `json:"min_followers"`
	MaxFollowers *int `json:"max_followers"`
}

// Store persists user preferences as JSON entries in a file-backed
// cache. Filters are store-only; they never appear in share links.
type Store struct {
	cache *storage.Cache[string]
}

func NewStore(path string) *Store {
	return &Store{
		cache: storage.NewCache[string](16, entryTTL, true, true, path, 0),
	}
}

func (s *Store) FollowedGames() []string {
	raw, ok := s.cache.Get(keyFollowedGames)
	if !ok {
		return nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil
	}
	return Dedupe(ids)
}

func (s *Store) SetFollowedGames(ids []string) {
	s.setJSON(keyFollowedGames, Dedupe(ids))
}

func (s *Store) IgnoredUsers() []IgnoredUser {
	raw, ok := s.cache.Get(keyIgnoredUsers)
	if !ok {
		return nil
	}
	var users []IgnoredUser
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil
	}
	return users
}

func (s *Store) SetIgnoredUsers(users []IgnoredUser) {
	s.setJSON(keyIgnoredUsers, users)
}

func (s *Store) Filters() Filters {
	raw, ok := s.cache.Get(keyFilters)
	if !ok {
		return Filters{}
	}
	var f Filters
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return Filters{}
	}
	return f
}

func (s *Store) SetFilters(f Filters) {
	s.setJSON(keyFilters, f)
}

func (s *Store) setJSON(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.cache.Set(key, string(data))
}

// Boot merges persisted preferences with an optional share link. A
// link carrying a non-empty game or ignored list overrides the store
// and becomes the new sticky state; filters come from the store only.
func (s *Store) Boot(link *url.URL) ([]string, []IgnoredUser, Filters) {
	followed := s.FollowedGames()
	ignored := s.IgnoredUsers()

	if link != nil {
		params := link.Query()
		if games := Dedupe(splitCSV(params.Get("games"))); len(games) > 0 {
			followed = games
			s.SetFollowedGames(followed)
		}
		if ids := Dedupe(splitCSV(params.Get("ignored"))); len(ids) > 0 {
			ignored = nil
			for _, id := range ids {
				ignored = MergeIgnored(ignored, id, nil)
			}
			s.SetIgnoredUsers(ignored)
		}
	}

	return followed, ignored, s.Filters()
}

// BuildShareLink exposes followed games and ignored users; filters are
// intentionally excluded from shareable state.
func BuildShareLink(base *url.URL, followed []string, ignored []IgnoredUser) string {
	u := *base
	params := url.Values{}
	if len(followed) > 0 {
		params.Set("games", strings.Join(Dedupe(followed), ","))
	}
	if len(ignored) > 0 {
		ids := make([]string, 0, len(ignored))
		for _, iu := range ignored {
			ids = append(ids, iu.ID)
		}
		params.Set("ignored", strings.Join(Dedupe(ids), ","))
	}
	u.RawQuery = params.Encode()
	return u.String()
}

// MergeIgnored adds a user by id: a no-op when already present, except
// that a present entry with no name gets the new name filled in. A
// name, once set, is never cleared.
func MergeIgnored(list []IgnoredUser, id string, name *string) []IgnoredUser {
	for i, u := range list {
		if u.ID != id {
			continue
		}
		if u.Name == nil && name != nil {
			list[i].Name = name
		}
		return list
	}
	return append(list, IgnoredUser{ID: id, Name: name})
}

// RemoveIgnored drops the entry with the given id, if present.
func RemoveIgnored(list []IgnoredUser, id string) []IgnoredUser {
	out := list[:0]
	for _, u := range list {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out
}

// ParseIntField normalizes numeric filter input: empty, malformed, or
// non-finite input is unset; anything else truncates to an integer.
func ParseIntField(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(math.Trunc(f))
	return &n
}

func Dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
