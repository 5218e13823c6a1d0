package prefs

import (
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "prefs.json"))
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)

	s.SetFollowedGames([]string{"1", "2", "2", "", "3"})
	assert.Equal(t, []string{"1", "2", "3"}, s.FollowedGames())

	users := []IgnoredUser{{ID: "9"}, {ID: "8", Name: strPtr("eight")}}
	s.SetIgnoredUsers(users)
	assert.Equal(t, users, s.IgnoredUsers())

	f := Filters{VerifiedOnly: true, MinViewers: intPtr(10)}
	s.SetFilters(f)
	assert.Equal(t, f, s.Filters())
}

func TestBootWithoutLinkUsesStore(t *testing.T) {
	s := newTestStore(t)
	s.SetFollowedGames([]string{"1"})
	s.SetFilters(Filters{VerifiedOnly: true})

	followed, ignored, filters := s.Boot(nil)

	assert.Equal(t, []string{"1"}, followed)
	assert.Empty(t, ignored)
	assert.True(t, filters.VerifiedOnly)
}

// Non-empty link lists replace the stored ones and become the new
// sticky state; filters stay untouched by the link.
func TestBootLinkOverridesAndWritesBack(t *testing.T) {
	s := newTestStore(t)
	s.SetFollowedGames([]string{"1", "2"})
	s.SetIgnoredUsers([]IgnoredUser{{ID: "old", Name: strPtr("Old")}})
	s.SetFilters(Filters{MinViewers: intPtr(50)})

	link, err := url.Parse("https://example.com/board?games=7,8,7&ignored=u1,u2&min_viewers=999")
	require.NoError(t, err)

	followed, ignored, filters := s.Boot(link)

	assert.Equal(t, []string{"7", "8"}, followed)
	require.Len(t, ignored, 2)
	assert.Equal(t, "u1", ignored[0].ID)
	assert.Nil(t, ignored[0].Name)

	// written back
	assert.Equal(t, []string{"7", "8"}, s.FollowedGames())
	assert.Len(t, s.IgnoredUsers(), 2)

	// filters never come from the URL
	require.NotNil(t, filters.MinViewers)
	assert.Equal(t, 50, *filters.MinViewers)
}

func TestBootEmptyLinkParamsKeepStore(t *testing.T) {
	s := newTestStore(t)
	s.SetFollowedGames([]string{"1"})

	link, _ := url.Parse("https://example.com/board?games=&ignored=")
	followed, ignored, _ := s.Boot(link)

	assert.Equal(t, []string{"1"}, followed)
	assert.Empty(t, ignored)
}

func TestBuildShareLinkExcludesFilters(t *testing.T) {
	base, _ := url.Parse("https://example.com/board")

	link := BuildShareLink(base, []string{"1", "2"}, []IgnoredUser{
		{ID: "u1", Name: strPtr("One")},
		{ID: "u2"},
	})

	u, err := url.Parse(link)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "1,2", q.Get("games"))
	assert.Equal(t, "u1,u2", q.Get("ignored"))
	assert.NotContains(t, link, "min_viewers")
	assert.NotContains(t, link, "verified")
}

func TestMergeIgnored(t *testing.T) {
	var list []IgnoredUser

	list = MergeIgnored(list, "u1", nil)
	require.Len(t, list, 1)

	// duplicate add is a no-op
	list = MergeIgnored(list, "u1", nil)
	require.Len(t, list, 1)

	// a name backfills a nil entry
	list = MergeIgnored(list, "u1", strPtr("One"))
	require.NotNil(t, list[0].Name)
	assert.Equal(t, "One", *list[0].Name)

	// but an existing name is never overwritten or cleared
	list = MergeIgnored(list, "u1", strPtr("Other"))
	assert.Equal(t, "One", *list[0].Name)
	list = MergeIgnored(list, "u1", nil)
	assert.Equal(t, "One", *list[0].Name)

	list = MergeIgnored(list, "u2", strPtr("Two"))
	assert.Len(t, list, 2)
}

func TestRemoveIgnored(t *testing.T) {
	list := []IgnoredUser{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	list = RemoveIgnored(list, "b")
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "c", list[1].ID)

	list = RemoveIgnored(list, "missing")
	assert.Len(t, list, 2)
}

func TestParseIntField(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *int
	}{
		{"empty", "", nil},
		{"spaces", "   ", nil},
		{"plain", "42", intPtr(42)},
		{"padded", " 42 ", intPtr(42)},
		{"float truncates", "12.9", intPtr(12)},
		{"negative", "-5", intPtr(-5)},
		{"malformed", "abc", nil},
		{"nan", "NaN", nil},
		{"inf", "Inf", nil},
		{"zero", "0", intPtr(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseIntField(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Dedupe([]string{"a", "b", "a", "", "c", "b"}))
	assert.Empty(t, Dedupe(nil))
}
