package view

import (
	"fmt"
	"net/url"
	"time"

	"streamboard/internal/app/ports"
	"streamboard/internal/board/api"
	"streamboard/internal/board/prefs"
	"streamboard/internal/board/push"
	"streamboard/internal/board/sched"
	"streamboard/pkg/logger"
)

const (
	// DefaultFilterDebounce trails bursts of filter edits before the
	// refetch fires.
	DefaultFilterDebounce = 250 * time.Millisecond
)

// State is the live session state. The controller is its only owner;
// every mutation goes through a controller method on the loop.
type State struct {
	Followed []string
	Ignored  []prefs.IgnoredUser
	Filters  prefs.Filters
}

// Controller ties session state to the preference store, the API
// client, the push subscriber and the reconciliation engine. Public
// methods are safe from any goroutine; they post onto the loop.
type Controller struct {
	log  logger.Logger
	loop *sched.Loop

	store  *prefs.Store
	client *api.Client
	gate   *ConfirmGate
	r      Renderer

	engine   *Engine
	balancer *Balancer
	refresh  *RefreshController
	sub      *push.Subscriber

	filterDebounce *sched.Debouncer

	shareBase *url.URL
	clipboard func(string) error

	state State
}

type ControllerConfig struct {
	Log       logger.Logger
	Loop      *sched.Loop
	Store     *prefs.Store
	Client    *api.Client
	Renderer  Renderer
	Surface   ConfirmSurface
	ShareBase *url.URL
	// Clipboard writes text to the user's clipboard. May be nil; the
	// share action then falls back to showing the link.
	Clipboard func(string) error

	// Card geometry for the layout balancer, in renderer units.
	CardWidth int
	CardGap   int

	// FilterDebounce overrides the trailing delay on filter edits.
	FilterDebounce time.Duration

	Initial State
}

func NewController(cfg ControllerConfig) *Controller {
	if cfg.FilterDebounce <= 0 {
		cfg.FilterDebounce = DefaultFilterDebounce
	}
	c := &Controller{
		log:            cfg.Log,
		loop:           cfg.Loop,
		store:          cfg.Store,
		client:         cfg.Client,
		gate:           NewConfirmGate(cfg.Surface),
		r:              cfg.Renderer,
		shareBase:      cfg.ShareBase,
		clipboard:      cfg.Clipboard,
		filterDebounce: sched.NewDebouncer(cfg.Loop, cfg.FilterDebounce),
		state:          cfg.Initial,
	}
	if cfg.CardWidth <= 0 {
		cfg.CardWidth = defaultCardWidth
	}
	c.engine = NewEngine(cfg.Loop, cfg.Renderer)
	c.balancer = NewBalancer(cfg.Loop, cfg.Renderer, c.engine.GameCount, cfg.CardWidth, cfg.CardGap)
	c.refresh = NewRefreshController(cfg.Loop, c.snapshot, cfg.Client.FetchStreams, c.applyPayload, c.fetchFailed)
	c.sub = push.NewSubscriber(
		logger.NewPrefixedLogger(cfg.Log, "push"),
		cfg.Client.PushURL,
		c.refresh.Refresh,
	)
	return c
}

const defaultCardWidth = 44

// Start kicks off the first fetch and the push subscription.
func (c *Controller) Start() {
	c.loop.Post(func() {
		c.sub.SetGames(c.state.Followed)
		c.balancer.Relayout()
	})
	c.refresh.Refresh()
}

func (c *Controller) Close() {
	c.loop.Post(c.sub.Close)
}

// OnResize forwards terminal size changes to the balancer.
func (c *Controller) OnResize() {
	c.balancer.OnResize()
}

// Refresh triggers a reload; concurrent calls collapse.
func (c *Controller) Refresh() {
	c.refresh.Refresh()
}

// snapshot runs on the loop, right before a fetch starts.
func (c *Controller) snapshot() api.StreamsQuery {
	ignored := make([]string, 0, len(c.state.Ignored))
	for _, u := range c.state.Ignored {
		ignored = append(ignored, u.ID)
	}
	return api.StreamsQuery{
		GameIDs:    append([]string(nil), c.state.Followed...),
		Filters:    c.state.Filters,
		IgnoredIDs: ignored,
	}
}

func (c *Controller) applyPayload(p ports.StreamsPayload) {
	c.engine.Apply(p)
	c.balancer.Relayout()
	c.r.SetStatus("")
}

func (c *Controller) fetchFailed(err error) {
	c.log.Error("fetch streams", err)
	c.r.SetStatus(fmt.Sprintf("fetch failed: %v", err))
}

// FollowGame adds the game to the followed set and reloads.
func (c *Controller) FollowGame(g ports.Game) {
	c.loop.Post(func() {
		for _, id := range c.state.Followed {
			if id == g.ID {
				c.r.SetStatus(fmt.Sprintf("already following %s", g.Name))
				return
			}
		}
		c.state.Followed = append(c.state.Followed, g.ID)
		c.store.SetFollowedGames(c.state.Followed)
		c.sub.SetGames(c.state.Followed)

		go func() {
			if err := c.client.TouchTracked([]string{g.ID}); err != nil {
				c.log.Warn("touch tracked", "game_id", g.ID, "err", err.Error())
			}
		}()

		c.refresh.Refresh()
	})
}

// UnfollowGame asks for confirmation, then removes the game.
func (c *Controller) UnfollowGame(id, name string) {
	c.loop.Post(func() {
		c.gate.Confirm(
			"Unfollow game",
			fmt.Sprintf("Stop following %s?", name),
			false,
			func(ok bool) {
				if !ok {
					return
				}
				kept := c.state.Followed[:0]
				for _, gid := range c.state.Followed {
					if gid != id {
						kept = append(kept, gid)
					}
				}
				c.state.Followed = kept
				c.store.SetFollowedGames(c.state.Followed)
				c.sub.SetGames(c.state.Followed)
				c.refresh.Refresh()
			},
		)
	})
}

// IgnoreUser asks for confirmation, then hides the streamer.
func (c *Controller) IgnoreUser(id string, name *string) {
	c.loop.Post(func() {
		label := id
		if name != nil {
			label = *name
		}
		c.gate.Confirm(
			"Ignore streamer",
			fmt.Sprintf("Hide %s from all games?", label),
			false,
			func(ok bool) {
				if !ok {
					return
				}
				c.state.Ignored = prefs.MergeIgnored(c.state.Ignored, id, name)
				c.store.SetIgnoredUsers(c.state.Ignored)
				c.refresh.Refresh()
			},
		)
	})
}

// UnignoreUser restores a hidden streamer. Not destructive, no prompt.
func (c *Controller) UnignoreUser(id string) {
	c.loop.Post(func() {
		c.state.Ignored = prefs.RemoveIgnored(c.state.Ignored, id)
		c.store.SetIgnoredUsers(c.state.Ignored)
		c.refresh.Refresh()
	})
}

// SetVerifiedOnly toggles the partner/affiliate filter.
func (c *Controller) SetVerifiedOnly(on bool) {
	c.editFilters(func(f *prefs.Filters) { f.VerifiedOnly = on })
}

// Numeric filter edits take the raw field text; normalization turns
// empty or malformed input into an unset bound.

func (c *Controller) SetMinViewers(raw string) {
	c.editFilters(func(f *prefs.Filters) { f.MinViewers = prefs.ParseIntField(raw) })
}

func (c *Controller) SetMaxViewers(raw string) {
	c.editFilters(func(f *prefs.Filters) { f.MaxViewers = prefs.ParseIntField(raw) })
}

func (c *Controller) SetMinFollowers(raw string) {
	c.editFilters(func(f *prefs.Filters) { f.MinFollowers = prefs.ParseIntField(raw) })
}

func (c *Controller) SetMaxFollowers(raw string) {
	c.editFilters(func(f *prefs.Filters) { f.MaxFollowers = prefs.ParseIntField(raw) })
}

func (c *Controller) editFilters(edit func(*prefs.Filters)) {
	c.loop.Post(func() {
		edit(&c.state.Filters)
		c.store.SetFilters(c.state.Filters)
		c.filterDebounce.Call(c.refresh.Refresh)
	})
}

// Search queries the server for categories and delivers the result on
// the loop.
func (c *Controller) Search(query string, done func([]ports.Game, error)) {
	go func() {
		games, err := c.client.SearchGames(query)
		c.loop.Post(func() { done(games, err) })
	}()
}

// Share copies the share link to the clipboard, or shows it in the
// status line when no clipboard is reachable.
func (c *Controller) Share() {
	c.loop.Post(func() {
		link := prefs.BuildShareLink(c.shareBase, c.state.Followed, c.state.Ignored)
		if c.clipboard != nil {
			if err := c.clipboard(link); err == nil {
				c.r.SetStatus("share link copied")
				return
			}
		}
		c.r.SetStatus("share link: " + link)
	})
}

// Snapshot returns a copy of the session state, delivered on the loop.
func (c *Controller) Snapshot(done func(State)) {
	c.loop.Post(func() {
		st := State{
			Followed: append([]string(nil), c.state.Followed...),
			Ignored:  append([]prefs.IgnoredUser(nil), c.state.Ignored...),
			Filters:  c.state.Filters,
		}
		done(st)
	})
}
