package view

import (
	"streamboard/internal/app/ports"
	"streamboard/internal/board/api"
	"streamboard/internal/board/sched"
)

// RefreshController is the single gateway for pulling stream data.
// Any number of triggers arriving while a fetch is in flight collapse
// into exactly one follow-up fetch, started after the active one
// completes and reflecting the session state current at that moment.
type RefreshController struct {
	loop *sched.Loop

	snapshot func() api.StreamsQuery
	fetch    func(api.StreamsQuery) (ports.StreamsPayload, error)
	apply    func(ports.StreamsPayload)
	onError  func(error)

	inFlight bool
	pending  bool
}

func NewRefreshController(
	loop *sched.Loop,
	snapshot func() api.StreamsQuery,
	fetch func(api.StreamsQuery) (ports.StreamsPayload, error),
	apply func(ports.StreamsPayload),
	onError func(error),
) *RefreshController {
	return &RefreshController{
		loop:     loop,
		snapshot: snapshot,
		fetch:    fetch,
		apply:    apply,
		onError:  onError,
	}
}

// Refresh may be called from any goroutine.
func (c *RefreshController) Refresh() {
	c.loop.Post(c.start)
}

// start runs on the loop.
func (c *RefreshController) start() {
	if c.inFlight {
		// at most one trailing refresh is remembered
		c.pending = true
		return
	}
	c.inFlight = true

	q := c.snapshot()
	go func() {
		payload, err := c.fetch(q)
		c.loop.Post(func() {
			c.inFlight = false
			if err != nil {
				// no internal retry; the next trigger refetches
				c.onError(err)
			} else {
				c.apply(payload)
			}
			if c.pending {
				c.pending = false
				c.start()
			}
		})
	}()
}
