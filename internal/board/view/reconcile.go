package view

import (
	"time"

	"streamboard/internal/app/ports"
	"streamboard/internal/board/sched"
)

const (
	// DefaultExitDelay is how long a departing card stays visible in
	// its exit transition before the node is removed.
	DefaultExitDelay = 280 * time.Millisecond
	// DefaultReorderDelay is how long a reorder of surviving cards is
	// deferred when departures are still animating out.
	DefaultReorderDelay = 320 * time.Millisecond
)

type streamEntry struct {
	id      string
	node    Node
	exiting bool
}

type gameEntry struct {
	id      string
	node    Node
	exiting bool

	// gen counts reconciliations for this card; timer callbacks
	// capture the value at schedule time and bail when it moved on.
	gen Generation

	streams   map[string]*streamEntry
	lastOrder []string
}

// Engine reconciles successive stream payloads against the rendered
// node tree. All methods run on the loop; there is exactly one node
// per live entity id at any time.
type Engine struct {
	loop *sched.Loop
	r    Renderer

	games map[string]*gameEntry

	ExitDelay    time.Duration
	ReorderDelay time.Duration
}

func NewEngine(loop *sched.Loop, r Renderer) *Engine {
	return &Engine{
		loop:         loop,
		r:            r,
		games:        make(map[string]*gameEntry),
		ExitDelay:    DefaultExitDelay,
		ReorderDelay: DefaultReorderDelay,
	}
}

// Apply reconciles the payload. Must be called on the loop.
func (e *Engine) Apply(p ports.StreamsPayload) {
	desired := make(map[string]bool, len(p.Games))
	for _, gg := range p.Games {
		desired[gg.Game.ID] = true
	}

	for _, gg := range p.Games {
		ge := e.games[gg.Game.ID]
		entering := false
		if ge == nil {
			ge = &gameEntry{
				id:      gg.Game.ID,
				streams: make(map[string]*streamEntry),
			}
			ge.node = e.r.CreateGameNode(gg.Game)
			e.games[gg.Game.ID] = ge
			entering = true
		} else if ge.exiting {
			// revived mid-exit: same node returns to rest
			ge.exiting = false
			entering = true
		}
		// re-append repositions in payload order, instance intact
		e.r.AppendGameNode(ge.node)
		if entering {
			e.r.EnterTransition(ge.node)
		}
		e.r.UpdateGameNode(ge.node, gg.Game, len(gg.Streams))
		e.syncStreams(ge, gg.Streams)
	}

	for id, ge := range e.games {
		if desired[id] || ge.exiting {
			continue
		}
		e.startGameExit(ge)
	}
}

func (e *Engine) startGameExit(ge *gameEntry) {
	ge.exiting = true
	e.r.ExitTransition(ge.node)
	e.loop.After(e.ExitDelay, func() {
		if !ge.exiting || e.games[ge.id] != ge {
			return
		}
		e.r.RemoveGameNode(ge.node)
		delete(e.games, ge.id)
	})
}

func (e *Engine) syncStreams(ge *gameEntry, streams []ports.Stream) {
	token := ge.gen.Bump()

	desired := make(map[string]bool, len(streams))
	for _, s := range streams {
		desired[s.ID] = true
	}

	stale := 0
	for id, se := range ge.streams {
		if desired[id] {
			continue
		}
		if se.exiting {
			stale++
			continue
		}
		se.exiting = true
		stale++
		e.r.ExitTransition(se.node)
		exitGe, exitSe := ge, se
		e.loop.After(e.ExitDelay, func() {
			if !exitSe.exiting || exitGe.streams[exitSe.id] != exitSe {
				return
			}
			e.r.RemoveStreamNode(exitGe.node, exitSe.node)
			delete(exitGe.streams, exitSe.id)
		})
	}

	order := make([]string, 0, len(streams))
	for _, s := range streams {
		se := ge.streams[s.ID]
		if se == nil {
			se = &streamEntry{id: s.ID}
			se.node = e.r.CreateStreamNode(ge.node, s)
			ge.streams[s.ID] = se
			e.r.EnterTransition(se.node)
		} else {
			if se.exiting {
				se.exiting = false
				e.r.EnterTransition(se.node)
			}
			e.r.UpdateStreamNode(se.node, s)
		}
		order = append(order, s.ID)
	}
	ge.lastOrder = order

	if stale == 0 {
		e.applyOrder(ge)
		return
	}

	// departures are animating; reordering survivors now would make
	// exiting cards jump. Defer, and skip if a newer payload landed.
	e.loop.After(e.ReorderDelay, func() {
		if ge.gen.Current() != token || e.games[ge.id] != ge {
			return
		}
		want := make(map[string]bool, len(ge.lastOrder))
		for _, id := range ge.lastOrder {
			want[id] = true
		}
		for id, se := range ge.streams {
			if want[id] {
				continue
			}
			// exit timer has not fired yet; remove directly
			se.exiting = false
			e.r.RemoveStreamNode(ge.node, se.node)
			delete(ge.streams, id)
		}
		e.applyOrder(ge)
	})
}

func (e *Engine) applyOrder(ge *gameEntry) {
	nodes := make([]Node, 0, len(ge.lastOrder))
	for _, id := range ge.lastOrder {
		if se := ge.streams[id]; se != nil {
			nodes = append(nodes, se.node)
		}
	}
	e.r.SetStreamOrder(ge.node, nodes)
}

// GameCount reports the number of tracked game cards, exiting ones
// included. Must be called on the loop.
func (e *Engine) GameCount() int {
	return len(e.games)
}
