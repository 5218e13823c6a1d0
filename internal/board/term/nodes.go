package term

import (
	"time"

	"streamboard/internal/app/ports"
	"streamboard/internal/board/view"
)

type nodeState int

const (
	stateResting nodeState = iota
	stateEntering
	stateExiting
)

type phase struct {
	state nodeState
	stamp time.Time
}

type gameNode struct {
	phase phase

	game        ports.Game
	streamCount int
	rows        []*streamNode
}

type streamNode struct {
	phase phase

	stream ports.Stream
}

// The renderer methods below are all driven from the scheduler loop.

func (t *Term) CreateGameNode(g ports.Game) view.Node {
	return &gameNode{game: g}
}

func (t *Term) UpdateGameNode(n view.Node, g ports.Game, streamCount int) {
	gn := n.(*gameNode)
	gn.game = g
	gn.streamCount = streamCount
}

// AppendGameNode moves an already-listed card to the end instead of
// duplicating it, so re-appends reposition without destroying state.
func (t *Term) AppendGameNode(n view.Node) {
	gn := n.(*gameNode)
	for i, cur := range t.games {
		if cur == gn {
			t.games = append(t.games[:i], t.games[i+1:]...)
			break
		}
	}
	t.games = append(t.games, gn)
}

func (t *Term) RemoveGameNode(n view.Node) {
	gn := n.(*gameNode)
	for i, cur := range t.games {
		if cur == gn {
			t.games = append(t.games[:i], t.games[i+1:]...)
			return
		}
	}
}

func (t *Term) CreateStreamNode(game view.Node, s ports.Stream) view.Node {
	gn := game.(*gameNode)
	sn := &streamNode{stream: s}
	gn.rows = append(gn.rows, sn)
	return sn
}

func (t *Term) UpdateStreamNode(n view.Node, s ports.Stream) {
	n.(*streamNode).stream = s
}

// SetStreamOrder rearranges the listed rows relative to each other.
// Rows not listed (mid-exit) keep the slot they already occupy, so
// survivors do not jump while an exit is still playing.
func (t *Term) SetStreamOrder(game view.Node, order []view.Node) {
	gn := game.(*gameNode)

	listed := make(map[*streamNode]bool, len(order))
	for _, n := range order {
		listed[n.(*streamNode)] = true
	}

	next := 0
	take := func() *streamNode {
		for next < len(order) {
			sn := order[next].(*streamNode)
			next++
			return sn
		}
		return nil
	}

	result := make([]*streamNode, 0, len(gn.rows))
	for _, row := range gn.rows {
		if !listed[row] {
			result = append(result, row)
			continue
		}
		if sn := take(); sn != nil {
			result = append(result, sn)
		}
	}
	for {
		sn := take()
		if sn == nil {
			break
		}
		result = append(result, sn)
	}
	gn.rows = result
}

func (t *Term) RemoveStreamNode(game view.Node, n view.Node) {
	gn := game.(*gameNode)
	sn := n.(*streamNode)
	for i, cur := range gn.rows {
		if cur == sn {
			gn.rows = append(gn.rows[:i], gn.rows[i+1:]...)
			return
		}
	}
}

func (t *Term) EnterTransition(n view.Node) {
	p := phaseOf(n)
	p.state = stateEntering
	p.stamp = time.Now()
}

func (t *Term) ExitTransition(n view.Node) {
	p := phaseOf(n)
	p.state = stateExiting
	p.stamp = time.Now()
}

func phaseOf(n view.Node) *phase {
	switch v := n.(type) {
	case *gameNode:
		return &v.phase
	case *streamNode:
		return &v.phase
	}
	panic("term: unknown node type")
}

func (t *Term) ContainerWidth() int { return t.width }

func (t *Term) ApplyColumns(n int) { t.columns = n }

func (t *Term) DistinctCardOffsets() int { return t.lastOffsets }

func (t *Term) RequestFrame(fn func()) {
	t.frameCbs = append(t.frameCbs, fn)
}

func (t *Term) SetStatus(msg string) { t.status = msg }

// Present implements the confirmation surface. A prompt replaces any
// previous one; the answer arrives through the y/n command keys.
func (t *Term) Present(title, message string, reply func(accepted bool)) bool {
	if !t.tty {
		return false
	}
	t.prompt = &promptState{title: title, message: message, reply: reply}
	return true
}

// resolvePrompt runs on the loop.
func (t *Term) resolvePrompt(accepted bool) bool {
	p := t.prompt
	if p == nil {
		return false
	}
	t.prompt = nil
	p.reply(accepted)
	return true
}
