package view

import (
	"fmt"
	"sync"

	"streamboard/internal/app/ports"
)

// fakeRenderer records every engine call so tests can assert on node
// lifecycles without a real frontend. Safe for cross-goroutine reads.
type fakeRenderer struct {
	mu sync.Mutex

	width   int
	offsets int

	games  []*fakeGame
	log    []string
	frames []func()

	status string
}

type fakeGame struct {
	game        ports.Game
	streamCount int
	rows        []*fakeStream
	order       []*fakeStream
	state       string
}

type fakeStream struct {
	stream ports.Stream
	state  string
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{width: 200, offsets: -1}
}

func (f *fakeRenderer) record(format string, args ...any) {
	f.log = append(f.log, fmt.Sprintf(format, args...))
}

func (f *fakeRenderer) CreateGameNode(g ports.Game) Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create-game %s", g.ID)
	return &fakeGame{game: g, state: "created"}
}

func (f *fakeRenderer) UpdateGameNode(n Node, g ports.Game, streamCount int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fg := n.(*fakeGame)
	fg.game = g
	fg.streamCount = streamCount
}

func (f *fakeRenderer) AppendGameNode(n Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fg := n.(*fakeGame)
	for i, cur := range f.games {
		if cur == fg {
			f.games = append(f.games[:i], f.games[i+1:]...)
			break
		}
	}
	f.games = append(f.games, fg)
	f.record("append-game %s", fg.game.ID)
}

func (f *fakeRenderer) RemoveGameNode(n Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fg := n.(*fakeGame)
	for i, cur := range f.games {
		if cur == fg {
			f.games = append(f.games[:i], f.games[i+1:]...)
			break
		}
	}
	f.record("remove-game %s", fg.game.ID)
}

func (f *fakeRenderer) CreateStreamNode(game Node, s ports.Stream) Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	fg := game.(*fakeGame)
	fs := &fakeStream{stream: s, state: "created"}
	fg.rows = append(fg.rows, fs)
	f.record("create-stream %s/%s", fg.game.ID, s.ID)
	return fs
}

func (f *fakeRenderer) UpdateStreamNode(n Node, s ports.Stream) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.(*fakeStream).stream = s
}

func (f *fakeRenderer) SetStreamOrder(game Node, order []Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fg := game.(*fakeGame)
	fg.order = fg.order[:0]
	ids := make([]string, 0, len(order))
	for _, n := range order {
		fs := n.(*fakeStream)
		fg.order = append(fg.order, fs)
		ids = append(ids, fs.stream.ID)
	}
	f.record("order %s %v", fg.game.ID, ids)
}

func (f *fakeRenderer) RemoveStreamNode(game Node, n Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fg := game.(*fakeGame)
	fs := n.(*fakeStream)
	for i, cur := range fg.rows {
		if cur == fs {
			fg.rows = append(fg.rows[:i], fg.rows[i+1:]...)
			break
		}
	}
	f.record("remove-stream %s/%s", fg.game.ID, fs.stream.ID)
}

func (f *fakeRenderer) EnterTransition(n Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := n.(type) {
	case *fakeGame:
		v.state = "entered"
		f.record("enter-game %s", v.game.ID)
	case *fakeStream:
		v.state = "entered"
		f.record("enter-stream %s", v.stream.ID)
	}
}

func (f *fakeRenderer) ExitTransition(n Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := n.(type) {
	case *fakeGame:
		v.state = "exiting"
		f.record("exit-game %s", v.game.ID)
	case *fakeStream:
		v.state = "exiting"
		f.record("exit-stream %s", v.stream.ID)
	}
}

func (f *fakeRenderer) ContainerWidth() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width
}

func (f *fakeRenderer) ApplyColumns(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("columns %d", n)
}

func (f *fakeRenderer) DistinctCardOffsets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.offsets
}

// RequestFrame queues; tests flush frames explicitly.
func (f *fakeRenderer) RequestFrame(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, fn)
}

func (f *fakeRenderer) flushFrames() {
	for {
		f.mu.Lock()
		if len(f.frames) == 0 {
			f.mu.Unlock()
			return
		}
		fn := f.frames[0]
		f.frames = f.frames[1:]
		f.mu.Unlock()
		fn()
	}
}

func (f *fakeRenderer) SetStatus(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = msg
}

func (f *fakeRenderer) statusText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeRenderer) gameIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.games))
	for _, g := range f.games {
		ids = append(ids, g.game.ID)
	}
	return ids
}

func (f *fakeRenderer) streamIDs(gameID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.game.ID != gameID {
			continue
		}
		ids := make([]string, 0, len(g.rows))
		for _, r := range g.rows {
			ids = append(ids, r.stream.ID)
		}
		return ids
	}
	return nil
}

func (f *fakeRenderer) findGame(gameID string) *fakeGame {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.game.ID == gameID {
			return g
		}
	}
	return nil
}

func (f *fakeRenderer) gameState(g *fakeGame) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return g.state
}

func (f *fakeRenderer) streamState(s *fakeStream) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return s.state
}

func (f *fakeRenderer) orderIDs(gameID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.game.ID != gameID {
			continue
		}
		ids := make([]string, 0, len(g.order))
		for _, fs := range g.order {
			ids = append(ids, fs.stream.ID)
		}
		return ids
	}
	return nil
}

func (f *fakeRenderer) countLog(line string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.log {
		if l == line {
			n++
		}
	}
	return n
}

func (f *fakeRenderer) findStream(gameID, streamID string) *fakeStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.game.ID != gameID {
			continue
		}
		for _, r := range g.rows {
			if r.stream.ID == streamID {
				return r
			}
		}
	}
	return nil
}
