package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamboard/internal/app/ports"
	"streamboard/internal/board/sched"
	"streamboard/internal/board/view"
	"streamboard/pkg/logger"
)

func newTestTerm(t *testing.T) *Term {
	t.Helper()
	loop := sched.NewLoop()
	t.Cleanup(loop.Stop)
	return New(logger.New(""), loop)
}

func rowIDs(gn *gameNode) []string {
	ids := make([]string, 0, len(gn.rows))
	for _, r := range gn.rows {
		ids = append(ids, r.stream.ID)
	}
	return ids
}

func TestAppendGameNodeRepositionsWithoutDuplicating(t *testing.T) {
	tm := newTestTerm(t)

	a := tm.CreateGameNode(ports.Game{ID: "a"})
	b := tm.CreateGameNode(ports.Game{ID: "b"})
	tm.AppendGameNode(a)
	tm.AppendGameNode(b)
	require.Len(t, tm.games, 2)

	// re-append moves to the end, same instance
	tm.AppendGameNode(a)
	require.Len(t, tm.games, 2)
	assert.Equal(t, "b", tm.games[0].game.ID)
	assert.Same(t, a.(*gameNode), tm.games[1])
}

func TestSetStreamOrderKeepsExitingSlots(t *testing.T) {
	tm := newTestTerm(t)

	g := tm.CreateGameNode(ports.Game{ID: "g"})
	a := tm.CreateStreamNode(g, ports.Stream{ID: "a"})
	b := tm.CreateStreamNode(g, ports.Stream{ID: "b"})
	c := tm.CreateStreamNode(g, ports.Stream{ID: "c"})

	// a is exiting and unlisted: it must keep slot 0 while b and c swap
	tm.ExitTransition(a)
	tm.SetStreamOrder(g, []view.Node{c, b})

	assert.Equal(t, []string{"a", "c", "b"}, rowIDs(g.(*gameNode)))
}

func TestSetStreamOrderAppendsNewNodes(t *testing.T) {
	tm := newTestTerm(t)

	g := tm.CreateGameNode(ports.Game{ID: "g"})
	a := tm.CreateStreamNode(g, ports.Stream{ID: "a"})
	tm.RemoveStreamNode(g, a)
	b := tm.CreateStreamNode(g, ports.Stream{ID: "b"})

	tm.SetStreamOrder(g, []view.Node{b})
	assert.Equal(t, []string{"b"}, rowIDs(g.(*gameNode)))
}

func TestEnterOnExitingNodeRevives(t *testing.T) {
	tm := newTestTerm(t)

	g := tm.CreateGameNode(ports.Game{ID: "g"})
	s := tm.CreateStreamNode(g, ports.Stream{ID: "s"})

	tm.ExitTransition(s)
	assert.Equal(t, stateExiting, s.(*streamNode).phase.state)

	tm.EnterTransition(s)
	assert.Equal(t, stateEntering, s.(*streamNode).phase.state)
}

func TestPresentRequiresTTY(t *testing.T) {
	tm := newTestTerm(t)
	tm.tty = false

	assert.False(t, tm.Present("t", "m", func(bool) {}))

	tm.tty = true
	assert.True(t, tm.Present("t", "m", func(bool) {}))

	replied := false
	tm.prompt.reply = func(ok bool) { replied = ok }
	require.True(t, tm.resolvePrompt(true))
	assert.True(t, replied)
	assert.Nil(t, tm.prompt)

	// no prompt, nothing to resolve
	assert.False(t, tm.resolvePrompt(true))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "hell…", truncate("hello!", 5))
	assert.Equal(t, "…", truncate("hello", 1))
	assert.Equal(t, "", truncate("hello", 0))
	assert.Equal(t, "héllo", truncate("héllo", 5))
}
