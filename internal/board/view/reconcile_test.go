package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamboard/internal/app/ports"
	"streamboard/internal/board/sched"
)

func newTestEngine(t *testing.T) (*Engine, *fakeRenderer, *sched.Loop) {
	t.Helper()
	loop := sched.NewLoop()
	t.Cleanup(loop.Stop)
	r := newFakeRenderer()
	e := NewEngine(loop, r)
	e.ExitDelay = 20 * time.Millisecond
	e.ReorderDelay = 30 * time.Millisecond
	return e, r, loop
}

func runOn(t *testing.T, loop *sched.Loop, fn func()) {
	t.Helper()
	done := make(chan struct{})
	loop.Post(func() {
		fn()
		close(done)
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop task did not run")
	}
}

func game(id string, streamIDs ...string) ports.GameGroup {
	gg := ports.GameGroup{Game: ports.Game{ID: id, Name: "game " + id}}
	for _, sid := range streamIDs {
		gg.Streams = append(gg.Streams, ports.Stream{
			ID:       sid,
			UserName: "user_" + sid,
		})
	}
	return gg
}

func payload(games ...ports.GameGroup) ports.StreamsPayload {
	return ports.StreamsPayload{Games: games}
}

func TestEngineCreatesCardsInPayloadOrder(t *testing.T) {
	e, r, loop := newTestEngine(t)

	runOn(t, loop, func() { e.Apply(payload(game("g1", "s1", "s2"), game("g2"))) })

	assert.Equal(t, []string{"g1", "g2"}, r.gameIDs())
	assert.Equal(t, []string{"s1", "s2"}, r.streamIDs("g1"))
	assert.Equal(t, "entered", r.gameState(r.findGame("g1")))
	assert.Equal(t, "entered", r.streamState(r.findStream("g1", "s1")))
}

func TestEngineReappendPreservesGameInstances(t *testing.T) {
	e, r, loop := newTestEngine(t)

	runOn(t, loop, func() { e.Apply(payload(game("g1"), game("g2"))) })
	g1 := r.findGame("g1")
	g2 := r.findGame("g2")

	runOn(t, loop, func() { e.Apply(payload(game("g2"), game("g1"))) })

	assert.Equal(t, []string{"g2", "g1"}, r.gameIDs())
	assert.Same(t, g1, r.findGame("g1"))
	assert.Same(t, g2, r.findGame("g2"))
}

// [a,b] -> [b,c]: a exits in place, b keeps its node, c enters; the
// reorder lands only after the exit finished.
func TestEngineStreamTurnover(t *testing.T) {
	e, r, loop := newTestEngine(t)

	runOn(t, loop, func() { e.Apply(payload(game("g1", "a", "b"))) })
	b := r.findStream("g1", "b")

	runOn(t, loop, func() { e.Apply(payload(game("g1", "b", "c"))) })

	assert.Equal(t, "exiting", r.streamState(r.findStream("g1", "a")))
	assert.Same(t, b, r.findStream("g1", "b"))
	assert.NotNil(t, r.findStream("g1", "c"))

	require.Eventually(t, func() bool {
		return r.findStream("g1", "a") == nil
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		ids := r.orderIDs("g1")
		return len(ids) == 2 && ids[0] == "b" && ids[1] == "c"
	}, time.Second, 5*time.Millisecond)
}

// Payload A {s1,s2}, B {s2}, C {s1,s2} in quick succession: s1's node
// is revived mid-exit and survives the stale exit timer. One node per
// id, always.
func TestEngineMidExitRevival(t *testing.T) {
	e, r, loop := newTestEngine(t)

	runOn(t, loop, func() { e.Apply(payload(game("g1", "s1", "s2"))) })
	s1 := r.findStream("g1", "s1")

	runOn(t, loop, func() { e.Apply(payload(game("g1", "s2"))) })
	assert.Equal(t, "exiting", r.streamState(s1))

	runOn(t, loop, func() { e.Apply(payload(game("g1", "s1", "s2"))) })
	assert.Same(t, s1, r.findStream("g1", "s1"))
	assert.Equal(t, "entered", r.streamState(s1))

	// outlive every pending timer; the stale removal must not fire
	time.Sleep(4 * e.ReorderDelay)
	assert.Same(t, s1, r.findStream("g1", "s1"))
	assert.Equal(t, 1, r.countLog("create-stream g1/s1"))
}

func TestEngineGameExitAndRevival(t *testing.T) {
	e, r, loop := newTestEngine(t)

	runOn(t, loop, func() { e.Apply(payload(game("g1"), game("g2"))) })
	g2 := r.findGame("g2")

	runOn(t, loop, func() { e.Apply(payload(game("g1"))) })
	assert.Equal(t, "exiting", r.gameState(g2))

	runOn(t, loop, func() { e.Apply(payload(game("g1"), game("g2"))) })
	assert.Same(t, g2, r.findGame("g2"))
	assert.Equal(t, "entered", r.gameState(g2))

	time.Sleep(4 * e.ExitDelay)
	assert.Same(t, g2, r.findGame("g2"))
}

func TestEngineGameRemovedAfterExit(t *testing.T) {
	e, r, loop := newTestEngine(t)

	runOn(t, loop, func() { e.Apply(payload(game("g1"), game("g2"))) })
	runOn(t, loop, func() { e.Apply(payload(game("g1"))) })

	require.Eventually(t, func() bool {
		return r.findGame("g2") == nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"g1"}, r.gameIDs())
}

// A deferred reorder scheduled for an older payload must not clobber
// the order of a newer one.
func TestEngineDeferredReorderSkipsStaleGeneration(t *testing.T) {
	e, r, loop := newTestEngine(t)

	runOn(t, loop, func() { e.Apply(payload(game("g1", "s1", "s2"))) })
	runOn(t, loop, func() { e.Apply(payload(game("g1", "s2"))) })
	runOn(t, loop, func() { e.Apply(payload(game("g1", "s2", "s3"))) })

	time.Sleep(4 * e.ReorderDelay)

	assert.Equal(t, []string{"s2", "s3"}, r.orderIDs("g1"))
	assert.Equal(t, []string{"s2", "s3"}, r.streamIDs("g1"))
}

func TestEngineImmediateReorderWithoutDepartures(t *testing.T) {
	e, r, loop := newTestEngine(t)

	runOn(t, loop, func() { e.Apply(payload(game("g1", "s1", "s2"))) })
	runOn(t, loop, func() { e.Apply(payload(game("g1", "s2", "s1"))) })

	// no stale rows, so the order call happens inside Apply
	assert.Equal(t, []string{"s2", "s1"}, r.orderIDs("g1"))
}
