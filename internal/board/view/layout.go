package view

import (
	"time"

	"streamboard/internal/board/sched"
)

const (
	// DefaultResizeDebounce coalesces bursts of resize notifications.
	DefaultResizeDebounce = 100 * time.Millisecond
)

// Balancer picks the column count for the card grid: how many cards
// fit in the container width, never more than there are cards. After
// the grid settles it measures the offsets the renderer actually
// produced and shrinks the applied count if fewer columns landed.
type Balancer struct {
	loop *sched.Loop
	r    Renderer

	cards func() int

	CardWidth int
	Gap       int

	debounce *sched.Debouncer
	columns  int
}

func NewBalancer(loop *sched.Loop, r Renderer, cards func() int, cardWidth, gap int) *Balancer {
	return &Balancer{
		loop:      loop,
		r:         r,
		cards:     cards,
		CardWidth: cardWidth,
		Gap:       gap,
		debounce:  sched.NewDebouncer(loop, DefaultResizeDebounce),
	}
}

// Columns reports the column count last applied.
func (b *Balancer) Columns() int { return b.columns }

// Fit computes how many cards of CardWidth separated by Gap fit in
// width, clamped to [1, max(1, cards)].
func (b *Balancer) Fit(width, cards int) int {
	fit := (width + b.Gap) / (b.CardWidth + b.Gap)
	if fit < 1 {
		fit = 1
	}
	if cards < 1 {
		cards = 1
	}
	if fit > cards {
		fit = cards
	}
	return fit
}

// Relayout measures and applies the column count. Must be called on
// the loop.
func (b *Balancer) Relayout() {
	cols := b.Fit(b.r.ContainerWidth(), b.cards())
	if cols == b.columns {
		return
	}
	b.columns = cols
	b.r.ApplyColumns(cols)

	// the renderer needs two frames before offsets are trustworthy
	b.r.RequestFrame(func() {
		b.r.RequestFrame(func() {
			got := b.r.DistinctCardOffsets()
			if got >= 1 && got < b.columns {
				b.columns = got
				b.r.ApplyColumns(got)
			}
		})
	})
}

// OnResize may be called from any goroutine, at any rate.
func (b *Balancer) OnResize() {
	b.loop.Post(func() {
		b.debounce.Call(b.Relayout)
	})
}
