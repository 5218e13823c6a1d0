package sched

import (
	"sync"
	"time"
)

// Loop is a single-goroutine cooperative scheduler. Everything that
// mutates view state runs on the loop, so the view engine needs no
// locks; timers fire back onto the loop as well.
type Loop struct {
	tasks chan func()

	stopOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

func NewLoop() *Loop {
	l := &Loop{
		tasks: make(chan func(), 256),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-l.quit:
			return
		}
	}
}

// Post queues fn for execution on the loop. Safe from any goroutine;
// a no-op after Stop.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.quit:
	case l.tasks <- fn:
	}
}

// After runs fn on the loop once d has elapsed. There is no hard
// cancel; stale callbacks are expected to neutralize themselves via
// generation checks.
func (l *Loop) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		l.Post(fn)
	})
}

func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.quit)
	})
	<-l.done
}

// Debouncer coalesces bursts of calls into one trailing invocation.
// Call must happen on the loop.
type Debouncer struct {
	loop  *Loop
	delay time.Duration
	seq   uint64
}

func NewDebouncer(loop *Loop, delay time.Duration) *Debouncer {
	return &Debouncer{loop: loop, delay: delay}
}

func (d *Debouncer) Call(fn func()) {
	d.seq++
	seq := d.seq
	d.loop.After(d.delay, func() {
		if seq != d.seq {
			return
		}
		fn()
	})
}
