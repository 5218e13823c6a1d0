package term

import (
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	xterm "golang.org/x/term"

	"streamboard/internal/board/sched"
	"streamboard/pkg/logger"
)

const (
	framePeriod = 80 * time.Millisecond

	enterDuration = 220 * time.Millisecond
)

var (
	styleTitle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	styleCard      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	styleCardEnter = styleCard.Faint(true)
	styleCardExit  = styleCard.BorderForeground(lipgloss.Color("8")).Faint(true)
	styleHeader    = lipgloss.NewStyle().Bold(true)
	styleViewers   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleEnter     = lipgloss.NewStyle().Faint(true)
	styleExit      = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	styleEmpty     = lipgloss.NewStyle().Faint(true).Italic(true)
	styleStatus    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	stylePrompt    = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).Padding(0, 2).Bold(true)
)

// Term is a full-repaint terminal frontend. All state mutation happens
// on the scheduler loop; the repaint ticker is the frame source and
// frame callbacks run right after a paint.
type Term struct {
	log  logger.Logger
	loop *sched.Loop

	out *os.File
	tty bool

	games []*gameNode

	columns int
	width   int

	lastOffsets int
	frameCbs    []func()

	status string
	prompt *promptState

	onResize func()

	quitOnce sync.Once
	quit     chan struct{}
}

type promptState struct {
	title   string
	message string
	reply   func(bool)
}

func New(log logger.Logger, loop *sched.Loop) *Term {
	t := &Term{
		log:     log,
		loop:    loop,
		out:     os.Stdout,
		columns: 1,
		width:   80,
		quit:    make(chan struct{}),
	}
	t.tty = xterm.IsTerminal(int(t.out.Fd()))
	if w, _, err := xterm.GetSize(int(t.out.Fd())); err == nil && w > 0 {
		t.width = w
	}
	return t
}

// SetOnResize registers the callback fired after a terminal resize.
func (t *Term) SetOnResize(fn func()) { t.onResize = fn }

// Run drives repaints and resize handling until Quit.
func (t *Term) Run() {
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)

	ticker := time.NewTicker(framePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.loop.Post(t.paint)
		case <-winch:
			t.loop.Post(t.remeasure)
		case <-t.quit:
			return
		}
	}
}

func (t *Term) Quit() {
	t.quitOnce.Do(func() { close(t.quit) })
}

// Done reports whether Quit was requested.
func (t *Term) Done() <-chan struct{} { return t.quit }

func (t *Term) remeasure() {
	if w, _, err := xterm.GetSize(int(t.out.Fd())); err == nil && w > 0 {
		t.width = w
	}
	if t.onResize != nil {
		t.onResize()
	}
}

// Clipboard copies text via the OSC 52 escape. Terminals without OSC
// 52 support silently drop it, so require a tty at least.
func (t *Term) Clipboard(text string) error {
	if !t.tty {
		return fmt.Errorf("stdout is not a terminal")
	}
	payload := base64.StdEncoding.EncodeToString([]byte(text))
	_, err := fmt.Fprintf(t.out, "\x1b]52;c;%s\x07", payload)
	return err
}

// paint runs on the loop.
func (t *Term) paint() {
	frame := t.render()
	fmt.Fprint(t.out, "\x1b[H\x1b[2J"+frame)

	cbs := t.frameCbs
	t.frameCbs = nil
	for _, fn := range cbs {
		fn()
	}
}

func (t *Term) render() string {
	now := time.Now()

	cards := make([]string, 0, len(t.games))
	for _, g := range t.games {
		cards = append(cards, t.renderCard(g, now))
	}

	cols := t.columns
	if cols < 1 {
		cols = 1
	}
	columns := make([][]string, cols)
	for i, card := range cards {
		columns[i%cols] = append(columns[i%cols], card)
	}

	used := 0
	rendered := make([]string, 0, 2*cols)
	for _, col := range columns {
		if len(col) == 0 {
			continue
		}
		if used > 0 {
			rendered = append(rendered, " ")
		}
		used++
		rendered = append(rendered, lipgloss.JoinVertical(lipgloss.Left, col...))
	}
	t.lastOffsets = used

	grid := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	var footer string
	if t.prompt != nil {
		footer = stylePrompt.Render(t.prompt.title+"\n"+t.prompt.message+"  [y/n]") + "\n"
	}
	if t.status != "" {
		footer += styleStatus.Render(t.status) + "\n"
	}

	header := styleTitle.Render("streamboard") + "\n"
	return header + grid + "\n" + footer
}

func (t *Term) renderCard(g *gameNode, now time.Time) string {
	inner := CardWidth - 4

	head := styleHeader.Render(truncate(g.game.Name, inner-6)) +
		fmt.Sprintf(" (%d)", g.streamCount)

	lines := []string{head}
	if len(g.rows) == 0 {
		lines = append(lines, styleEmpty.Render("no live streams"))
	}
	for _, row := range g.rows {
		lines = append(lines, t.renderRow(row, inner, now))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)

	card := styleCard
	switch g.phase.state {
	case stateExiting:
		card = styleCardExit
	case stateEntering:
		if now.Sub(g.phase.stamp) < enterDuration {
			card = styleCardEnter
		} else {
			g.phase.state = stateResting
		}
	}
	return card.Width(inner).Render(body)
}

func (t *Term) renderRow(row *streamNode, width int, now time.Time) string {
	s := row.stream
	viewers := styleViewers.Render(fmt.Sprintf("%6d", s.ViewerCount))
	name := truncate(s.UserName, 18)
	title := truncate(s.Title, width-28)
	line := fmt.Sprintf("%-18s %s  %s", name, viewers, title)

	switch row.phase.state {
	case stateExiting:
		return styleExit.Render(line)
	case stateEntering:
		if now.Sub(row.phase.stamp) < enterDuration {
			return styleEnter.Render(line)
		}
		row.phase.state = stateResting
	}
	return line
}

func truncate(s string, max int) string {
	if max < 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

// Card geometry in terminal cells, shared with the layout balancer.
const (
	CardWidth = 44
	CardGap   = 1
)
