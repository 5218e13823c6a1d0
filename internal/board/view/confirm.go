package view

// ConfirmGate serializes yes/no prompts for destructive actions. At
// most one prompt is outstanding; a new request resolves the previous
// prompt's callback with false before presenting. All methods run on
// the loop.
type ConfirmGate struct {
	surface ConfirmSurface

	active *prompt
}

type prompt struct {
	reply func(bool)
	done  bool
}

func NewConfirmGate(surface ConfirmSurface) *ConfirmGate {
	return &ConfirmGate{surface: surface}
}

// Confirm presents title/message and calls reply exactly once. With no
// usable surface the prompt resolves immediately to def.
func (g *ConfirmGate) Confirm(title, message string, def bool, reply func(bool)) {
	if g.active != nil {
		g.resolve(g.active, false)
	}

	p := &prompt{reply: reply}
	g.active = p

	if g.surface == nil {
		g.resolve(p, def)
		return
	}
	if !g.surface.Present(title, message, func(ok bool) {
		g.resolve(p, ok)
	}) {
		g.resolve(p, def)
	}
}

func (g *ConfirmGate) resolve(p *prompt, ok bool) {
	if p.done {
		return
	}
	p.done = true
	if g.active == p {
		g.active = nil
	}
	p.reply(ok)
}
