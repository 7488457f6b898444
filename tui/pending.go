package tui

// pendingLines collects scrollback lines produced by client callbacks during
// an event pump. Everything runs on the Update goroutine, so no locking is
// needed; the buffer only decouples callback timing from bubbletea's message
// flow.
type pendingLines struct {
	lines []string
}

func (p *pendingLines) add(line string) {
	if line == "" {
		return
	}
	p.lines = append(p.lines, line)
}

func (p *pendingLines) take() []string {
	lines := p.lines
	p.lines = nil
	return lines
}
