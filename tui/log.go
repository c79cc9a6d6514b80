package tui

import "strings"

// logLine is one unstyled transcript line. Lines are kept raw so a
// resize can wrap and style them again.
type logLine struct {
	text string
	kind lineKind
}

// record appends a command echo and its output to the transcript,
// followed by a blank separator. Shell output is styled as system text
// rather than classified.
func (m *Model) record(echo string, lines []string, shell bool) {
	if echo != "" {
		m.transcript = append(m.transcript, logLine{text: "> " + echo, kind: kindInput})
	}
	for _, l := range lines {
		kind := kindShell
		if !shell {
			kind = classifyLine(l)
		}
		m.transcript = append(m.transcript, logLine{text: l, kind: kind})
	}
	m.transcript = append(m.transcript, logLine{})
	m.redraw()
}

// redraw wraps and styles the whole transcript at the current width and
// scrolls to the newest line.
func (m *Model) redraw() {
	if !m.ready {
		return
	}
	width := max(m.width, 10)
	var b strings.Builder
	for i, l := range m.transcript {
		if i > 0 {
			b.WriteByte('\n')
		}
		if l.text != "" {
			b.WriteString(renderLineKind(wordWrap(l.text, width), l.kind))
		}
	}
	m.log.SetContent(b.String())
	m.log.GotoBottom()
}

// wordWrap breaks text at spaces so no line exceeds width. A word longer
// than width is left whole on its own line.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}
	var lines []string
	cur := ""
	for _, w := range strings.Fields(text) {
		switch {
		case cur == "":
			cur = w
		case len(cur)+1+len(w) > width:
			lines = append(lines, cur)
			cur = w
		default:
			cur += " " + w
		}
	}
	return strings.Join(append(lines, cur), "\n")
}
