package tui

import "strings"

func (m model) renderHelpView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("papertriage keys"))
	b.WriteString(clearLine)
	b.WriteString(clearLine)
	b.WriteString(renderHelpTable(m.keys.fullHelpRows(), m.width))
	b.WriteString(clearLine)
	b.WriteString(clearLine)
	b.WriteString(statusStyle.Render("Decided candidates leave the pending view. Press ? or esc to go back."))
	b.WriteString("\x1b[K\x1b[J")
	return b.String()
}
