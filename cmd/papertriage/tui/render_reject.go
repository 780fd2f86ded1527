package tui

import (
	"fmt"
	"strings"
)

func (m model) renderRejectView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Reject candidate"))
	b.WriteString(clearLine)
	title := "(no longer selected)"
	if sel, ok := m.session.Selected(); ok && sel.PaperID == m.rejectPaperID {
		title = sel.Title
	}
	b.WriteString(truncateWidth(oneLine(title), max(m.width, 20)))
	b.WriteString(clearLine)
	b.WriteString(clearLine)

	heading := "Reasons"
	if m.rejectFocus == focusTags {
		heading = activeTabStyle.Render(heading)
	} else {
		heading = statusStyle.Render(heading)
	}
	b.WriteString(heading)
	b.WriteString(clearLine)
	for i, r := range m.rejectReasons {
		check := "[ ]"
		if m.rejectTags[r] {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %s", check, r)
		if i < 9 {
			line = fmt.Sprintf("%d %s", i+1, line)
		} else {
			line = "  " + line
		}
		if m.rejectFocus == focusTags && i == m.rejectCursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString(clearLine)
	}
	b.WriteString(clearLine)

	noteHeading := "Note"
	if m.rejectFocus == focusNote {
		noteHeading = activeTabStyle.Render(noteHeading)
	} else {
		noteHeading = statusStyle.Render(noteHeading)
	}
	b.WriteString(noteHeading)
	b.WriteString(clearLine)
	for _, line := range strings.Split(m.note.View(), "\n") {
		b.WriteString(line)
		b.WriteString(clearLine)
	}
	b.WriteString(clearLine)

	b.WriteString(m.renderStatusLine(viewReject))
	b.WriteString(clearLine)

	rows := [][]helpItem{
		{{"space", "toggle"}, {"1-9", "toggle reason"}, {"tab", "note"}},
		{{"↵", "reject"}, {"esc", "cancel"}},
	}
	if m.rejectFocus == focusNote {
		rows[0] = []helpItem{{"tab", "reasons"}}
	}
	b.WriteString(renderHelpTable(rows, m.width))
	b.WriteString("\x1b[K\x1b[J")
	return b.String()
}
