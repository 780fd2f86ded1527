package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/papertriage/papertriage/internal/candidate"
)

// clearLine erases what a previous, wider frame left on the line.
const clearLine = "\x1b[K\n"

// listLayout splits the screen between the candidate list and the detail
// pane.
func (m model) listLayout() (listRows, detailRows int) {
	helpLines := len(reflowHelpRows(m.keys.listHelpRows(), m.width))
	// title, stats, tabs, header, separator, status line
	avail := max(m.height-6-helpLines, 6)
	listRows = max(int(float64(avail)*listHeightFraction), 3)
	detailRows = max(avail-listRows, 3)
	return listRows, detailRows
}

func (m model) renderListView() string {
	var b strings.Builder
	listRows, detailRows := m.listLayout()

	b.WriteString(titleStyle.Render("papertriage"))
	b.WriteString(statusStyle.Render("  " + m.serverAddr))
	b.WriteString(clearLine)

	b.WriteString(m.renderStatsLine())
	b.WriteString(clearLine)

	b.WriteString(m.renderTabs())
	b.WriteString(clearLine)

	b.WriteString(m.renderListRows(listRows))

	b.WriteString(statusStyle.Render(strings.Repeat("─", max(m.width, 1))))
	b.WriteString(clearLine)

	for _, line := range m.renderDetail(detailRows) {
		b.WriteString(line)
		b.WriteString(clearLine)
	}

	b.WriteString(m.renderStatusLine(viewList))
	b.WriteString(clearLine)

	b.WriteString(renderHelpTable(m.keys.listHelpRows(), m.width))
	b.WriteString("\x1b[K\x1b[J")
	return b.String()
}

func (m model) renderStatsLine() string {
	st := m.session.Stats()
	return strings.Join([]string{
		pendingStyle.Render(fmt.Sprintf("%d pending", st.Pending)),
		acceptedStyle.Render(fmt.Sprintf("%d accepted", st.Accepted)),
		rejectedStyle.Render(fmt.Sprintf("%d rejected", st.Rejected)),
		statusStyle.Render(fmt.Sprintf("%d total", st.Total())),
	}, statusStyle.Render(" · "))
}

func (m model) renderTabs() string {
	tabs := make([]string, 0, len(filterCycle))
	for i, f := range filterCycle {
		label := fmt.Sprintf("%d %s", i+1, titleCase(statusName(f)))
		if f == m.session.Status() {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, statusStyle.Render(label))
		}
	}
	page := fmt.Sprintf("Page %d/%d (%d)", m.session.Page(), m.session.TotalPages(), m.session.Total())
	return strings.Join(tabs, "  ") + statusStyle.Render("   "+page)
}

// renderListRows draws the column header and a window of rows around the
// selection, padded to exactly rows+1 lines.
func (m model) renderListRows(rows int) string {
	var b strings.Builder
	header := fmt.Sprintf("  %-9s %4s  %s", "Status", "Year", "Title")
	if !m.hideScores {
		header = fmt.Sprintf("  %-9s %5s %4s  %s", "Status", "Score", "Year", "Title")
	}
	b.WriteString(statusStyle.Render(header))
	b.WriteString(clearLine)

	written := 0
	switch {
	case m.loading && m.session.Empty():
		b.WriteString(statusStyle.Render("  Loading candidates..."))
		b.WriteString(clearLine)
		written++
	case m.session.Empty():
		msg := "  No candidates"
		if m.session.Status() != candidate.StatusAll {
			msg += " with status " + statusName(m.session.Status())
		}
		if m.session.LastLoadError() != nil {
			msg = "  Could not load candidates"
		}
		b.WriteString(statusStyle.Render(msg))
		b.WriteString(clearLine)
		written++
	default:
		n := m.session.Len()
		sel := m.session.SelectedIndex()
		start := 0
		if n > rows && sel >= 0 {
			start = min(max(sel-rows/2, 0), n-rows)
		}
		end := min(start+rows, n)
		for i := start; i < end; i++ {
			b.WriteString(m.renderRow(m.session.At(i), i == sel))
			b.WriteString(clearLine)
			written++
		}
	}
	for ; written < rows; written++ {
		b.WriteString(clearLine)
	}
	return b.String()
}

func (m model) renderRow(c candidate.Candidate, selected bool) string {
	status := c.EffectiveStatus()
	year := "    "
	if c.Year != 0 {
		year = fmt.Sprintf("%4d", c.Year)
	}
	prefix := fmt.Sprintf("%-9s %s", status, year)
	if !m.hideScores {
		prefix = fmt.Sprintf("%-9s %5.2f %s", status, c.RetrievalScore, year)
	}
	titleW := max(m.width-2-lipgloss.Width(prefix)-2, 10)
	title := truncateWidth(oneLine(c.Title), titleW)

	if selected {
		line := "> " + prefix + "  " + title
		if pad := m.width - xansi.StringWidth(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		return selectedStyle.Render(line)
	}
	styledStatus := statusStyleFor(status).Render(fmt.Sprintf("%-9s", status))
	return "  " + styledStatus + prefix[9:] + "  " + title
}

// renderStatusLine shows, in priority order: the blocking error notice, a
// flash, outstanding work, or the last load error.
func (m model) renderStatusLine(view viewKind) string {
	if m.errNotice != "" {
		line := errorStyle.Render("Error: "+oneLine(m.errNotice)) + statusStyle.Render("  [enter to dismiss]")
		return xansi.Truncate(line, max(m.width, 20), "…")
	}
	if flash := m.flashFor(view); flash != "" {
		return flashStyle.Render(truncateWidth(flash, max(m.width, 20)))
	}
	var work []string
	if m.loading {
		work = append(work, "loading")
	}
	if m.session.DecisionInFlight() {
		work = append(work, "submitting decision")
	}
	if m.refresh.InFlight() {
		work = append(work, "fetching new candidates")
	}
	if len(work) > 0 {
		return m.spinner.View() + " " + statusStyle.Render(strings.Join(work, ", ")+"...")
	}
	if err := m.session.LastLoadError(); err != nil {
		return errorStyle.Render(truncateWidth("Load failed: "+oneLine(err.Error()), max(m.width, 20)))
	}
	return ""
}

// titleCase upper-cases the first ASCII letter.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
