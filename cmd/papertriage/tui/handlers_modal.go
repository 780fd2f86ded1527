package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/papertriage/papertriage/internal/candidate"
)

// openRejectModal shows the reason checklist for the selected candidate.
// Staging from an earlier cancelled attempt on the same paper is restored.
func (m model) openRejectModal() (tea.Model, tea.Cmd) {
	sel, ok := m.session.Selected()
	if !ok {
		m.setFlash("Select a candidate first", flashDuration, viewList)
		return m, nil
	}
	if !sel.IsPending() {
		return m, nil
	}
	if m.session.DecisionInFlight() {
		m.setFlash("Still submitting the previous decision", flashDuration, viewList)
		return m, nil
	}
	if m.rejectPaperID != sel.PaperID {
		m.clearRejectStaging()
		m.rejectPaperID = sel.PaperID
	}
	m.rejectFocus = focusTags
	m.note.Blur()
	m.currentView = viewReject
	return m, nil
}

// clearRejectStaging forgets the checked reasons and the note.
func (m *model) clearRejectStaging() {
	m.rejectPaperID = ""
	m.rejectTags = make(map[string]bool)
	m.rejectCursor = 0
	m.rejectFocus = focusTags
	m.note.Reset()
	m.note.Blur()
}

// selectedReasons returns the checked reasons in display order.
func (m model) selectedReasons() []string {
	var tags []string
	for _, r := range m.rejectReasons {
		if m.rejectTags[r] {
			tags = append(tags, r)
		}
	}
	return tags
}

func (m *model) toggleReason(i int) {
	if i < 0 || i >= len(m.rejectReasons) {
		return
	}
	r := m.rejectReasons[i]
	m.rejectTags[r] = !m.rejectTags[r]
	m.rejectCursor = i
}

func (m model) handleRejectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The staging must stay put until the backend answers.
	if m.session.DecisionInFlight() {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.note.Blur()
		m.currentView = viewList
		return m, nil
	case "enter":
		if sel, ok := m.session.Selected(); !ok || sel.PaperID != m.rejectPaperID {
			m.currentView = viewList
			m.setFlash("The candidate list changed; select the paper again", flashDuration, viewList)
			return m, nil
		}
		return m.submitDecision(candidate.LabelReject, m.selectedReasons(), m.note.Value())
	case "tab", "shift+tab":
		if m.rejectFocus == focusTags {
			m.rejectFocus = focusNote
			return m, m.note.Focus()
		}
		m.rejectFocus = focusTags
		m.note.Blur()
		return m, nil
	}

	if m.rejectFocus == focusNote {
		var cmd tea.Cmd
		m.note, cmd = m.note.Update(msg)
		return m, cmd
	}

	switch s := msg.String(); s {
	case "up", "k":
		m.rejectCursor = max(m.rejectCursor-1, 0)
	case "down", "j":
		m.rejectCursor = min(m.rejectCursor+1, len(m.rejectReasons)-1)
	case " ", "x":
		m.toggleReason(m.rejectCursor)
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.toggleReason(int(s[0] - '1'))
	}
	return m, nil
}
