package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/papertriage/papertriage/internal/candidate"
	"github.com/papertriage/papertriage/internal/session"
)

const detailScrollStep = 5

// filterCycle is the order tab steps through.
var filterCycle = []candidate.Status{
	candidate.StatusPending,
	candidate.StatusAccepted,
	candidate.StatusRejected,
	candidate.StatusAll,
}

func (m model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// An error notice swallows input until it is acknowledged.
	if m.errNotice != "" {
		switch msg.String() {
		case "esc", "enter", " ":
			m.errNotice = ""
		}
		return m, nil
	}

	switch m.currentView {
	case viewReject:
		return m.handleRejectKey(msg)
	case viewHelp:
		return m.handleHelpKey(msg)
	}
	return m.handleListKey(msg)
}

func (m model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.helpFromView = m.currentView
		m.currentView = viewHelp
		return m, nil
	case key.Matches(msg, k.Down):
		if m.session.SelectNext() {
			m.detailScroll = 0
		}
		return m, nil
	case key.Matches(msg, k.Up):
		if m.session.SelectPrev() {
			m.detailScroll = 0
		}
		return m, nil
	case key.Matches(msg, k.First):
		if !m.session.DecisionInFlight() && m.session.SelectFirst() {
			m.detailScroll = 0
		}
		return m, nil
	case key.Matches(msg, k.Last):
		if !m.session.DecisionInFlight() && m.session.SelectLast() {
			m.detailScroll = 0
		}
		return m, nil
	case key.Matches(msg, k.NextPending):
		return m.handleNextPendingKey()
	case key.Matches(msg, k.Accept):
		return m.submitDecision(candidate.LabelAccept, nil, "")
	case key.Matches(msg, k.Reject):
		return m.openRejectModal()
	case key.Matches(msg, k.Refresh):
		return m.handleRefreshKey()
	case key.Matches(msg, k.Reload):
		if m.blockedByDecision() {
			return m, nil
		}
		return m, m.reload()
	case key.Matches(msg, k.PrevPage):
		if m.blockedByDecision() || !m.session.PrevPage() {
			return m, nil
		}
		return m, m.reload()
	case key.Matches(msg, k.NextPage):
		if m.blockedByDecision() || !m.session.NextPage() {
			return m, nil
		}
		return m, m.reload()
	case key.Matches(msg, k.Filter):
		return m.setFilter(nextFilter(m.session.Status()))
	case key.Matches(msg, k.Pending):
		return m.setFilter(candidate.StatusPending)
	case key.Matches(msg, k.Accepted):
		return m.setFilter(candidate.StatusAccepted)
	case key.Matches(msg, k.Rejected):
		return m.setFilter(candidate.StatusRejected)
	case key.Matches(msg, k.All):
		return m.setFilter(candidate.StatusAll)
	case key.Matches(msg, k.ScrollDown):
		m.detailScroll += detailScrollStep
		return m, nil
	case key.Matches(msg, k.ScrollUp):
		m.detailScroll = max(m.detailScroll-detailScrollStep, 0)
		return m, nil
	case key.Matches(msg, k.Copy):
		sel, ok := m.session.Selected()
		if !ok {
			m.setFlash("Nothing selected", flashDuration, viewList)
			return m, nil
		}
		return m, m.copyToClipboard(sel.Link(), viewList)
	}
	return m, nil
}

func (m model) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "?", "esc", "q", "enter":
		m.currentView = m.helpFromView
	}
	return m, nil
}

// blockedByDecision flashes a notice and reports true while a decision is
// being submitted. Reloading then would discard its result.
func (m *model) blockedByDecision() bool {
	if !m.session.DecisionInFlight() {
		return false
	}
	m.setFlash("Wait for the current decision to finish", flashDuration, viewList)
	return true
}

func (m model) setFilter(status candidate.Status) (tea.Model, tea.Cmd) {
	if m.blockedByDecision() {
		return m, nil
	}
	if status == m.session.Status() && m.session.Page() == 1 && !m.loading {
		return m, nil
	}
	m.session.SetFilter(status)
	m.detailScroll = 0
	return m, m.reload()
}

func nextFilter(s candidate.Status) candidate.Status {
	for i, f := range filterCycle {
		if f == s {
			return filterCycle[(i+1)%len(filterCycle)]
		}
	}
	return filterCycle[0]
}

func (m model) handleNextPendingKey() (tea.Model, tea.Cmd) {
	if m.session.DecisionInFlight() {
		return m, nil
	}
	moved := false
	if _, ok := m.session.Selected(); ok {
		moved = m.session.AdvanceToNextPending()
	} else if m.session.SelectFirst() {
		// With nothing selected the first row counts when it is pending.
		sel, _ := m.session.Selected()
		moved = sel.IsPending() || m.session.AdvanceToNextPending()
	}
	if moved {
		m.detailScroll = 0
		return m, nil
	}
	m.setFlash("No other pending candidates on this page", flashDuration, viewList)
	return m, nil
}

// submitDecision validates the decision against the session and, when it is
// legal, sends it. Decisions on candidates that are already decided are
// ignored without a notice.
func (m model) submitDecision(label candidate.Label, tags []string, text string) (tea.Model, tea.Cmd) {
	var title string
	if sel, ok := m.session.Selected(); ok {
		title = sel.Title
	}
	d, err := m.session.BeginDecision(label, tags, text)
	switch {
	case errors.Is(err, session.ErrNotPending):
		return m, nil
	case errors.Is(err, session.ErrNoSelection):
		m.setFlash("Select a candidate first", flashDuration, m.currentView)
		return m, nil
	case errors.Is(err, session.ErrDecisionInFlight):
		m.setFlash("Still submitting the previous decision", flashDuration, m.currentView)
		return m, nil
	case err != nil:
		m.errNotice = err.Error()
		return m, nil
	}
	return m, tea.Batch(m.submitFeedback(d, title), m.spinner.Tick)
}

func (m model) handleRefreshKey() (tea.Model, tea.Cmd) {
	if !m.refresh.Begin() {
		m.setFlash("Refresh already in progress", flashDuration, viewList)
		return m, nil
	}
	return m, tea.Batch(m.triggerRefresh(), m.spinner.Tick)
}

// decisionVerb is the past tense shown after a confirmed decision.
func decisionVerb(l candidate.Label) string {
	if l == candidate.LabelReject {
		return "Rejected"
	}
	return "Accepted"
}

// failedDecisionNotice describes a decision the backend did not record.
func failedDecisionNotice(l candidate.Label, title string, err error) string {
	action := "accept"
	if l == candidate.LabelReject {
		action = "reject"
	}
	if title == "" {
		return fmt.Sprintf("Could not %s: %v", action, err)
	}
	return fmt.Sprintf("Could not %s %q: %v", action, truncateWidth(oneLine(title), 50), err)
}
