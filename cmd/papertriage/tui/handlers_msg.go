package tui

import (
	"errors"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/papertriage/papertriage/internal/candidate"
	"github.com/papertriage/papertriage/internal/session"
)

func (m model) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.note.SetWidth(max(min(m.width-6, 80), 20))
	return m, nil
}

func (m model) handlePageMsg(msg pageMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.fetchSeq {
		return m, nil // superseded by a later load
	}
	m.loading = false
	m.detailScroll = 0
	m.session.ApplyPage(msg.data)

	if msg.data.Err != nil {
		log.Printf("load %s page %d: %v", statusName(msg.data.Status), msg.data.Page, msg.data.Err)
	}
	if msg.data.StatsErr != nil {
		log.Printf("load stats: %v", msg.data.StatsErr)
	}

	// A page emptied by decisions or a shrinking filter falls back to the
	// last page that still has rows.
	if msg.data.Err == nil && m.session.Empty() && m.session.Page() > 1 && m.session.Total() > 0 {
		return m, m.loadPage(m.session.Status(), m.session.TotalPages())
	}

	if m.currentView == viewReject {
		m.note.Blur()
		m.currentView = viewList
	}
	if m.autoSelect {
		m.autoSelect = false
		m.session.SelectFirst()
	}
	return m, nil
}

func (m model) handleFeedbackResultMsg(msg feedbackResultMsg) (tea.Model, tea.Cmd) {
	d := msg.decision
	out, err := m.session.CompleteDecision(d, msg.result)
	switch {
	case errors.Is(err, session.ErrStaleDecision):
		log.Printf("%s %s: list reloaded while submitting", d.Label, d.PaperID)
		if msg.result.Success {
			m.setFlash(fmt.Sprintf("%s: %s", decisionVerb(d.Label), truncateWidth(oneLine(msg.title), 60)), flashDuration, viewList)
		}
		return m, m.reload()
	case err != nil:
		log.Printf("%s %s: %v", d.Label, d.PaperID, err)
		m.errNotice = failedDecisionNotice(d.Label, msg.title, err)
		return m, nil
	}

	log.Printf("%s %s (removed=%t)", d.Label, out.PaperID, out.Removed)
	if d.Label == candidate.LabelReject {
		m.clearRejectStaging()
		m.currentView = viewList
	}
	m.detailScroll = 0
	m.setFlash(fmt.Sprintf("%s: %s", decisionVerb(d.Label), truncateWidth(oneLine(msg.title), 60)), flashDuration, viewList)

	// The page ran dry but the filter still has rows on the server.
	if out.Removed && m.session.Empty() && m.session.Total() > 0 {
		return m, m.loadPage(m.session.Status(), min(m.session.Page(), m.session.TotalPages()))
	}
	return m, nil
}

func (m model) handleRefreshResultMsg(msg refreshResultMsg) (tea.Model, tea.Cmd) {
	m.refresh.End()

	var timeout *session.TimeoutError
	switch {
	case errors.As(msg.err, &timeout):
		log.Printf("refresh: %v", msg.err)
		m.errNotice = fmt.Sprintf("%v; the backend may still add candidates", msg.err)
		return m, nil
	case errors.Is(msg.err, session.ErrRefreshFailed):
		log.Printf("refresh: %v", msg.err)
		m.errNotice = msg.err.Error()
		return m, nil
	case msg.err != nil:
		log.Printf("refresh: %v", msg.err)
		m.errNotice = fmt.Sprintf("Refresh failed: %v", msg.err)
		return m, nil
	}

	log.Printf("refresh: added %d (query %s)", msg.result.Added, msg.result.QueryID)
	m.setFlash(addedMessage(msg.result.Added), flashDurationLong, viewList)
	return m, m.reload()
}

func addedMessage(n int) string {
	switch n {
	case 0:
		return "No new candidates found"
	case 1:
		return "Added 1 new candidate"
	}
	return fmt.Sprintf("Added %d new candidates", n)
}

func (m model) handleClipboardResultMsg(msg clipboardResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setFlash(fmt.Sprintf("Copy failed: %v", msg.err), flashDuration, msg.view)
		return m, nil
	}
	m.setFlash("Copied to clipboard", flashDuration, msg.view)
	return m, nil
}

// statusName labels a filter, including the unfiltered one.
func statusName(s candidate.Status) string {
	if s == candidate.StatusAll {
		return "all"
	}
	return string(s)
}
