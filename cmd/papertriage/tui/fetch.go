package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/papertriage/papertriage/internal/candidate"
	"github.com/papertriage/papertriage/internal/session"
)

// fetchPage returns a command that loads page of status together with the
// global stats. The result is tagged with the current fetchSeq.
func (m model) fetchPage(status candidate.Status, page int) tea.Cmd {
	client := m.client
	size := m.session.PageSize()
	seq := m.fetchSeq
	return func() tea.Msg {
		data := session.FetchPage(context.Background(), client, status, page, size)
		return pageMsg{data: data, seq: seq}
	}
}

// loadPage starts a new fetch generation so that any page still in flight
// is dropped when it arrives.
func (m *model) loadPage(status candidate.Status, page int) tea.Cmd {
	m.fetchSeq++
	m.loading = true
	return tea.Batch(m.fetchPage(status, page), m.spinner.Tick)
}

// reload re-fetches the current filter and page.
func (m *model) reload() tea.Cmd {
	return m.loadPage(m.session.Status(), m.session.Page())
}
