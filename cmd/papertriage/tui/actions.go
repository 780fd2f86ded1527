package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/papertriage/papertriage/internal/candidate"
	"github.com/papertriage/papertriage/internal/session"
)

// submitFeedback posts a decision started with BeginDecision.
func (m model) submitFeedback(d session.Decision, title string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		res := client.SubmitFeedback(context.Background(), d.Request())
		return feedbackResultMsg{decision: d, title: title, result: res}
	}
}

// triggerRefresh runs one refresh through the coordinator. The caller has
// already claimed the slot with Begin.
func (m model) triggerRefresh() tea.Cmd {
	client, coord, req := m.client, m.refresh, m.refreshReq
	return func() tea.Msg {
		res, err := coord.Run(context.Background(), func(ctx context.Context) (candidate.RefreshResult, error) {
			return client.TriggerRefresh(ctx, req)
		})
		return refreshResultMsg{result: res, err: err}
	}
}

// copyToClipboard writes text off the UI loop.
func (m model) copyToClipboard(text string, view viewKind) tea.Cmd {
	cb := m.clipboard
	return func() tea.Msg {
		return clipboardResultMsg{err: cb.WriteText(text), view: view}
	}
}
