package tui

import (
	"github.com/atotto/clipboard"
	"github.com/papertriage/papertriage/internal/candidate"
	"github.com/papertriage/papertriage/internal/session"
)

type viewKind int

const (
	viewList viewKind = iota
	viewReject
	viewHelp
)

// rejectFocus is the part of the reject modal receiving keys.
type rejectFocus int

const (
	focusTags rejectFocus = iota
	focusNote
)

// helpItem is a single help-bar entry with a key label and description.
type helpItem struct {
	key  string
	desc string
}

// pageMsg delivers a fetched page. Responses older than the model's
// fetchSeq are discarded.
type pageMsg struct {
	data session.PageData
	seq  int
}

// feedbackResultMsg carries the backend's answer to a decision started in
// Update.
type feedbackResultMsg struct {
	decision session.Decision
	title    string // for the flash, captured before the list changes
	result   candidate.FeedbackResult
}

type refreshResultMsg struct {
	result candidate.RefreshResult
	err    error
}

type clipboardResultMsg struct {
	err  error
	view viewKind // The view where copy was triggered (for flash attribution)
}

// ClipboardWriter is an interface for clipboard operations (allows mocking in tests)
type ClipboardWriter interface {
	WriteText(text string) error
}

// realClipboard implements ClipboardWriter using the system clipboard
type realClipboard struct{}

func (r *realClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

// option func(*options) is a functional option for TUI.
type option func(*options)

// withExternalIODisabled skips terminal background detection in newModel.
func withExternalIODisabled() option {
	return func(o *options) { o.disableExternalIO = true }
}

// withClipboard replaces the system clipboard.
func withClipboard(c ClipboardWriter) option {
	return func(o *options) { o.clipboard = c }
}

type options struct {
	disableExternalIO bool
	clipboard         ClipboardWriter
}
