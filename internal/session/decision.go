package session

import (
	"fmt"
	"strings"

	"github.com/papertriage/papertriage/internal/candidate"
)

// Decision is a snapshot of one accept or reject taken when it was started.
// Seq is the load generation it belongs to.
type Decision struct {
	PaperID    string
	QueryID    string
	Label      candidate.Label
	ReasonTags []string
	FreeText   string
	Seq        uint64
}

// Request builds the feedback payload for d.
func (d Decision) Request() candidate.FeedbackRequest {
	req := candidate.NewFeedbackRequest(d.PaperID, d.Label, d.ReasonTags, d.FreeText)
	req.QueryID = d.QueryID
	return req
}

// Outcome describes what a confirmed decision did to the working page.
type Outcome struct {
	PaperID   string
	NewStatus candidate.Status
	Removed   bool
}

// BeginDecision validates that the selected candidate can take label and
// marks a decision in flight. Nothing is mutated when it returns an error.
// Reason tags and free text are kept only for rejections.
func (s *Session) BeginDecision(label candidate.Label, reasonTags []string, freeText string) (Decision, error) {
	if s.pending != nil {
		return Decision{}, ErrDecisionInFlight
	}
	if !label.Valid() {
		return Decision{}, fmt.Errorf("invalid label %q", label)
	}
	sel, ok := s.Selected()
	if !ok {
		return Decision{}, ErrNoSelection
	}
	if !sel.IsPending() {
		return Decision{}, &InvalidStateError{PaperID: sel.PaperID, Status: sel.EffectiveStatus()}
	}

	d := Decision{
		PaperID: sel.PaperID,
		QueryID: sel.QueryID,
		Label:   label,
		Seq:     s.loadSeq,
	}
	if label == candidate.LabelReject {
		d.ReasonTags = append([]string(nil), reasonTags...)
		d.FreeText = strings.TrimSpace(freeText)
	}
	s.pending = &d
	return d, nil
}

// CompleteDecision applies the server's answer to a decision started with
// BeginDecision. On success the selected candidate's status changes first,
// then the counters, then the page (removal or advance), then the
// selection. A failed or stale decision leaves the page as it was.
func (s *Session) CompleteDecision(d Decision, res candidate.FeedbackResult) (Outcome, error) {
	if d.Seq != s.loadSeq || s.pending == nil || s.pending.PaperID != d.PaperID {
		return Outcome{}, ErrStaleDecision
	}
	s.pending = nil

	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "unknown error"
		}
		return Outcome{}, fmt.Errorf("%w: %s", ErrFeedbackFailed, msg)
	}

	newStatus := d.Label.Status()
	if err := s.ApplyDecision(d.PaperID, newStatus); err != nil {
		return Outcome{}, err
	}
	out := Outcome{PaperID: d.PaperID, NewStatus: newStatus}
	if s.ShouldRemoveAfterDecision(newStatus) {
		out.Removed = s.RemoveCurrent()
	} else {
		s.AdvanceToNextPending()
	}
	return out, nil
}

// AbortDecision releases the in-flight guard without applying anything.
func (s *Session) AbortDecision(d Decision) {
	if s.pending != nil && s.pending.PaperID == d.PaperID && d.Seq == s.loadSeq {
		s.pending = nil
	}
}
