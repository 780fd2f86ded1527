package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/papertriage/papertriage/internal/candidate"
)

func TestAcceptWithPendingFilter(t *testing.T) {
	f := newFakeBackend(P, P, P)
	s := loadedSession(t, f, candidate.StatusPending)
	r := NewReviewer(s, f, nil)
	s.SelectByIndex(0)
	before := s.Stats()

	out, err := r.Accept(context.Background())
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if !out.Removed || out.NewStatus != candidate.StatusAccepted || out.PaperID != "p0" {
		t.Errorf("unexpected outcome %+v", out)
	}
	if diff := cmp.Diff([]string{"p1", "p2"}, paperIDs(s)); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	assertSelection(t, s, 0)
	if s.Stats().Pending != before.Pending-1 || s.Stats().Accepted != before.Accepted+1 {
		t.Errorf("stats %+v -> %+v", before, s.Stats())
	}
	if s.Total() != 2 {
		t.Errorf("Total = %d, want 2", s.Total())
	}
}

func TestRejectLastItemPayload(t *testing.T) {
	f := newFakeBackend(P, P, P)
	s := loadedSession(t, f, candidate.StatusPending)
	r := NewReviewer(s, f, nil)
	s.SelectByIndex(2)

	if _, err := r.Reject(context.Background(), []string{"off-topic"}, "not relevant"); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	sent := f.submitted()
	if len(sent) != 1 {
		t.Fatalf("submitted %d requests, want 1", len(sent))
	}
	req := sent[0]
	req.QueryID = ""
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"paper_id":"p2","label":"reject","reason_tags":["off-topic"],"free_text":"not relevant"}`
	if string(data) != want {
		t.Errorf("payload:\n got %s\nwant %s", data, want)
	}
	if sent[0].QueryID != "q1" {
		t.Errorf("query_id = %q, want q1", sent[0].QueryID)
	}
	assertSelection(t, s, 1)
	if diff := cmp.Diff(candidate.Stats{Pending: 2, Rejected: 1}, s.Stats()); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestAcceptDropsRejectInputs(t *testing.T) {
	f := newFakeBackend(P)
	s := loadedSession(t, f, candidate.StatusAll)
	s.SelectByIndex(0)
	d, err := s.BeginDecision(candidate.LabelAccept, []string{"off-topic"}, "note")
	if err != nil {
		t.Fatal(err)
	}
	if d.ReasonTags != nil || d.FreeText != "" {
		t.Errorf("accept kept reject inputs: %+v", d)
	}
}

func TestDecisionGuards(t *testing.T) {
	t.Run("no selection", func(t *testing.T) {
		f := newFakeBackend(P)
		s := loadedSession(t, f, candidate.StatusAll)
		_, err := NewReviewer(s, f, nil).Accept(context.Background())
		if !errors.Is(err, ErrNoSelection) {
			t.Fatalf("err = %v, want ErrNoSelection", err)
		}
		if len(f.submitted()) != 0 {
			t.Error("guard failure reached the backend")
		}
	})

	t.Run("not pending", func(t *testing.T) {
		f := newFakeBackend(A, R)
		s := loadedSession(t, f, candidate.StatusAll)
		r := NewReviewer(s, f, nil)
		before := s.Stats()
		for i, label := range []candidate.Label{candidate.LabelAccept, candidate.LabelReject} {
			s.SelectByIndex(i)
			_, err := r.decide(context.Background(), label, nil, "")
			var stateErr *InvalidStateError
			if !errors.As(err, &stateErr) || !errors.Is(err, ErrNotPending) {
				t.Fatalf("%s: err = %v, want InvalidStateError", label, err)
			}
			if stateErr.PaperID != s.Candidates()[i].PaperID {
				t.Errorf("PaperID = %q", stateErr.PaperID)
			}
		}
		if len(f.submitted()) != 0 {
			t.Error("guard failure reached the backend")
		}
		if diff := cmp.Diff(before, s.Stats()); diff != "" {
			t.Errorf("stats changed (-want +got):\n%s", diff)
		}
		if s.DecisionInFlight() {
			t.Error("guard failure left a decision in flight")
		}
	})

	t.Run("invalid label", func(t *testing.T) {
		s := loadedSession(t, newFakeBackend(P), candidate.StatusAll)
		s.SelectByIndex(0)
		if _, err := s.BeginDecision("maybe", nil, ""); err == nil {
			t.Fatal("expected error")
		}
		if s.DecisionInFlight() {
			t.Error("invalid label left a decision in flight")
		}
	})
}

func TestDecisionInFlight(t *testing.T) {
	s := loadedSession(t, newFakeBackend(P, P, P), candidate.StatusAll)
	s.SelectByIndex(1)
	d, err := s.BeginDecision(candidate.LabelAccept, nil, "")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.BeginDecision(candidate.LabelReject, nil, ""); !errors.Is(err, ErrDecisionInFlight) {
		t.Errorf("second Begin err = %v", err)
	}
	if s.SelectNext() || s.SelectPrev() || s.SelectByIndex(0) || s.AdvanceToNextPending() {
		t.Error("selection moved while a decision was in flight")
	}
	assertSelection(t, s, 1)
	if s.Candidates()[1].Status != P {
		t.Error("status mutated before confirmation")
	}

	if _, err := s.CompleteDecision(d, candidate.FeedbackResult{Success: true}); err != nil {
		t.Fatalf("CompleteDecision: %v", err)
	}
	if s.DecisionInFlight() {
		t.Error("guard not released")
	}
}

func TestDecisionFailureLeavesStateUnchanged(t *testing.T) {
	f := newFakeBackend(P, P)
	f.feedbackResult = &candidate.FeedbackResult{Success: false, Message: "HTTP 500: database locked"}
	s := loadedSession(t, f, candidate.StatusPending)
	s.SelectByIndex(0)
	before := s.Stats()

	_, err := NewReviewer(s, f, nil).Accept(context.Background())
	if !errors.Is(err, ErrFeedbackFailed) {
		t.Fatalf("err = %v, want ErrFeedbackFailed", err)
	}
	if err.Error() != "feedback failed: HTTP 500: database locked" {
		t.Errorf("message = %q", err.Error())
	}
	if diff := cmp.Diff([]string{"p0", "p1"}, paperIDs(s)); diff != "" {
		t.Errorf("list changed (-want +got):\n%s", diff)
	}
	if s.Candidates()[0].Status != P || s.Stats() != before || s.Total() != 2 {
		t.Error("state mutated after failed feedback")
	}
	assertSelection(t, s, 0)
	if s.DecisionInFlight() {
		t.Error("guard not released after failure")
	}
}

func TestStaleDecisionAfterReload(t *testing.T) {
	f := newFakeBackend(P, P)
	s := loadedSession(t, f, candidate.StatusAll)
	s.SelectByIndex(0)
	d, err := s.BeginDecision(candidate.LabelAccept, nil, "")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Reload(context.Background(), f); err != nil {
		t.Fatal(err)
	}
	if s.DecisionInFlight() {
		t.Error("reload kept the old decision in flight")
	}
	before := s.Stats()
	if _, err := s.CompleteDecision(d, candidate.FeedbackResult{Success: true}); !errors.Is(err, ErrStaleDecision) {
		t.Fatalf("err = %v, want ErrStaleDecision", err)
	}
	if s.Stats() != before || s.Len() != 2 {
		t.Error("stale decision mutated the session")
	}
}

func TestKeepDecidedInAllAdvances(t *testing.T) {
	f := newFakeBackend(P, A, P)
	s := loadedSession(t, f, candidate.StatusAll, KeepDecidedInAll(true))
	r := NewReviewer(s, f, nil)
	s.SelectByIndex(0)

	out, err := r.Accept(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.Removed {
		t.Error("decided candidate removed from the unfiltered view")
	}
	if s.Len() != 3 || s.Total() != 3 {
		t.Errorf("len %d total %d, want 3", s.Len(), s.Total())
	}
	assertSelection(t, s, 2)

	// Decisions are terminal: going back to the accepted one is refused.
	s.SelectByIndex(0)
	if _, err := r.Reject(context.Background(), nil, ""); !errors.Is(err, ErrNotPending) {
		t.Errorf("re-decision err = %v, want ErrNotPending", err)
	}
	if len(f.submitted()) != 1 {
		t.Errorf("submitted %d requests, want 1", len(f.submitted()))
	}
}

func TestStatusTransitionsOnlyFromPending(t *testing.T) {
	f := newFakeBackend(P, P, P, P)
	s := loadedSession(t, f, candidate.StatusAll, KeepDecidedInAll(true))
	r := NewReviewer(s, f, nil)

	labels := []candidate.Label{candidate.LabelAccept, candidate.LabelReject, candidate.LabelReject, candidate.LabelAccept}
	for i, label := range labels {
		s.ClearSelection()
		s.SelectByIndex(i)
		if _, err := r.decide(context.Background(), label, nil, ""); err != nil {
			t.Fatalf("decision %d: %v", i, err)
		}
		for _, again := range []candidate.Label{candidate.LabelAccept, candidate.LabelReject} {
			s.SelectByIndex(i)
			if _, err := r.decide(context.Background(), again, nil, ""); !errors.Is(err, ErrNotPending) {
				t.Fatalf("repeat %s on %d: %v", again, i, err)
			}
		}
		if got := s.Candidates()[i].Status; got != label.Status() {
			t.Errorf("candidate %d status %q, want %q", i, got, label.Status())
		}
	}
	if diff := cmp.Diff(candidate.Stats{Accepted: 2, Rejected: 2}, s.Stats()); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestAbortDecision(t *testing.T) {
	s := loadedSession(t, newFakeBackend(P), candidate.StatusAll)
	s.SelectByIndex(0)
	d, _ := s.BeginDecision(candidate.LabelAccept, nil, "")
	s.AbortDecision(d)
	if s.DecisionInFlight() {
		t.Error("AbortDecision did not release the guard")
	}
	if _, err := s.BeginDecision(candidate.LabelAccept, nil, ""); err != nil {
		t.Errorf("Begin after abort: %v", err)
	}
}

func TestFocus(t *testing.T) {
	f := newFakeBackend(A, P)
	s := New()
	r := NewReviewer(s, f, nil)
	c, err := r.Focus(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if c.PaperID != "p1" {
		t.Errorf("focused %q", c.PaperID)
	}
	assertSelection(t, s, 0)
	if _, err := r.Accept(context.Background()); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("focused candidate not removed: len %d", s.Len())
	}
}
