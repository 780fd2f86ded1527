package session

import (
	"fmt"

	"github.com/papertriage/papertriage/internal/candidate"
)

// SelectByIndex selects the candidate at i. An out-of-range index is a
// caller bug and panics. It reports false, leaving the selection alone, while
// a decision is in flight.
func (s *Session) SelectByIndex(i int) bool {
	if i < 0 || i >= len(s.candidates) {
		panic(fmt.Sprintf("session: select index %d out of range [0,%d)", i, len(s.candidates)))
	}
	if s.pending != nil {
		return false
	}
	s.selectedIdx = i
	return true
}

// ClearSelection deselects without touching the list.
func (s *Session) ClearSelection() {
	if s.pending == nil {
		s.selectedIdx = -1
	}
}

// SelectNext moves down one row without wrapping. With nothing selected it
// selects the first row.
func (s *Session) SelectNext() bool {
	if s.pending != nil || len(s.candidates) == 0 {
		return false
	}
	if s.selectedIdx < 0 {
		s.selectedIdx = 0
		return true
	}
	if s.selectedIdx >= len(s.candidates)-1 {
		return false
	}
	s.selectedIdx++
	return true
}

// SelectPrev moves up one row without wrapping.
func (s *Session) SelectPrev() bool {
	if s.pending != nil || s.selectedIdx <= 0 {
		return false
	}
	s.selectedIdx--
	return true
}

// SelectFirst selects row 0 if the page has any rows.
func (s *Session) SelectFirst() bool {
	if len(s.candidates) == 0 {
		return false
	}
	return s.SelectByIndex(0)
}

// SelectLast selects the final row if the page has any rows.
func (s *Session) SelectLast() bool {
	if len(s.candidates) == 0 {
		return false
	}
	return s.SelectByIndex(len(s.candidates) - 1)
}

// nextPendingIndex scans forward from the selection to the end, then wraps
// from the top up to but excluding the selection. It returns -1 when no
// other candidate is pending.
func (s *Session) nextPendingIndex() int {
	for i := s.selectedIdx + 1; i < len(s.candidates); i++ {
		if s.candidates[i].IsPending() {
			return i
		}
	}
	for i := 0; i < s.selectedIdx; i++ {
		if s.candidates[i].IsPending() {
			return i
		}
	}
	return -1
}

// AdvanceToNextPending selects the next pending candidate in circular order,
// skipping the current one. The selection is unchanged when none exists.
func (s *Session) AdvanceToNextPending() bool {
	if s.pending != nil {
		return false
	}
	i := s.nextPendingIndex()
	if i < 0 {
		return false
	}
	s.selectedIdx = i
	return true
}

// RemoveCurrent drops the selected candidate from the page and decrements
// the filter total. The row that slides into the vacated slot becomes
// selected, or the new last row when the removed one was last.
func (s *Session) RemoveCurrent() bool {
	removed := s.selectedIdx
	if removed < 0 || removed >= len(s.candidates) {
		return false
	}
	s.candidates = append(s.candidates[:removed], s.candidates[removed+1:]...)
	s.total = max(s.total-1, 0)

	if len(s.candidates) == 0 {
		s.selectedIdx = -1
		return true
	}
	s.selectedIdx = min(removed, len(s.candidates)-1)
	return true
}

// ShouldRemoveAfterDecision reports whether a candidate that just moved to
// newStatus leaves the current page. It leaves when it no longer matches the
// filter, and under the unfiltered view unless decided candidates are kept.
func (s *Session) ShouldRemoveAfterDecision(newStatus candidate.Status) bool {
	if s.status == candidate.StatusAll {
		return !s.keepDecidedInAll
	}
	return newStatus != s.status
}
