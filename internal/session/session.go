// Package session holds the review state machine: the working page of
// candidates, the selection cursor, global stats, and the decision and
// refresh workflows that mutate them.
//
// A Session is not safe for concurrent use. The TUI mutates it only from its
// Update loop and performs network I/O in commands that return messages; the
// CLI drives it from a single goroutine through a Reviewer.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/papertriage/papertriage/internal/backend"
	"github.com/papertriage/papertriage/internal/candidate"
	"golang.org/x/sync/errgroup"
)

// DefaultPageSize is the number of candidates shown per page.
const DefaultPageSize = 20

var (
	ErrNoSelection      = errors.New("no candidate selected")
	ErrNotPending       = errors.New("candidate is not pending")
	ErrDecisionInFlight = errors.New("a decision is already being submitted")
	ErrStaleDecision    = errors.New("candidate list changed while the decision was in flight")
	ErrFeedbackFailed   = errors.New("feedback failed")
)

// InvalidStateError is returned when a decision targets a candidate that
// has already been decided. It matches ErrNotPending.
type InvalidStateError struct {
	PaperID string
	Status  candidate.Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("candidate %s is %s, not pending", e.PaperID, e.Status)
}

func (e *InvalidStateError) Unwrap() error { return ErrNotPending }

// Session is the in-memory review state for one operator.
type Session struct {
	candidates  []candidate.Candidate
	selectedIdx int
	status      candidate.Status
	page        int
	pageSize    int
	total       int
	stats       candidate.Stats
	loadSeq     uint64
	lastLoadErr error

	keepDecidedInAll bool
	pending          *Decision
}

// Option configures a Session.
type Option func(*Session)

// WithPageSize overrides DefaultPageSize. Values outside 1..backend.MaxPageSize
// are ignored.
func WithPageSize(n int) Option {
	return func(s *Session) {
		if n > 0 && n <= backend.MaxPageSize {
			s.pageSize = n
		}
	}
}

// KeepDecidedInAll keeps decided candidates on the page when no status filter
// is active, advancing to the next pending one instead of removing them.
func KeepDecidedInAll(keep bool) Option {
	return func(s *Session) { s.keepDecidedInAll = keep }
}

// New returns an empty session on page 1 of the unfiltered view.
func New(opts ...Option) *Session {
	s := &Session{
		candidates:  []candidate.Candidate{},
		selectedIdx: -1,
		page:        1,
		pageSize:    DefaultPageSize,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// PageData is the result of fetching one page plus the global stats.
type PageData struct {
	Status candidate.Status
	Page   int
	Items  []candidate.Candidate
	Total  int
	// Stats is nil when the unfiltered fetch failed or was skipped; the
	// session then keeps its previous counters.
	Stats *candidate.Stats
	// Err is the page fetch error, if any. Items is empty in that case.
	Err error
	// StatsErr is the unfiltered fetch error, if any.
	StatsErr error
}

// FetchPage loads the requested page and, concurrently, the full unfiltered
// collection used for stats. It performs I/O only and never touches a
// Session, so it can run off the UI loop.
func FetchPage(ctx context.Context, l backend.Lister, status candidate.Status, page, pageSize int) PageData {
	if page < 1 {
		page = 1
	}
	data := PageData{Status: status, Page: page}

	var g errgroup.Group
	g.Go(func() error {
		res, err := l.ListCandidates(ctx, status, page, pageSize)
		data.Items, data.Total, data.Err = res.Items, res.Total, err
		return nil
	})
	g.Go(func() error {
		all, err := backend.ListAll(ctx, l, candidate.StatusAll)
		if err != nil {
			data.StatsErr = err
			return nil
		}
		stats := candidate.CountStats(all)
		data.Stats = &stats
		return nil
	})
	_ = g.Wait()

	if data.Err != nil || data.Items == nil {
		data.Items = []candidate.Candidate{}
	}
	if data.Err != nil {
		data.Total = 0
	}
	return data
}

// ApplyPage replaces the working set with d. Selection is cleared, any
// in-flight decision becomes stale, and the load generation advances.
func (s *Session) ApplyPage(d PageData) {
	s.status = d.Status
	s.page = max(d.Page, 1)
	s.candidates = d.Items
	if s.candidates == nil {
		s.candidates = []candidate.Candidate{}
	}
	s.total = d.Total
	if d.Stats != nil {
		s.stats = *d.Stats
	}
	s.lastLoadErr = d.Err
	s.selectedIdx = -1
	s.pending = nil
	s.loadSeq++
}

// LoadPage fetches and applies a page. The returned error is the page fetch
// error; the session has already degraded to an empty page when it is
// non-nil.
func (s *Session) LoadPage(ctx context.Context, l backend.Lister, status candidate.Status, page int) error {
	d := FetchPage(ctx, l, status, page, s.pageSize)
	s.ApplyPage(d)
	return d.Err
}

// Reload re-fetches the current filter and page.
func (s *Session) Reload(ctx context.Context, l backend.Lister) error {
	return s.LoadPage(ctx, l, s.status, s.page)
}

// ApplyDecision records a server-confirmed transition of the selected
// candidate to newStatus and updates the counters.
func (s *Session) ApplyDecision(paperID string, newStatus candidate.Status) error {
	sel, ok := s.Selected()
	if !ok {
		return ErrNoSelection
	}
	if sel.PaperID != paperID {
		return ErrStaleDecision
	}
	if !newStatus.IsDecided() {
		return fmt.Errorf("invalid target status %q", newStatus)
	}
	if !sel.IsPending() {
		return &InvalidStateError{PaperID: sel.PaperID, Status: sel.EffectiveStatus()}
	}
	sel.Status = newStatus
	s.stats.Apply(newStatus)
	return nil
}

// Selected returns a pointer to the selected candidate inside the working
// set. It must not be retained across list edits.
func (s *Session) Selected() (*candidate.Candidate, bool) {
	if s.selectedIdx < 0 || s.selectedIdx >= len(s.candidates) {
		return nil, false
	}
	return &s.candidates[s.selectedIdx], true
}

// Candidates returns the working page. Callers must not modify it.
func (s *Session) Candidates() []candidate.Candidate { return s.candidates }

func (s *Session) SelectedIndex() int { return s.selectedIdx }
func (s *Session) Status() candidate.Status { return s.status }
func (s *Session) Page() int { return s.page }
func (s *Session) PageSize() int { return s.pageSize }
func (s *Session) Total() int { return s.total }
func (s *Session) Stats() candidate.Stats { return s.stats }
func (s *Session) LoadSeq() uint64 { return s.loadSeq }
func (s *Session) LastLoadError() error { return s.lastLoadErr }
func (s *Session) DecisionInFlight() bool { return s.pending != nil }
func (s *Session) KeepsDecidedInAll() bool { return s.keepDecidedInAll }
func (s *Session) HasPrevPage() bool { return s.page > 1 }
func (s *Session) HasNextPage() bool { return s.page < s.TotalPages() }
func (s *Session) Empty() bool { return len(s.candidates) == 0 }
func (s *Session) Len() int { return len(s.candidates) }
func (s *Session) At(i int) candidate.Candidate { return s.candidates[i] }

// TotalPages is ceil(total/pageSize), never less than 1.
func (s *Session) TotalPages() int {
	n := (s.total + s.pageSize - 1) / s.pageSize
	return max(n, 1)
}

// NextPage moves the page cursor forward. It reports false at the last page.
// The caller reloads afterwards.
func (s *Session) NextPage() bool {
	if !s.HasNextPage() {
		return false
	}
	s.page++
	return true
}

// PrevPage moves the page cursor back. It reports false on page 1.
func (s *Session) PrevPage() bool {
	if !s.HasPrevPage() {
		return false
	}
	s.page--
	return true
}

// SetFilter switches the status filter and rewinds to page 1.
func (s *Session) SetFilter(status candidate.Status) {
	s.status = status
	s.page = 1
}
