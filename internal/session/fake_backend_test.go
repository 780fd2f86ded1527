package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/papertriage/papertriage/internal/backend"
	"github.com/papertriage/papertriage/internal/candidate"
)

// fakeBackend is an in-memory backend.Client. It is safe for the concurrent
// listing FetchPage does.
type fakeBackend struct {
	mu       sync.Mutex
	items    []candidate.Candidate
	listErr  error
	allErr   error
	feedback []candidate.FeedbackRequest
	// feedbackResult overrides the default success answer.
	feedbackResult *candidate.FeedbackResult

	refreshCalls atomic.Int32
	refreshFn    func(ctx context.Context, req candidate.RefreshRequest) (candidate.RefreshResult, error)
}

var _ backend.Client = (*fakeBackend)(nil)

func newFakeBackend(statuses ...candidate.Status) *fakeBackend {
	f := &fakeBackend{}
	for i, st := range statuses {
		f.items = append(f.items, makeCandidate(i, st))
	}
	return f
}

func makeCandidate(i int, st candidate.Status) candidate.Candidate {
	return candidate.Candidate{
		PaperID: fmt.Sprintf("p%d", i),
		Title:   fmt.Sprintf("Paper %d", i),
		QueryID: "q1",
		Rank:    i + 1,
		Status:  st,
	}
}

func repeatStatus(st candidate.Status, n int) []candidate.Status {
	out := make([]candidate.Status, n)
	for i := range out {
		out[i] = st
	}
	return out
}

func (f *fakeBackend) ListCandidates(_ context.Context, status candidate.Status, page, pageSize int) (backend.ListResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil && (status != candidate.StatusAll || pageSize != backend.MaxPageSize) {
		return backend.ListResult{Items: []candidate.Candidate{}}, f.listErr
	}
	if f.allErr != nil && status == candidate.StatusAll && pageSize == backend.MaxPageSize {
		return backend.ListResult{Items: []candidate.Candidate{}}, f.allErr
	}
	var matched []candidate.Candidate
	for _, c := range f.items {
		if status == candidate.StatusAll || c.EffectiveStatus() == status {
			matched = append(matched, c)
		}
	}
	start := min((page-1)*pageSize, len(matched))
	end := min(start+pageSize, len(matched))
	return backend.ListResult{
		Items: append([]candidate.Candidate{}, matched[start:end]...),
		Total: len(matched),
	}, nil
}

func (f *fakeBackend) GetCandidate(_ context.Context, paperID string) (*candidate.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.items {
		if c.PaperID == paperID {
			c := c
			return &c, nil
		}
	}
	return nil, backend.ErrNotFound
}

func (f *fakeBackend) SubmitFeedback(_ context.Context, req candidate.FeedbackRequest) candidate.FeedbackResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedback = append(f.feedback, req)
	if f.feedbackResult != nil {
		return *f.feedbackResult
	}
	for i := range f.items {
		if f.items[i].PaperID == req.PaperID {
			f.items[i].Status = req.Label.Status()
		}
	}
	return candidate.FeedbackResult{Success: true, EventID: "e1"}
}

func (f *fakeBackend) TriggerRefresh(ctx context.Context, req candidate.RefreshRequest) (candidate.RefreshResult, error) {
	f.refreshCalls.Add(1)
	if f.refreshFn != nil {
		return f.refreshFn(ctx, req)
	}
	return candidate.RefreshResult{Success: true}, nil
}

func (f *fakeBackend) ListFeedback(context.Context, string) ([]candidate.FeedbackEvent, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBackend) ListLibrary(context.Context, int, int) (backend.LibraryPage, error) {
	return backend.LibraryPage{}, errors.New("not implemented")
}

func (f *fakeBackend) add(c candidate.Candidate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, c)
}

func (f *fakeBackend) submitted() []candidate.FeedbackRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]candidate.FeedbackRequest(nil), f.feedback...)
}

// loadedSession returns a session that has loaded page 1 of status from f.
func loadedSession(t *testing.T, f *fakeBackend, status candidate.Status, opts ...Option) *Session {
	t.Helper()
	s := New(opts...)
	if err := s.LoadPage(context.Background(), f, status, 1); err != nil {
		t.Fatalf("LoadPage: %v", err)
	}
	return s
}

func assertSelection(t *testing.T, s *Session, want int) {
	t.Helper()
	if got := s.SelectedIndex(); got != want {
		t.Fatalf("selectedIdx = %d, want %d", got, want)
	}
	sel, ok := s.Selected()
	if ok != (want >= 0) {
		t.Fatalf("Selected() ok = %v with selectedIdx %d", ok, want)
	}
	if ok && sel != &s.Candidates()[want] {
		t.Fatal("Selected() does not point into the working page")
	}
}

func paperIDs(s *Session) []string {
	ids := make([]string, 0, s.Len())
	for _, c := range s.Candidates() {
		ids = append(ids, c.PaperID)
	}
	return ids
}
