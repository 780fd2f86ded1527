package session

import (
	"context"
	"fmt"

	"github.com/papertriage/papertriage/internal/backend"
	"github.com/papertriage/papertriage/internal/candidate"
)

// Reviewer ties a Session to a backend and a RefreshCoordinator and runs
// each workflow synchronously. The CLI uses it; the TUI splits the same
// steps across its update loop instead.
type Reviewer struct {
	session *Session
	client  backend.Client
	refresh *RefreshCoordinator
}

func NewReviewer(s *Session, client backend.Client, refresh *RefreshCoordinator) *Reviewer {
	if refresh == nil {
		refresh = NewRefreshCoordinator(DefaultRefreshTimeout)
	}
	return &Reviewer{session: s, client: client, refresh: refresh}
}

func (r *Reviewer) Session() *Session { return r.session }

// Load fetches a page into the session.
func (r *Reviewer) Load(ctx context.Context, status candidate.Status, page int) error {
	return r.session.LoadPage(ctx, r.client, status, page)
}

// Focus loads a single candidate by id as the working page and selects it.
// Stats are left as they were.
func (r *Reviewer) Focus(ctx context.Context, paperID string) (*candidate.Candidate, error) {
	c, err := r.client.GetCandidate(ctx, paperID)
	if err != nil {
		return nil, err
	}
	r.session.ApplyPage(PageData{
		Status: candidate.StatusAll,
		Page:   1,
		Items:  []candidate.Candidate{*c},
		Total:  1,
	})
	r.session.SelectByIndex(0)
	sel, _ := r.session.Selected()
	return sel, nil
}

// Accept accepts the selected candidate.
func (r *Reviewer) Accept(ctx context.Context) (Outcome, error) {
	return r.decide(ctx, candidate.LabelAccept, nil, "")
}

// Reject rejects the selected candidate with optional reason tags and note.
func (r *Reviewer) Reject(ctx context.Context, reasonTags []string, freeText string) (Outcome, error) {
	return r.decide(ctx, candidate.LabelReject, reasonTags, freeText)
}

func (r *Reviewer) decide(ctx context.Context, label candidate.Label, reasonTags []string, freeText string) (Outcome, error) {
	d, err := r.session.BeginDecision(label, reasonTags, freeText)
	if err != nil {
		return Outcome{}, err
	}
	res := r.client.SubmitFeedback(ctx, d.Request())
	return r.session.CompleteDecision(d, res)
}

// Refresh triggers a backend retrieval round and, on success, reloads the
// current page so the session reflects the new candidates. It returns
// ErrRefreshInFlight without calling the backend when another refresh is
// running.
func (r *Reviewer) Refresh(ctx context.Context, req candidate.RefreshRequest) (candidate.RefreshResult, error) {
	if !r.refresh.Begin() {
		return candidate.RefreshResult{}, ErrRefreshInFlight
	}
	defer r.refresh.End()

	res, err := r.refresh.Run(ctx, func(ctx context.Context) (candidate.RefreshResult, error) {
		return r.client.TriggerRefresh(ctx, req)
	})
	if err != nil {
		return res, err
	}
	if err := r.session.Reload(ctx, r.client); err != nil {
		return res, fmt.Errorf("reload after refresh: %w", err)
	}
	return res, nil
}
